package usecase

// Metrics receives pipeline observations. The concrete implementation lives
// in the observability layer; the zero-dependency core only emits events.
type Metrics interface {
	ObserveStage(stage string, seconds float64)
	RerankFallback()
	NoContext()
	CollectionSearchFailure(collection string)
	SourcesReturned(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveStage(string, float64)    {}
func (nopMetrics) RerankFallback()                 {}
func (nopMetrics) NoContext()                      {}
func (nopMetrics) CollectionSearchFailure(string)  {}
func (nopMetrics) SourcesReturned(int)             {}
