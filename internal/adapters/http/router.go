package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/advotac/legal-rag/internal/core/ports"
)

const creditTaskKind = "legal_qa"

// Defaults fill request fields the caller leaves unset.
type Defaults struct {
	TopK      int
	Threshold float64
}

type Router struct {
	answerUC ports.AnswerService
	credits  ports.CreditLedger
	defaults Defaults
	logger   *slog.Logger
	health   func(r *http.Request) error
}

func NewRouter(answerUC ports.AnswerService, credits ports.CreditLedger, defaults Defaults, logger *slog.Logger) *Router {
	if credits == nil {
		credits = ports.NopCreditLedger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.TopK <= 0 {
		defaults.TopK = 5
	}
	if defaults.Threshold <= 0 {
		defaults.Threshold = 0.70
	}
	return &Router{
		answerUC: answerUC,
		credits:  credits,
		defaults: defaults,
		logger:   logger,
	}
}

// WithHealthCheck adds a dependency probe to /readyz.
func (rt *Router) WithHealthCheck(check func(r *http.Request) error) *Router {
	rt.health = check
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	mux.HandleFunc("/v1/answers", rt.answer)
	return requestIDMiddleware(accessLogMiddleware(rt.logger, mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		if err := rt.health(r); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		Query     string   `json:"query"`
		TopK      *int     `json:"top_k"`
		Threshold *float64 `json:"threshold"`
		Validate  *bool    `json:"validate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	req := ports.AnswerRequest{
		Query:     body.Query,
		TopK:      rt.defaults.TopK,
		Threshold: rt.defaults.Threshold,
		Validate:  true,
	}
	if body.TopK != nil {
		req.TopK = *body.TopK
	}
	if body.Threshold != nil {
		req.Threshold = *body.Threshold
	}
	if body.Validate != nil {
		req.Validate = *body.Validate
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	creditCost := 0
	if userID != "" {
		cost, err := rt.credits.EnsureAvailable(r.Context(), userID, creditTaskKind)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		creditCost = cost
	}

	resp, err := rt.answerUC.AnswerQuery(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if userID != "" {
		if err := rt.credits.Spend(r.Context(), userID, creditTaskKind, creditCost); err != nil {
			rt.logger.Warn("credit_spend_failed",
				"request_id", requestIDFromContext(r.Context()),
				"user_id", userID,
				"error", err,
			)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": publicErrorMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// publicErrorMessage hides backend detail on server-side failures.
func publicErrorMessage(err error, status int) string {
	if status < 500 || status == http.StatusServiceUnavailable {
		return err.Error()
	}
	return "internal error"
}
