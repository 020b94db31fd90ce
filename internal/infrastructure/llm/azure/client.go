package azure

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/advotac/legal-rag/internal/infrastructure/resilience"
)

type Config struct {
	Endpoint        string
	APIKey          string
	APIVersion      string
	ChatDeployment  string
	EmbedDeployment string

	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
}

func (c Config) normalize() Config {
	out := c
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = 60 * time.Second
	}
	if out.RequestsPerSecond <= 0 {
		out.RequestsPerSecond = 8
	}
	if out.Burst <= 0 {
		out.Burst = 4
	}
	return out
}

// Client talks to an Azure OpenAI resource. One client serves both chat
// deployments and the embedding deployment; all calls share a rate limiter
// so a burst of expansion and rerank traffic cannot trip the quota.
type Client struct {
	api             *openai.Client
	chatDeployment  string
	embedDeployment string
	limiter         *rate.Limiter
	exec            *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	cfg = cfg.normalize()

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, strings.TrimRight(cfg.Endpoint, "/"))
	if cfg.APIVersion != "" {
		clientCfg.APIVersion = cfg.APIVersion
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return &Client{
		api:             openai.NewClientWithConfig(clientCfg),
		chatDeployment:  cfg.ChatDeployment,
		embedDeployment: cfg.EmbedDeployment,
		limiter:         rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		exec:            exec,
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, "azure_chat", systemPrompt, userPrompt, 0.3)
}

// CompleteJSON pins temperature to the floor for reproducible structured
// output. The request struct drops a literal zero through omitempty, so the
// smallest positive value stands in for it.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, "azure_chat_json", systemPrompt, userPrompt, math.SmallestNonzeroFloat32)
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := c.do(ctx, "azure_embed", func(ctx context.Context) error {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:          []string{text},
			Model:          openai.EmbeddingModel(c.embedDeployment),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		})
		if err != nil {
			return fmt.Errorf("azure embeddings: %w", err)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("azure embeddings: empty response")
		}
		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (c *Client) chat(ctx context.Context, operation, systemPrompt, userPrompt string, temperature float32) (string, error) {
	var content string
	err := c.do(ctx, operation, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.chatDeployment,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		})
		if err != nil {
			return fmt.Errorf("azure chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("azure chat completion: no choices")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.exec.Do(ctx, operation, fn, classifyAzureError)
	return wrapTemporaryIfNeeded(operation, err)
}
