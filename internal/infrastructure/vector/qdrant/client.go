package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/advotac/legal-rag/internal/core/domain"
)

// Client is a thin REST client for qdrant similarity search. The statute
// index is written by a separate ingestion job, so this client only reads.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.Hit, error) {
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, formatSearchError(collection, resp)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.Hit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.Hit{
			Score:      r.Score,
			Collection: collection,
			Payload:    mapPayload(r.Payload),
		})
	}
	return out, nil
}

// HealthCheck hits the collections listing, which is cheap and requires the
// same auth as search.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant health status: %s", resp.Status)
	}
	return nil
}

// Payload keys vary across index generations. Each field reads its aliases
// in priority order; everything unclaimed lands in Extra.
func mapPayload(raw map[string]any) domain.Payload {
	claimed := map[string]bool{}
	pick := func(keys ...string) string {
		for _, key := range keys {
			if v := stringValue(raw, key); v != "" {
				for _, k := range keys {
					claimed[k] = true
				}
				return v
			}
		}
		for _, k := range keys {
			claimed[k] = true
		}
		return ""
	}

	p := domain.Payload{
		ActTitle:       pick("doc_title", "act_title", "act_name"),
		SectionNumber:  pick("section_number_norm", "section_number"),
		SectionHeading: pick("section_heading", "heading"),
		Breadcrumbs:    pick("breadcrumbs", "context_path"),
		Clause:         pick("clause"),
		SubSection:     pick("sub_section"),
		LayerTag:       pick("layer", "level", "chunk_level"),
		Text:           pick("search_text", "page_content", "content", "text"),
	}

	for key, value := range raw {
		if claimed[key] {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[key] = value
	}
	return p
}

func stringValue(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func formatSearchError(collection string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("qdrant search %s status: %s: %s", collection, resp.Status, msg)
	}
	return fmt.Errorf("qdrant search %s status: %s", collection, resp.Status)
}
