package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// Generator calls a local Ollama server's /api/generate endpoint.
type Generator struct {
	host    string
	client  *http.Client
	timeout time.Duration
}

var _ interfaces.Generator = (*Generator)(nil)

// NewGenerator builds a generator pointed at OLLAMA_HOST (host:port),
// defaulting to localhost:11434.
func NewGenerator(timeout time.Duration) *Generator {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "localhost:11434"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		host:    host,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	ctx, span := trace.StartSpan(ctx, "ollama-api-call")
	defer span.End()

	// Single attempt with a hard deadline; the caller treats failure as
	// an abstention, not something to retry.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body := map[string]any{
		"model":  opts.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": opts.Temperature,
			"top_p":       0.9,
			"num_predict": opts.MaxTokens,
		},
	}
	bb, _ := json.Marshal(body)

	url := fmt.Sprintf("http://%s/api/generate", g.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama http %d", resp.StatusCode)
	}

	var r struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	return strings.TrimSpace(r.Response), nil
}
