package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docvault/internal/config"
	"docvault/internal/model"
)

const (
	summaryCharMaxLength = 200
	titleWordLimit       = 10

	promptFormat = "Summarize the following text in a single sentence that is less than %d characters " +
		"and give it a title that is less than %d words. Please give me the summary first before the " +
		"title and separate them with a newline character:\n\n%s"
)

// OllamaSummarizer implements Summarizer against an Ollama server's
// /api/generate endpoint. The model is asked for the summary on the first
// line and the title on the second.
type OllamaSummarizer struct {
	url    string
	model  string
	client *http.Client
}

// NewOllamaSummarizer creates a summarizer from config.
func NewOllamaSummarizer(cfg config.OllamaConfig) (*OllamaSummarizer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}
	model := cfg.Model
	if model == "" {
		model = "llama2"
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &OllamaSummarizer{
		url:    strings.TrimRight(cfg.Host, "/") + "/api/generate",
		model:  model,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

var _ Summarizer = (*OllamaSummarizer)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Summarize sends the generation prompt and splits the completion into
// summary and title. Blank lines are dropped; anything short of two lines is
// an unusable completion and fails.
func (s *OllamaSummarizer) Summarize(ctx context.Context, text string) (*model.SummaryResult, error) {
	prompt := fmt.Sprintf(promptFormat, summaryCharMaxLength, titleWordLimit, text)

	bodyBytes, err := json.Marshal(generateRequest{Model: s.model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}

	lines := make([]string, 0, 2)
	for _, line := range strings.Split(parsed.Response, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("unexpected completion shape: want summary and title lines, got %d line(s)", len(lines))
	}

	return &model.SummaryResult{Summary: lines[0], Title: lines[1]}, nil
}
