package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docvault/internal/config"
)

// TesseractClient implements OCRClient against a remote tesseract-server
// instance. The service takes a multipart POST with an "options" JSON part
// and a "file" part and answers {"data":{"stdout":...,"stderr":...}}.
type TesseractClient struct {
	url    string
	client *http.Client
}

// NewTesseractClient creates an OCR client from config. The request timeout
// is a hard upper bound; callers may pass a tighter deadline via context.
func NewTesseractClient(cfg config.TesseractConfig) (*TesseractClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tesseract endpoint is required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &TesseractClient{
		url:    strings.TrimRight(cfg.Endpoint, "/") + "/tesseract",
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

var _ OCRClient = (*TesseractClient)(nil)

type tesseractResponse struct {
	Data tesseractData `json:"data"`
}

type tesseractData struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Recognize posts the file bytes for OCR and returns the recognized text,
// trimmed.
func (c *TesseractClient) Recognize(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	options, err := form.CreateFormField("options")
	if err != nil {
		return "", fmt.Errorf("creating options part: %w", err)
	}
	if _, err := options.Write([]byte(`{"languages":["eng"]}`)); err != nil {
		return "", fmt.Errorf("writing options part: %w", err)
	}

	file, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("writing file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling tesseract service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tesseract service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed tesseractResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding tesseract response: %w", err)
	}
	return strings.TrimSpace(parsed.Data.Stdout), nil
}
