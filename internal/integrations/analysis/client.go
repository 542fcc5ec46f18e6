package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/foodchainx/api/internal/platform/config"
)

// ErrNotConfigured indicates the analysis service URL is missing from configuration.
var ErrNotConfigured = errors.New("analysis: service not configured")

// ErrUpstream indicates the analysis service rejected or failed the request.
var ErrUpstream = errors.New("analysis: upstream failure")

// Result carries the prediction payload returned by the analysis service,
// passed through to callers untouched.
type Result struct {
	Payload json.RawMessage
}

// Client proxies CSV quality-analysis requests to an external prediction service.
type Client struct {
	rest    *resty.Client
	baseURL string
}

// NewClient constructs an analysis client from configuration.
func NewClient(cfg config.AnalysisConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{rest: rest, baseURL: baseURL}
}

// Analyze uploads the CSV stream and returns the raw prediction payload.
func (c *Client) Analyze(ctx context.Context, filename string, file io.Reader) (Result, error) {
	if c == nil || c.baseURL == "" {
		return Result{}, ErrNotConfigured
	}
	if file == nil {
		return Result{}, errors.New("analysis: file is required")
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "upload.csv"
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFileReader("file", name, file).
		Post("/predict")
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Result{}, fmt.Errorf("%w: upstream status %d", ErrUpstream, resp.StatusCode())
	}

	body := resp.Body()
	if !json.Valid(body) {
		return Result{}, fmt.Errorf("%w: invalid JSON response", ErrUpstream)
	}
	return Result{Payload: json.RawMessage(body)}, nil
}
