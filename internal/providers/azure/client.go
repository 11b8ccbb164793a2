package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fluxgallery/internal/infra"
)

const (
	maxAttempts    = 3
	initialBackoff = time.Second
	defaultSize    = "1024x1024"
)

// sizeByRatio maps logical aspect ratios onto the pixel dimensions the image
// API expects. Unknown ratios fall back to the square default.
var sizeByRatio = map[string]string{
	"1:1":  "1024x1024",
	"16:9": "1344x768",
	"9:16": "768x1344",
	"3:2":  "1216x832",
	"2:3":  "832x1216",
}

// SizeForRatio resolves an aspect ratio string to provider dimensions.
func SizeForRatio(ratio string) string {
	if size, ok := sizeByRatio[strings.TrimSpace(ratio)]; ok {
		return size
	}
	return defaultSize
}

// APIError describes a failed provider call. Retryable errors (HTTP >=500,
// 429, transport failures) are retried with backoff; everything else is
// fatal immediately.
type APIError struct {
	Status    int
	Retryable bool
	Message   string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("azure: api error (%d): %s", e.Status, e.Message)
	}
	return "azure: " + e.Message
}

// FilterResult is one safety category verdict attached to a generated image.
type FilterResult struct {
	Filtered bool   `json:"filtered"`
	Severity string `json:"severity,omitempty"`
	Detected bool   `json:"detected,omitempty"`
}

// ContentFilterResults carries the provider's safety metadata per image.
type ContentFilterResults struct {
	Sexual    *FilterResult `json:"sexual,omitempty"`
	Violence  *FilterResult `json:"violence,omitempty"`
	Hate      *FilterResult `json:"hate,omitempty"`
	SelfHarm  *FilterResult `json:"self_harm,omitempty"`
	Profanity *FilterResult `json:"profanity,omitempty"`
	Jailbreak *FilterResult `json:"jailbreak,omitempty"`
}

// ImageData is one generated image entry. At most one of URL and B64JSON is
// meaningful; an entry with neither is a soft failure for that variation.
type ImageData struct {
	URL                  string                `json:"url,omitempty"`
	B64JSON              string                `json:"b64_json,omitempty"`
	ContentFilterResults *ContentFilterResults `json:"content_filter_results,omitempty"`
}

// Response is the validated provider payload.
type Response struct {
	Created int64       `json:"created,omitempty"`
	Data    []ImageData `json:"data"`
}

// First returns the first image entry, or nil when the payload is empty.
func (r *Response) First() *ImageData {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return &r.Data[0]
}

// Params describes one generation call. The provider only supports a single
// image per call, which is why the orchestrator fans out.
type Params struct {
	Endpoint string
	APIKey   string
	Prompt   string
	Ratio    string
	Quality  string
}

type requestBody struct {
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

// Options configures the client.
type Options struct {
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Azure image-generation endpoint with
// retry, backoff and error classification.
type Client struct {
	httpClient *http.Client
	logger     *infra.Logger
	sleep      func(time.Duration)
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{httpClient: httpClient, logger: logger, sleep: time.Sleep}
}

// Generate invokes the provider once per call, retrying transient failures
// up to three attempts with doubling backoff (1s, 2s). Response shapes that
// violate the provider contract are fatal, not retried.
func (c *Client) Generate(ctx context.Context, p Params) (*Response, error) {
	if strings.TrimSpace(p.Endpoint) == "" || strings.TrimSpace(p.APIKey) == "" {
		return nil, &APIError{Message: "endpoint or api key not configured"}
	}

	body := requestBody{
		Prompt:  p.Prompt,
		N:       1,
		Size:    SizeForRatio(p.Ratio),
		Quality: strings.TrimSpace(p.Quality),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("azure: encode request: %w", err)
	}

	delay := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(delay)
			delay *= 2
		}

		resp, err := c.attempt(ctx, p, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable {
			return nil, err
		}
		c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("azure: retryable provider failure")
	}

	return nil, fmt.Errorf("azure: request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, p Params, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Retryable: false, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Retryable: true, Message: fmt.Sprintf("http request: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Retryable: true, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, &APIError{
			Status:    resp.StatusCode,
			Retryable: retryable,
			Message:   strings.TrimSpace(string(raw)),
		}
	}

	// The contract requires a JSON object whose data field, when present,
	// is an array. Anything else means the provider broke its contract and
	// retrying would not help.
	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &APIError{Retryable: false, Message: fmt.Sprintf("unexpected response shape: %v", err)}
	}
	return &decoded, nil
}
