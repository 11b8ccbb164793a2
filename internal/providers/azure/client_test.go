package azure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

type scriptedTransport struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func (t *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := t.calls
	t.calls++
	if idx >= len(t.responses) {
		idx = len(t.responses) - 1
	}
	if err := t.errs[idx]; err != nil {
		return nil, err
	}
	return t.responses[idx], nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(transport http.RoundTripper) (*Client, *[]time.Duration) {
	client := NewClient(Options{HTTPClient: &http.Client{Transport: transport}})
	var sleeps []time.Duration
	client.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return client, &sleeps
}

func TestSizeForRatio(t *testing.T) {
	tests := []struct {
		ratio string
		want  string
	}{
		{"1:1", "1024x1024"},
		{"16:9", "1344x768"},
		{"9:16", "768x1344"},
		{"3:2", "1216x832"},
		{"2:3", "832x1216"},
		{"4:3", "1024x1024"},
		{"", "1024x1024"},
	}
	for _, tt := range tests {
		if got := SizeForRatio(tt.ratio); got != tt.want {
			t.Errorf("SizeForRatio(%q) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	transport := &scriptedTransport{
		responses: []*http.Response{
			jsonResponse(http.StatusServiceUnavailable, `upstream down`),
			jsonResponse(http.StatusTooManyRequests, `throttled`),
			jsonResponse(http.StatusOK, `{"created":1,"data":[{"url":"https://img.example.com/a.jpg"}]}`),
		},
		errs: []error{nil, nil, nil},
	}
	client, sleeps := newTestClient(transport)

	resp, err := client.Generate(context.Background(), Params{
		Endpoint: "https://azure.example.com/images",
		APIKey:   "key",
		Prompt:   "a red fox",
		Ratio:    "1:1",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if transport.calls != 3 {
		t.Fatalf("calls = %d, want 3", transport.calls)
	}
	if got := resp.First(); got == nil || got.URL != "https://img.example.com/a.jpg" {
		t.Fatalf("unexpected first entry: %+v", got)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Fatalf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestGenerateStopsOnNonRetryableStatus(t *testing.T) {
	transport := &scriptedTransport{
		responses: []*http.Response{jsonResponse(http.StatusBadRequest, `bad prompt`)},
		errs:      []error{nil},
	}
	client, sleeps := newTestClient(transport)

	_, err := client.Generate(context.Background(), Params{
		Endpoint: "https://azure.example.com/images",
		APIKey:   "key",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Retryable {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if transport.calls != 1 {
		t.Fatalf("calls = %d, want 1", transport.calls)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no backoff sleeps, got %v", *sleeps)
	}
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	transport := &scriptedTransport{
		responses: []*http.Response{
			jsonResponse(http.StatusServiceUnavailable, `down`),
			jsonResponse(http.StatusServiceUnavailable, `down`),
			jsonResponse(http.StatusServiceUnavailable, `down`),
		},
		errs: []error{nil, nil, nil},
	}
	client, _ := newTestClient(transport)

	_, err := client.Generate(context.Background(), Params{
		Endpoint: "https://azure.example.com/images",
		APIKey:   "key",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if transport.calls != 3 {
		t.Fatalf("calls = %d, want 3", transport.calls)
	}
}

func TestGenerateRejectsMalformedResponse(t *testing.T) {
	transport := &scriptedTransport{
		responses: []*http.Response{jsonResponse(http.StatusOK, `{"data":"not-an-array"}`)},
		errs:      []error{nil},
	}
	client, _ := newTestClient(transport)

	_, err := client.Generate(context.Background(), Params{
		Endpoint: "https://azure.example.com/images",
		APIKey:   "key",
		Prompt:   "x",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Retryable {
		t.Fatalf("shape violations must not be retryable: %+v", apiErr)
	}
	if transport.calls != 1 {
		t.Fatalf("calls = %d, want 1", transport.calls)
	}
}

func TestGenerateRequiresCredentials(t *testing.T) {
	client, _ := newTestClient(&scriptedTransport{responses: []*http.Response{nil}, errs: []error{nil}})

	if _, err := client.Generate(context.Background(), Params{Prompt: "x"}); err == nil {
		t.Fatalf("expected error for missing endpoint and key")
	}
}

func TestResponseFirst(t *testing.T) {
	var nilResp *Response
	if nilResp.First() != nil {
		t.Fatalf("nil response should yield nil entry")
	}
	if (&Response{}).First() != nil {
		t.Fatalf("empty data should yield nil entry")
	}
	entry := ImageData{URL: "u"}
	resp := &Response{Data: []ImageData{entry, {URL: "other"}}}
	if got := resp.First(); got == nil || got.URL != "u" {
		t.Fatalf("First() = %+v, want first entry", got)
	}
}
