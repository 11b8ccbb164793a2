package prediction

import (
	"net/http"

	"fluxgallery/internal/identity"
)

// Status is the externally-visible lifecycle state of a prediction.
// Terminal states are final; no transitions happen after them.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	// StatusCanceled is reserved for future cancellation support; nothing
	// in the pipeline produces it today.
	StatusCanceled Status = "canceled"
)

// Prediction is the job/result wrapper returned to the client and polled
// for completion. Output holds a single URL string when exactly one
// variation survived, otherwise an ordered slice of URLs.
type Prediction struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Output any    `json:"output,omitempty"`
	DataID string `json:"dataId,omitempty"`
}

// Request is the normalized input to one orchestration run. It exists only
// for the duration of the request and is never persisted.
type Request struct {
	Prompt         string
	AspectRatio    string
	ModelID        string
	VariationCount int
	IsPublic       bool
	Requester      identity.Identity
}

// Variation-count clamp for standard identities.
const (
	minVariations = 1
	maxVariations = 4
)

// clampVariations applies the [1,4] clamp, lifting the upper bound for
// privileged identities.
func clampVariations(requested int, unlimited bool) int {
	if requested < minVariations {
		return minVariations
	}
	if !unlimited && requested > maxVariations {
		return maxVariations
	}
	return requested
}

// RequestError is a client-facing failure with a distinguishing HTTP status.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func errModelUnavailable() *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: "requested model is not available"}
}

func errUnsupportedProvider() *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: "only azure models are supported"}
}

func errModelMisconfigured() *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: "model endpoint or api key is missing"}
}

func errRateLimited() *RequestError {
	return &RequestError{Status: http.StatusTooManyRequests, Message: "rate limit exceeded, please wait before making more requests"}
}

func errAllVariationsFailed() *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: "all variations failed to generate or were filtered"}
}
