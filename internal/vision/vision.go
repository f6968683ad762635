package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Request is a single sidewall photo to extract from.
type Request struct {
	Image         []byte
	MimeType      string
	PromptVersion string
}

// Client abstracts multimodal providers. Extract returns the model's text
// output verbatim; callers treat it as untrusted.
type Client interface {
	Extract(ctx context.Context, req Request) (string, error)
}

// ErrMissingCredential is returned when no provider credential is configured.
var ErrMissingCredential = errors.New("vision credential is not configured")

// StatusError reports a non-2xx response from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vision provider http status %d", e.StatusCode)
	}
	return fmt.Sprintf("vision provider http status %d: %s", e.StatusCode, e.Message)
}

// UnconfiguredClient stands in for a provider when no credential is set.
type UnconfiguredClient struct{}

// Extract returns ErrMissingCredential.
func (UnconfiguredClient) Extract(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrMissingCredential
}

// IsConfigured reports whether c can reach a provider.
func IsConfigured(c Client) bool {
	if c == nil {
		return false
	}
	switch c.(type) {
	case UnconfiguredClient, *UnconfiguredClient:
		return false
	}
	return true
}

// DataURI encodes an image as a base64 data URI.
func DataURI(mimeType string, image []byte) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
