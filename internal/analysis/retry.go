package analysis

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"tirescan-backend/internal/shared/metrics"
	"tirescan-backend/internal/shared/telemetry"
	"tirescan-backend/internal/vision"
)

const visionRetryBaseDelay = 300 * time.Millisecond

type retryingVision struct {
	base        vision.Client
	maxAttempts int
	baseDelay   time.Duration
	requestID   string
	analysisID  string
}

func newRetryingVision(base vision.Client, maxAttempts int, analysisID, requestID string) vision.Client {
	if base == nil {
		return nil
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return retryingVision{
		base:        base,
		maxAttempts: maxAttempts,
		baseDelay:   visionRetryBaseDelay,
		requestID:   requestID,
		analysisID:  analysisID,
	}
}

func (r retryingVision) Extract(ctx context.Context, req vision.Request) (string, error) {
	for attempt := 1; ; attempt++ {
		out, err := r.base.Extract(ctx, req)
		if err == nil || attempt >= r.maxAttempts || !shouldRetryVision(ctx, err) {
			return out, err
		}
		delay := retryDelay(r.baseDelay, attempt)
		metrics.IncVisionRetry()
		telemetry.Warn("vision.retry", map[string]any{
			"attempt":     attempt,
			"delay_ms":    delay.Milliseconds(),
			"request_id":  r.requestID,
			"analysis_id": r.analysisID,
			"error":       sanitizeError(err),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// retryDelay doubles per attempt with equal jitter.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base << (attempt - 1)
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half)
}

func shouldRetryVision(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, vision.ErrMissingCredential) {
		return false
	}
	var statusErr *vision.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof")
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
