package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tirescan-backend/internal/shared/cache"
	"tirescan-backend/internal/shared/metrics"
	"tirescan-backend/internal/shared/storage/object"
	"tirescan-backend/internal/shared/telemetry"
	"tirescan-backend/internal/shared/util"
	"tirescan-backend/internal/shops"
	"tirescan-backend/internal/vision"
)

const (
	defaultVisionTimeout = 30 * time.Second
	defaultCacheTTL      = 24 * time.Hour
)

// Inventory is the read path of the shop registry used for matching.
type Inventory interface {
	TiresBySize(ctx context.Context, size string) ([]shops.SizedTire, error)
}

// Service runs the sidewall analysis pipeline.
type Service struct {
	Vision        vision.Client
	Inventory     Inventory
	Cache         cache.Cache
	CacheTTL      time.Duration
	Store         object.Archive
	ArchiveImages bool
	Model         string
	PromptVersion string
	Timeout       time.Duration
	MaxAttempts   int
	Now           func() time.Time
}

// Input is one photo submitted for analysis.
type Input struct {
	Image     []byte
	MimeType  string
	FileName  string
	RequestID string
}

// Output pairs a result with the id it was logged under.
type Output struct {
	ID     string `json:"analysisId"`
	Result Result `json:"analysis"`
}

// Analyze extracts, normalizes and matches one photo. Only configuration,
// input, upstream and registry failures are errors; every data anomaly
// degrades to a documented default.
func (s *Service) Analyze(ctx context.Context, in Input) (Output, error) {
	if !vision.IsConfigured(s.Vision) {
		return Output{}, vision.ErrMissingCredential
	}
	if len(in.Image) == 0 {
		return Output{}, ErrNoImage
	}

	id := uuid.NewString()
	start := time.Now()
	metrics.IncAnalysisStarted()
	logFields := map[string]any{
		"analysis_id": id,
		"request_id":  in.RequestID,
	}

	raw, err := s.extract(ctx, id, in)
	if err != nil {
		metrics.IncAnalysisFailed(failureReason(err))
		fields := cloneFields(logFields)
		fields["error"] = sanitizeError(err)
		telemetry.Error("analysis.upstream_failed", fields)
		return Output{}, err
	}

	outcome := ParseModelOutput(raw)
	switch o := outcome.(type) {
	case ParsedEmpty:
		fields := cloneFields(logFields)
		fields["reason"] = o.Reason
		telemetry.Warn("analysis.parse_empty", fields)
	case ParsedOK:
		if err := ValidateModelOutput(raw); err != nil {
			metrics.IncSchemaViolation()
			fields := cloneFields(logFields)
			fields["error"] = sanitizeError(err)
			telemetry.Warn("analysis.schema_violation", fields)
		}
	}

	result := Normalize(outcome, s.now())
	if size := result.Core.Size; size != nil && strings.TrimSpace(*size) != "" && s.Inventory != nil {
		matches, err := s.Inventory.TiresBySize(ctx, *size)
		if err != nil {
			metrics.IncAnalysisFailed("inventory")
			return Output{}, fmt.Errorf("lookup inventory: %w", err)
		}
		result.Availability = SummarizeMatches(matches)
	}

	s.archive(ctx, id, in)

	elapsed := time.Since(start)
	metrics.IncAnalysisCompleted(result.Condition.Status)
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))
	fields := cloneFields(logFields)
	fields["duration_ms"] = elapsed.Milliseconds()
	fields["status"] = result.Condition.Status
	fields["shops_with_size"] = result.Availability.ShopsWithSize
	telemetry.Info("analysis.completed", fields)
	return Output{ID: id, Result: result}, nil
}

// extract returns the raw model text, from cache when possible.
func (s *Service) extract(ctx context.Context, analysisID string, in Input) (string, error) {
	req := vision.Request{
		Image:         in.Image,
		MimeType:      in.MimeType,
		PromptVersion: s.promptVersion(),
	}
	key := ""
	if s.Cache != nil {
		key = cache.VisionResponseKey(util.DigestHex([]byte(s.Model), []byte(req.PromptVersion), []byte(req.MimeType), req.Image))
		cached, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			telemetry.Warn("vision.cache_get_failed", map[string]any{"analysis_id": analysisID, "error": err.Error()})
		} else if ok {
			metrics.IncVisionCacheHit()
			return string(cached), nil
		}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultVisionTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := newRetryingVision(s.Vision, s.MaxAttempts, analysisID, in.RequestID)
	raw, err := client.Extract(callCtx, req)
	if err != nil {
		switch {
		case errors.Is(err, vision.ErrMissingCredential):
			return "", err
		case errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		default:
			return "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	if key != "" {
		ttl := s.CacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		if err := s.Cache.Set(ctx, key, []byte(raw), ttl); err != nil {
			telemetry.Warn("vision.cache_set_failed", map[string]any{"analysis_id": analysisID, "error": err.Error()})
		}
	}
	return raw, nil
}

func (s *Service) archive(ctx context.Context, analysisID string, in Input) {
	if !s.ArchiveImages || s.Store == nil {
		return
	}
	photo := object.Photo{AnalysisID: analysisID, FileName: in.FileName, ContentType: in.MimeType, Data: in.Image}
	key, err := s.Store.Save(ctx, photo)
	if err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{
			"analysis_id": analysisID,
			"key":         photo.Key(),
			"error":       err.Error(),
		})
		return
	}
	telemetry.Debug("analysis.archived", map[string]any{"analysis_id": analysisID, "key": key})
}

func failureReason(err error) string {
	if errors.Is(err, ErrUpstreamTimeout) {
		return "timeout"
	}
	return "upstream"
}

func (s *Service) promptVersion() string {
	if v := strings.TrimSpace(s.PromptVersion); v != "" {
		return v
	}
	return vision.DefaultPromptVersion
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	return out
}
