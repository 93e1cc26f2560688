// Package pipeline runs the extraction state machine: fast tier first, then
// an optional escalation to the thorough tier with a single fallback retry.
// All retry and fallback policy lives here; providers never retry on their
// own.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pactscan/pactscan/internal/cache"
	"github.com/pactscan/pactscan/internal/normalize"
	"github.com/pactscan/pactscan/internal/parse"
	"github.com/pactscan/pactscan/internal/prompt"
	"github.com/pactscan/pactscan/internal/provider"
	"github.com/pactscan/pactscan/internal/security"
	"github.com/pactscan/pactscan/pkg/models"
)

// Service orchestrates one extraction per call. It is safe for concurrent
// use: every call builds its own state and the components it calls are pure.
type Service struct {
	tiers  provider.TierSet
	cache  cache.Cache // nil disables result caching
	ttl    time.Duration
	logger *slog.Logger

	fastTimeout     time.Duration
	thoroughTimeout time.Duration
	fallbackTimeout time.Duration
}

// Options tunes a Service. Zero values mean no cache and no per-tier
// deadline beyond the caller's context.
type Options struct {
	Cache    cache.Cache
	CacheTTL time.Duration

	FastTimeout     time.Duration
	ThoroughTimeout time.Duration
	FallbackTimeout time.Duration

	Logger *slog.Logger
}

func NewService(tiers provider.TierSet, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tiers:           tiers,
		cache:           opts.Cache,
		ttl:             opts.CacheTTL,
		logger:          logger,
		fastTimeout:     opts.FastTimeout,
		thoroughTimeout: opts.ThoroughTimeout,
		fallbackTimeout: opts.FallbackTimeout,
	}
}

// Extract runs the full pipeline for one bundle and returns the final
// normalized result. The only fatal outcomes are a fast-tier failure and the
// hard-floor rejection; once a usable fast-tier result exists, escalation
// failures degrade to that result instead of failing the call.
func (s *Service) Extract(ctx context.Context, b *models.DocumentBundle) (*models.ExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()
	digest := b.Digest()

	if cached, ok := s.lookup(ctx, rid, digest); ok {
		return cached, nil
	}

	s.logger.Info("pipeline.start", "req_id", rid, "documents", len(b.Documents), "digest", digest)

	inputFindings := security.ScanInputs(b)
	if len(inputFindings) > 0 {
		s.logger.Warn("pipeline.security.input_findings", "req_id", rid, "count", len(inputFindings))
	}

	fast, err := s.runTier(ctx, rid, s.tiers.Fast, prompt.Build(b, models.ModeFast), inputFindings, b, s.fastTimeout)
	if err != nil {
		s.logger.Error("pipeline.fast.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if errors.Is(err, normalize.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: fast tier: %v", normalize.ErrExtractionFailed, err)
	}

	decision := Decide(fast)
	if !decision.Trigger {
		s.logger.Info("pipeline.final", "req_id", rid, "tier", s.tiers.Fast.Name(),
			"confidence", fast.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
		s.store(ctx, rid, digest, fast)
		return fast, nil
	}
	s.logger.Info("pipeline.escalate", "req_id", rid, "reasons", decision.Reasons)

	// the thorough payload is built once and reused verbatim on fallback
	payload := prompt.Build(b, models.ModeThorough)

	final := s.tiers.Thorough
	escalated, err := s.runTier(ctx, rid, final, payload, inputFindings, b, s.thoroughTimeout)
	if err != nil {
		s.logger.Warn("pipeline.thorough.failed", "req_id", rid, "error", err)
		final = s.tiers.Fallback
		escalated, err = s.runTier(ctx, rid, final, payload, inputFindings, b, s.fallbackTimeout)
	}
	if err != nil {
		s.logger.Error("pipeline.fallback.failed", "req_id", rid, "error", err)
		fast.AddWarning(models.WarnEscalationFailed,
			"thorough and fallback tiers both failed; fast-tier result returned")
		s.logger.Info("pipeline.final", "req_id", rid, "tier", s.tiers.Fast.Name(), "degraded", true,
			"confidence", fast.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
		s.store(ctx, rid, digest, fast)
		return fast, nil
	}

	escalated.Escalated = true
	model := final.Model()
	escalated.EscalationModel = &model

	s.logger.Info("pipeline.final", "req_id", rid, "tier", final.Name(),
		"confidence", escalated.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
	s.store(ctx, rid, digest, escalated)
	return escalated, nil
}

// runTier performs one invoke-parse-normalize cycle with a per-tier
// deadline. A timeout surfaces as a provider error and follows the same
// fallback rule as any other failure.
func (s *Service) runTier(ctx context.Context, rid string, p models.Provider, payload models.PromptPayload,
	inputFindings []models.SecurityFinding, b *models.DocumentBundle, timeout time.Duration) (*models.ExtractionResult, error) {

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := p.Invoke(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("tier %s: %w", p.Name(), err)
	}

	obj, err := parse.Extract(raw)
	if err != nil {
		s.logger.Warn("pipeline.parse.error", "req_id", rid, "tier", p.Name(), "error", err)
		return nil, fmt.Errorf("tier %s: %w", p.Name(), err)
	}

	r, err := normalize.Result(obj, inputFindings)
	if err != nil {
		return nil, fmt.Errorf("tier %s: %w", p.Name(), err)
	}
	// scan before reconciliation so text the model attached to invented
	// document entries is still visible to the scanner
	normalize.ApplyFindings(r, security.ScanOutput(r))
	normalize.ReconcileDocuments(r, b)

	s.logger.Info("pipeline.tier.ok", "req_id", rid, "tier", p.Name(), "model", p.Model(),
		"confidence", r.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
	return r, nil
}

func (s *Service) lookup(ctx context.Context, rid, digest string) (*models.ExtractionResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	r, found, err := s.cache.GetResult(ctx, digest)
	if err != nil {
		s.logger.Warn("pipeline.cache.error", "req_id", rid, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	s.logger.Info("pipeline.cache.hit", "req_id", rid, "digest", digest)
	return r, true
}

// store caches the final result. Results carrying security findings are
// never cached; a repeat upload of a flagged bundle must rescan.
func (s *Service) store(ctx context.Context, rid, digest string, r *models.ExtractionResult) {
	if s.cache == nil || len(r.SecurityFindings) > 0 {
		return
	}
	if err := s.cache.SetResult(ctx, digest, r, s.ttl); err != nil {
		s.logger.Warn("pipeline.cache.store_error", "req_id", rid, "error", err)
	}
}
