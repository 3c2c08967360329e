package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
)

// Generator is the external model call: prompt in, raw text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs the full question-answering pipeline for one query.
// It holds no per-request state; concurrent calls share only the
// read-only catalog and the idempotent trend cache.
type Service struct {
	resolver *Resolver
	facts    *Aggregator
	model    Generator
	metrics  *metrics.PipelineMetrics
	log      *logger.Logger
}

func NewService(resolver *Resolver, aggregator *Aggregator, model Generator, m *metrics.PipelineMetrics, log *logger.Logger) *Service {
	return &Service{
		resolver: resolver,
		facts:    aggregator,
		model:    model,
		metrics:  m,
		log:      log,
	}
}

// Ask answers one sanitized query. The returned value is one of the
// four answer shapes, either as a typed answer (deterministic paths)
// or as the validated object the model produced. Model failures never
// surface to the caller; only data store errors do.
func (s *Service) Ask(ctx context.Context, query string) (any, error) {
	intent := Classify(query)
	ctx = s.log.WithIntent(ctx, string(intent))
	s.metrics.IncQuery(string(intent))
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(string(intent), time.Since(start))
	}()

	facts, err := s.gatherFacts(ctx, intent, query)
	if err != nil {
		return nil, fmt.Errorf("gathering facts: %w", err)
	}

	// Overview answers come straight from aggregates; asking a model
	// to restate numbers it must not change adds nothing.
	if facts.Intent == IntentOverview {
		return BuildOverviewAnswer(facts.Overview), nil
	}

	// Nothing matched: skip the model entirely so it cannot
	// hallucinate an item that does not exist.
	if !facts.Found {
		s.log.Debug(ctx, "no catalog match, answering deterministically")
		s.metrics.IncFallback("not_found")
		return Fallback(facts), nil
	}

	prompt := BuildPrompt(facts, query)
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn(ctx, fmt.Sprintf("model call failed, falling back: %v", err))
		s.metrics.IncFallback("model_unavailable")
		return Fallback(facts), nil
	}

	parsed, err := ValidateModelOutput(raw, facts)
	if err != nil {
		s.log.Warn(ctx, fmt.Sprintf("model output rejected: %v", err))
		s.metrics.IncExtractionFailure(extractionStage(err))
		s.metrics.IncFallback("validation_failed")
		return Fallback(facts), nil
	}
	return parsed, nil
}

func (s *Service) gatherFacts(ctx context.Context, intent Intent, query string) (*Facts, error) {
	switch intent {
	case IntentOverview:
		return s.facts.OverviewFacts(ctx)
	case IntentTrend:
		return s.facts.TrendFacts(ctx, query)
	}

	product, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return s.facts.NotFound(query), nil
	}
	if intent == IntentCategory {
		return s.facts.CategoryFacts(ctx, product)
	}
	return s.facts.ItemFacts(ctx, product)
}

func extractionStage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyOutput):
		return "empty"
	case errors.Is(err, ErrNoCandidate):
		return "extract"
	case errors.Is(err, ErrNoValidAnswer):
		return "validate"
	default:
		return "unknown"
	}
}
