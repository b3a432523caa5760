package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"blueprint/internal/domain"
)

// DefaultAnalysisTimeout bounds a single completion call.
const DefaultAnalysisTimeout = 20 * time.Second

const analystInstruction = "You are an expert SaaS consultant. Analyze the given SaaS idea and provide feedback on " +
	"Market Need (1-10), Technical Feasibility (1-10), and User Value (1-10). " +
	"Also provide constructive feedback and suggestions."

// TextCompleter is the port for an external text-completion service.
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Counter records notable events. prometheus.Counter satisfies it.
type Counter interface {
	Inc()
	Add(float64)
}

// Analyzer scores idea descriptions, preferring an external completion
// service and falling back to the local heuristic when it is absent or fails.
type Analyzer struct {
	completer TextCompleter
	timeout   time.Duration
	logger    *slog.Logger
	fallbacks Counter
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCompleter enables the external completion path.
func WithCompleter(c TextCompleter) AnalyzerOption {
	return func(a *Analyzer) { a.completer = c }
}

// WithAnalysisTimeout overrides DefaultAnalysisTimeout.
func WithAnalysisTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithFallbackCounter counts completions that fell back to the heuristic.
func WithFallbackCounter(c Counter) AnalyzerOption {
	return func(a *Analyzer) { a.fallbacks = c }
}

// NewAnalyzer creates an Analyzer. Without WithCompleter it is purely local.
func NewAnalyzer(logger *slog.Logger, opts ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{timeout: DefaultAnalysisTimeout, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze never fails: completion errors degrade to the heuristic.
func (a *Analyzer) Analyze(ctx context.Context, description string) domain.Analysis {
	if a.completer == nil {
		return domain.StructuredAnalysis(domain.ScoreIdea(description))
	}

	text, err := a.complete(ctx, description)
	if err != nil {
		a.logger.Warn("completion failed, using heuristic analysis", slog.String("error", err.Error()))
		if a.fallbacks != nil {
			a.fallbacks.Inc()
		}
		return domain.StructuredAnalysis(domain.ScoreIdea(description))
	}
	return domain.UnstructuredAnalysis(text)
}

func (a *Analyzer) complete(ctx context.Context, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.completer.Complete(ctx, analystInstruction, "Please analyze this SaaS idea: "+description)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
