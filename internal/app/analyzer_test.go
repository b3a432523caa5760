package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"blueprint/internal/domain"
)

type fakeCompleter struct {
	text   string
	err    error
	block  bool
	system string
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

type fakeCounter struct{ n float64 }

func (c *fakeCounter) Inc()          { c.n++ }
func (c *fakeCounter) Add(v float64) { c.n += v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzer_HeuristicOnly(t *testing.T) {
	a := NewAnalyzer(discardLogger())
	got := a.Analyze(context.Background(), "a tool for teams")
	if got.Kind != domain.AnalysisStructured {
		t.Fatalf("expected structured analysis, got %v", got.Kind)
	}
	want := domain.ScoreIdea("a tool for teams")
	if got.Scores.MarketNeed != want.MarketNeed || got.Scores.UserValue != want.UserValue {
		t.Errorf("expected heuristic scores %+v, got %+v", want, got.Scores)
	}
}

func TestAnalyzer_CompleterSuccess(t *testing.T) {
	fc := &fakeCompleter{text: "Market need looks strong."}
	fallbacks := &fakeCounter{}
	a := NewAnalyzer(discardLogger(), WithCompleter(fc), WithFallbackCounter(fallbacks))

	got := a.Analyze(context.Background(), "invoice tracker")
	if got.Kind != domain.AnalysisUnstructured || got.Text != "Market need looks strong." {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if fc.prompt != "Please analyze this SaaS idea: invoice tracker" {
		t.Errorf("unexpected prompt %q", fc.prompt)
	}
	if fc.system != analystInstruction {
		t.Error("expected the analyst instruction as system message")
	}
	if fallbacks.n != 0 {
		t.Errorf("expected no fallback, got %v", fallbacks.n)
	}
}

func TestAnalyzer_Fallback(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"error", &fakeCompleter{err: errors.New("503 service unavailable")}},
		{"empty text", &fakeCompleter{text: "  \n"}},
		{"timeout", &fakeCompleter{block: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fallbacks := &fakeCounter{}
			a := NewAnalyzer(discardLogger(),
				WithCompleter(tc.fc),
				WithAnalysisTimeout(10*time.Millisecond),
				WithFallbackCounter(fallbacks),
			)

			got := a.Analyze(context.Background(), "blockchain payments")
			if got.Kind != domain.AnalysisStructured {
				t.Fatalf("expected heuristic fallback, got %+v", got)
			}
			if got.Scores.Feedback == "" {
				t.Error("expected heuristic feedback")
			}
			if fallbacks.n != 1 {
				t.Errorf("expected 1 fallback, got %v", fallbacks.n)
			}
		})
	}
}

func TestAnalyzer_UnstructuredHasNoScores(t *testing.T) {
	a := NewAnalyzer(nil, WithCompleter(&fakeCompleter{text: "ok"}))
	got := a.Analyze(context.Background(), "x")
	if s := got.ValidationScores(); s.MarketNeed != 0 || s.Feedback != "" || len(s.Suggestions) != 0 {
		t.Errorf("expected empty scores for unstructured analysis, got %+v", s)
	}
}
