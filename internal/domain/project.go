package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ProjectStatusActive is the status every new project starts in.
const ProjectStatusActive = "active"

// ValidationScores is the structured result of scoring an idea. The zero
// value encodes as an empty JSON object.
type ValidationScores struct {
	MarketNeed           int      `json:"market_need,omitempty" bson:"market_need,omitempty" yaml:"market_need,omitempty"`
	TechnicalFeasibility int      `json:"technical_feasibility,omitempty" bson:"technical_feasibility,omitempty" yaml:"technical_feasibility,omitempty"`
	UserValue            int      `json:"user_value,omitempty" bson:"user_value,omitempty" yaml:"user_value,omitempty"`
	Feedback             string   `json:"feedback,omitempty" bson:"feedback,omitempty" yaml:"feedback,omitempty"`
	Suggestions          []string `json:"suggestions,omitempty" bson:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// AnalysisKind tags which variant an Analysis holds.
type AnalysisKind int

const (
	// AnalysisStructured carries heuristic scores.
	AnalysisStructured AnalysisKind = iota
	// AnalysisUnstructured carries free text from a completion service.
	AnalysisUnstructured
)

// Analysis is the outcome of analysing an idea: either structured scores or
// an opaque block of text.
type Analysis struct {
	Kind   AnalysisKind
	Scores ValidationScores
	Text   string
}

// StructuredAnalysis wraps heuristic scores.
func StructuredAnalysis(s ValidationScores) Analysis {
	return Analysis{Kind: AnalysisStructured, Scores: s}
}

// UnstructuredAnalysis wraps free-text feedback.
func UnstructuredAnalysis(text string) Analysis {
	return Analysis{Kind: AnalysisUnstructured, Text: text}
}

// ValidationScores returns the scores to persist on a project. Free-text
// analyses persist as empty scores.
func (a Analysis) ValidationScores() ValidationScores {
	if a.Kind == AnalysisStructured {
		return a.Scores
	}
	return ValidationScores{}
}

// MarshalJSON encodes structured analyses as an object and unstructured ones
// as a plain string.
func (a Analysis) MarshalJSON() ([]byte, error) {
	if a.Kind == AnalysisUnstructured {
		return json.Marshal(a.Text)
	}
	return json.Marshal(a.Scores)
}

// Project is a user's SaaS idea together with the blueprint derived from it.
type Project struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ValidationScores ValidationScores `json:"validation_scores"`
	Features         []string         `json:"features"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ProjectRepository is the port for project persistence. Lookups are always
// scoped to the owner and return (nil, nil) when nothing matches.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p Project) error
	GetProject(ctx context.Context, ownerID, id string) (*Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]Project, error)
	LatestProject(ctx context.Context, ownerID string) (*Project, error)
}
