package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// complexTech matches technologies that lower the feasibility score. It is
// applied to the lowercased description, so the uppercase AI alternative
// never matches; it is kept so "AI" ideas score as they always have.
var complexTech = regexp.MustCompile(`AI|blockchain|machine learning|neural network`)

var defaultSuggestions = []string{
	"Validate your idea with potential customers",
	"Create a minimum viable product (MVP)",
	"Research your competition",
	"Define clear user personas",
	"Plan your monetization strategy",
}

// ScoreIdea scores a description on market need, technical feasibility and
// user value using word count and keyword hits.
func ScoreIdea(description string) ValidationScores {
	words := len(strings.Fields(description))
	hits := len(complexTech.FindAllStringIndex(strings.ToLower(description), -1))

	marketNeed := clamp(words/10, 3, 10)
	feasibility := clamp(8-hits, 4, 10)
	userValue := clamp(words/15, 3, 10)

	return ValidationScores{
		MarketNeed:           marketNeed,
		TechnicalFeasibility: feasibility,
		UserValue:            userValue,
		Feedback: fmt.Sprintf("Your SaaS idea shows promise. Market need score: %d/10 - Consider validating with potential users. "+
			"Technical feasibility: %d/10 - This appears technically achievable. "+
			"User value: %d/10 - Focus on clearly defining the value proposition.",
			marketNeed, feasibility, userValue),
		Suggestions: append([]string(nil), defaultSuggestions...),
	}
}

func clamp(x, lo, hi int) int {
	return max(lo, min(hi, x))
}
