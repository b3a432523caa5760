package domain

// Onboarding is the suggestion for users that have no project yet.
const Onboarding = "Start by creating your first SaaS project! Click 'New Project' to begin."

var nextSteps = []string{
	"Review your task priorities",
	"Update task statuses",
	"Add new tasks if needed",
	"Celebrate your progress!",
}

// Suggestion is the assistant's advice for the latest project.
type Suggestion struct {
	Suggestion      string   `json:"suggestion"`
	ProjectProgress *float64 `json:"project_progress,omitempty"`
	NextSteps       []string `json:"next_steps,omitempty"`
}

// OnboardingSuggestion is returned when the user has no project.
func OnboardingSuggestion() Suggestion {
	return Suggestion{Suggestion: Onboarding}
}

// Suggest picks a message band from task completion.
func Suggest(c TaskCounts) Suggestion {
	var fraction float64
	if c.Total > 0 {
		fraction = float64(c.Done) / float64(c.Total)
	}

	var msg string
	switch {
	case c.Done == 0:
		msg = "Great start! Begin by marking your first task as 'In Progress' to build momentum."
	case fraction < 0.3:
		msg = "Keep going! Focus on completing high-priority tasks first to see quick wins."
	case fraction < 0.7:
		msg = "You're making good progress! Consider adding more detailed tasks for better project tracking."
	default:
		msg = "Excellent work! You're almost done. Focus on the remaining tasks to complete your project."
	}

	progress := c.Progress()
	return Suggestion{
		Suggestion:      msg,
		ProjectProgress: &progress,
		NextSteps:       append([]string(nil), nextSteps...),
	}
}
