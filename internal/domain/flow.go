package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	flowStart     = "User Registration/Login"
	flowEnd       = "User Settings/Profile"
	flowSeparator = " → "

	// featurePages is how many feature tags get a dedicated page.
	featurePages = 3
)

var flowSteps = []struct {
	feature string
	step    string
}{
	{FeatureDashboard, "Dashboard Overview"},
	{FeatureDataManagement, "Data Input/Management"},
	{FeatureReporting, "View Reports/Analytics"},
	{FeatureNotifications, "Receive Notifications"},
}

var basePages = []string{"Landing Page", "Login/Register Page", "Dashboard", "Settings Page"}

// Flow is the linear user journey through a project's eventual product.
type Flow struct {
	Steps       []string `json:"flow_steps" yaml:"flow_steps"`
	Description string   `json:"flow_description" yaml:"flow_description"`
	Pages       []string `json:"pages_needed" yaml:"pages_needed"`
}

// ComposeFlow derives the user journey and page list from a feature set.
func ComposeFlow(features []string) Flow {
	steps := []string{flowStart}
	for _, fs := range flowSteps {
		if slices.Contains(features, fs.feature) {
			steps = append(steps, fs.step)
		}
	}
	steps = append(steps, flowEnd)

	pages := slices.Clone(basePages)
	title := cases.Title(language.English)
	for _, f := range features[:min(featurePages, len(features))] {
		pages = append(pages, title.String(f)+" Page")
	}

	return Flow{
		Steps:       steps,
		Description: strings.Join(steps, flowSeparator),
		Pages:       pages,
	}
}
