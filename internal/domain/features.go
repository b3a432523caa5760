package domain

import (
	"slices"
	"strings"
)

// Feature tags.
const (
	FeatureUserManagement = "user management"
	FeatureDashboard      = "dashboard"
	FeatureDataManagement = "data management"
	FeatureReporting      = "reporting"
	FeatureNotifications  = "notifications"
	FeatureAPIIntegration = "api integration"
	FeatureMobileApp      = "mobile app"
	FeaturePaymentSystem  = "payment system"
)

// MaxFeatures caps the number of tags extracted from one description.
const MaxFeatures = 6

// TaskTemplate seeds one task of a generated backlog.
type TaskTemplate struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Priority    string `json:"priority" yaml:"priority"`
}

// featureSpec ties a tag to the keywords that detect it and the tasks it
// expands into.
type featureSpec struct {
	tag       string
	keywords  []string
	templates []TaskTemplate
}

// catalog is the ordered feature table. Declaration order is the order tags
// are reported in.
var catalog = []featureSpec{
	{
		tag:      FeatureUserManagement,
		keywords: []string{"user", "account", "profile", "login", "registration"},
		templates: []TaskTemplate{
			{"Implement user registration", "Create user signup form and backend validation", PriorityHigh},
			{"Build login system", "Implement secure user authentication", PriorityHigh},
			{"User profile management", "Allow users to update their profiles", PriorityMedium},
		},
	},
	{
		tag:      FeatureDashboard,
		keywords: []string{"dashboard", "overview", "analytics", "metrics"},
		templates: []TaskTemplate{
			{"Create main dashboard", "Build overview page with key metrics", PriorityHigh},
			{"Add data visualization", "Implement charts and graphs for data", PriorityMedium},
		},
	},
	{
		tag:      FeatureDataManagement,
		keywords: []string{"data", "database", "storage", "information"},
		templates: []TaskTemplate{
			{"Design database schema", "Create efficient data structure", PriorityHigh},
			{"Implement CRUD operations", "Create, read, update, delete functionality", PriorityHigh},
		},
	},
	{
		tag:      FeatureReporting,
		keywords: []string{"report", "analytics", "insights", "charts"},
		templates: []TaskTemplate{
			{"Build reporting system", "Generate automated reports", PriorityMedium},
			{"Export functionality", "Allow users to export data", PriorityLow},
		},
	},
	{
		tag:      FeatureNotifications,
		keywords: []string{"notification", "alert", "email", "message"},
		templates: []TaskTemplate{
			{"Email notification system", "Send automated emails to users", PriorityMedium},
			{"In-app notifications", "Real-time notifications in application", PriorityLow},
		},
	},
	{
		tag:      FeatureAPIIntegration,
		keywords: []string{"api", "integration", "connect", "sync"},
		templates: []TaskTemplate{
			{"REST API development", "Create robust API endpoints", PriorityHigh},
			{"Third-party integrations", "Connect with external services", PriorityMedium},
		},
	},
	{
		tag:      FeatureMobileApp,
		keywords: []string{"mobile", "app", "ios", "android"},
		templates: []TaskTemplate{
			{"Mobile app development", "Create mobile application", PriorityLow},
			{"Responsive design", "Make web app mobile-friendly", PriorityMedium},
		},
	},
	{
		tag:      FeaturePaymentSystem,
		keywords: []string{"payment", "billing", "subscription", "pricing"},
		templates: []TaskTemplate{
			{"Payment integration", "Integrate payment gateway", PriorityHigh},
			{"Subscription management", "Handle recurring payments", PriorityMedium},
		},
	},
}

// ExtractFeatures detects feature tags in a description. "user management"
// and "dashboard" are always present; at most MaxFeatures tags are returned.
func ExtractFeatures(description string) []string {
	text := strings.ToLower(description)

	var features []string
	for _, spec := range catalog {
		for _, kw := range spec.keywords {
			if strings.Contains(text, kw) {
				features = append(features, spec.tag)
				break
			}
		}
	}

	if !slices.Contains(features, FeatureUserManagement) {
		features = append(features, FeatureUserManagement)
	}
	if !slices.Contains(features, FeatureDashboard) {
		features = append(features, FeatureDashboard)
	}

	if len(features) > MaxFeatures {
		features = features[:MaxFeatures]
	}
	return features
}

// FeatureTags lists every known tag in catalog order.
func FeatureTags() []string {
	tags := make([]string, len(catalog))
	for i, spec := range catalog {
		tags[i] = spec.tag
	}
	return tags
}
