package domain

// GenerateBacklog expands feature tags into their task templates, keeping the
// order of features and of templates within each feature. Unknown tags are
// skipped.
func GenerateBacklog(features []string) []TaskTemplate {
	var out []TaskTemplate
	for _, f := range features {
		if spec, ok := lookupFeature(f); ok {
			out = append(out, spec.templates...)
		}
	}
	return out
}

func lookupFeature(tag string) (featureSpec, bool) {
	for _, spec := range catalog {
		if spec.tag == tag {
			return spec, true
		}
	}
	return featureSpec{}, false
}
