package validate

// RequiredFields checks that every required key is present and non-empty in
// values. It returns one issue per missing field rather than stopping at the
// first, so a single malformed object surfaces all of its gaps at once.
// Fields are checked in the order given, keeping output deterministic.
func RequiredFields(path string, values map[string]interface{}, required []string) []Issue {
	var issues []Issue
	for _, name := range required {
		value, ok := values[name]
		if !ok || isMissing(value) {
			issues = append(issues, errorf(ErrMissingRequiredField, path,
				"missing required field '%s'", name).
				WithSuggestion("add '%s' to this object", name))
		}
	}
	return issues
}

// isMissing treats nil, empty strings, and zero pattern ids as absent.
func isMissing(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case int:
		return v == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}
