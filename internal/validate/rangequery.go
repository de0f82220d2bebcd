package validate

import (
	"sort"
	"strings"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// ValidateRangeCondition checks that a range_condition value is one of the
// six legal condition literals. A non-string value yields a distinct wrong
// type issue. Exactly one issue is returned for any invalid value.
func ValidateRangeCondition(value interface{}, path string) []Issue {
	str, ok := value.(string)
	if !ok {
		return []Issue{errorf(ErrRangeConditionType, path,
			"range_condition must be a string, got %T", value).
			WithSuggestion("valid conditions are: %s", legalConditionList())}
	}

	if !schema.RangeConditions[schema.RangeCondition(str)] {
		return []Issue{errorf(ErrInvalidRangeCondition, path,
			"invalid range_condition '%s'", str).
			WithSuggestion("valid conditions are: %s", legalConditionList())}
	}

	return nil
}

// ExpectedParameterCount returns the number of parameters a pattern with the
// given range condition must declare: 3 for between (partition key plus two
// bounds), 2 for begins_with and each comparison operator, 0 for anything
// unrecognized.
func ExpectedParameterCount(condition string) int {
	switch schema.RangeCondition(condition) {
	case schema.RangeBetween:
		return 3
	case schema.RangeBeginsWith, schema.RangeGT, schema.RangeLT, schema.RangeGTE, schema.RangeLTE:
		return 2
	default:
		return 0
	}
}

// ValidateParameterCount compares a pattern's declared parameter count with
// the count its range condition requires. A pattern carrying a range
// condition but no parameters at all is a distinct error.
func ValidateParameterCount(pattern *schema.AccessPattern, path string) []Issue {
	expected := ExpectedParameterCount(string(pattern.RangeCondition))
	declared := len(pattern.Parameters)

	if declared == 0 {
		return []Issue{errorf(ErrMissingParameters, path,
			"access pattern '%s' has range_condition '%s' but must have parameters",
			pattern.Name, pattern.RangeCondition).
			WithSuggestion("declare %d parameter(s) for '%s'", expected, pattern.RangeCondition)}
	}

	switch {
	case declared < expected:
		return []Issue{errorf(ErrParameterCount, path,
			"access pattern '%s' declares %d parameter(s) but range_condition '%s' requires %d",
			pattern.Name, declared, pattern.RangeCondition, expected).
			WithSuggestion("add %d more parameter(s)", expected-declared)}
	case declared > expected:
		return []Issue{errorf(ErrParameterCount, path,
			"access pattern '%s' declares %d parameter(s) but range_condition '%s' requires %d",
			pattern.Name, declared, pattern.RangeCondition, expected).
			WithSuggestion("remove %d parameter(s)", declared-expected)}
	}

	return nil
}

// ValidateOperationCompatibility requires operation Query whenever a range
// condition is set. Range conditions are sort key constraints and have no
// meaning on any other operation.
func ValidateOperationCompatibility(pattern *schema.AccessPattern, path string) []Issue {
	if pattern.RangeCondition != "" && pattern.Operation != schema.OpQuery {
		return []Issue{errorf(ErrOperationIncompatible, path,
			"access pattern '%s' has range_condition '%s' but operation '%s'; range conditions require Query",
			pattern.Name, pattern.RangeCondition, pattern.Operation).
			WithSuggestion("change the operation to Query or remove range_condition")}
	}
	return nil
}

// ValidateCompleteRangeQuery runs the full range query rule set for one
// pattern. If the condition literal itself is invalid, the parameter count
// and operation checks are suppressed: they would be meaningless against an
// unrecognized condition. Otherwise both remaining checks run and their
// issues are concatenated.
func ValidateCompleteRangeQuery(pattern *schema.AccessPattern, path string) []Issue {
	issues := ValidateRangeCondition(string(pattern.RangeCondition), path)
	if len(issues) > 0 {
		return issues
	}

	issues = append(issues, ValidateParameterCount(pattern, path)...)
	issues = append(issues, ValidateOperationCompatibility(pattern, path)...)
	return issues
}

func legalConditionList() string {
	conditions := make([]string, 0, len(schema.RangeConditions))
	for c := range schema.RangeConditions {
		conditions = append(conditions, string(c))
	}
	sort.Strings(conditions)
	return strings.Join(conditions, ", ")
}
