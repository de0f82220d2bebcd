package ui

import (
	"strings"
	"testing"

	"github.com/tuanknguyen/dynagen/internal/validate"
)

func TestFormatResult(t *testing.T) {
	result := &validate.Result{
		IsValid: false,
		Errors: []validate.Issue{
			{
				Code:       "V201",
				Path:       "tables[0].gsi_list[0]",
				Message:    "GSI 'StatusIndex' uses INCLUDE projection but declares no included_attributes",
				Suggestion: `list the attributes to project, e.g. "included_attributes": ["status"]`,
				Severity:   validate.SeverityError,
			},
		},
		Warnings: []validate.Issue{
			{
				Code:     "W001",
				Path:     "tables[0].gsi_list[0]",
				Message:  "required field 'order_id' is not projected",
				Severity: validate.SeverityWarning,
			},
		},
	}

	out := FormatResult(result, ReportOptions{NoColor: true})

	for _, want := range []string{
		"✗ tables[0].gsi_list[0]: GSI 'StatusIndex'",
		"hint: list the attributes to project",
		"! tables[0].gsi_list[0]: required field 'order_id'",
		"1 error(s), 1 warning(s): schema is invalid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResult_Valid(t *testing.T) {
	out := FormatResult(&validate.Result{IsValid: true}, ReportOptions{NoColor: true})
	if !strings.Contains(out, "0 error(s), 0 warning(s): schema is valid") {
		t.Errorf("unexpected report:\n%s", out)
	}
}
