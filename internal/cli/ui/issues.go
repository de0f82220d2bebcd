// Package ui renders validation results for terminal consumption.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tuanknguyen/dynagen/internal/validate"
)

// ReportOptions configures validation report formatting.
type ReportOptions struct {
	NoColor bool
}

// FormatResult renders a validation result as a human readable report:
// every error, every warning, and a one line verdict.
//
// Example output:
//
//	✗ tables[0].gsi_list[0]: GSI 'StatusIndex' uses INCLUDE projection but declares no included_attributes
//	    hint: list the attributes to project, e.g. "included_attributes": ["status"]
//	1 error(s), 0 warning(s): schema is invalid
func FormatResult(result *validate.Result, opts ReportOptions) string {
	var b strings.Builder

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	if opts.NoColor {
		for _, c := range []*color.Color{red, yellow, green, dim} {
			c.DisableColor()
		}
	}

	for _, issue := range result.Errors {
		red.Fprintf(&b, "✗ %s: %s\n", issue.Path, issue.Message)
		if issue.Suggestion != "" {
			dim.Fprintf(&b, "    hint: %s\n", issue.Suggestion)
		}
	}

	for _, issue := range result.Warnings {
		yellow.Fprintf(&b, "! %s: %s\n", issue.Path, issue.Message)
		if issue.Suggestion != "" {
			dim.Fprintf(&b, "    hint: %s\n", issue.Suggestion)
		}
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
	if result.IsValid {
		green.Fprintf(&b, "%s: schema is valid\n", summary)
	} else {
		red.Fprintf(&b, "%s: schema is invalid\n", summary)
	}

	return b.String()
}

// WriteResult writes the formatted report to w.
func WriteResult(w io.Writer, result *validate.Result, opts ReportOptions) error {
	_, err := io.WriteString(w, FormatResult(result, opts))
	return err
}
