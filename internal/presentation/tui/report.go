package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/sanitize"
)

// ValidationReport describes a save-gate result as markdown.
func ValidationReport(name string, res validator.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)

	if res.OK() {
		sb.WriteString("**Valid.** The workflow can be saved.\n\n")
	} else {
		fmt.Fprintf(&sb, "**Invalid** (%s): %s\n\n", res.Err.Category, res.Err.Message)
		if res.Err.NodeID != "" {
			fmt.Fprintf(&sb, "Offending block: `%s`\n\n", res.Err.NodeID)
		}
	}

	if len(res.CompletePaths) > 0 {
		sb.WriteString("## Complete paths\n\n")
		for _, p := range res.CompletePaths {
			fmt.Fprintf(&sb, "- %s\n", strings.Join(p, " → "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// LintReport lists lint issues as markdown.
func LintReport(name string, issues []validator.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if len(issues) == 0 {
		sb.WriteString("No issues found.\n")
		return sb.String()
	}

	var errs, warns int
	for _, i := range issues {
		if i.Severity == validator.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	fmt.Fprintf(&sb, "%d error(s), %d warning(s)\n\n", errs, warns)
	for _, i := range issues {
		fmt.Fprintf(&sb, "- %s\n", i.String())
	}
	return sb.String()
}

// FieldsReport tabulates the fields offered to an API block.
func FieldsReport(nodeID string, fields []domain.FormField) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Fields available to `%s`\n\n", nodeID)
	if len(fields) == 0 {
		sb.WriteString("No upstream Form block offers fields.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Name | Type | Required | Request key |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, f := range fields {
		typ := string(f.Type)
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %t | `%s` |\n", f.ID, f.Name, sanitize.TitleCase(typ), f.Required, f.NormalizedName())
	}
	return sb.String()
}
