package ui

import (
	"fmt"
	"strings"
)

// TablePlan is the statement list computed for one table.
type TablePlan struct {
	Table      string
	Statements []string
	Err        error
}

// RenderPlan renders the plans of one database, one section per table.
func RenderPlan(alias string, plans []TablePlan) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Plan for " + alias))
	b.WriteString("\n")

	pending := 0
	for _, p := range plans {
		b.WriteString("\n")
		switch {
		case p.Err != nil:
			b.WriteString(StyleError.Render(fmt.Sprintf("✗ %s: %v", p.Table, p.Err)))
			b.WriteString("\n")
		case len(p.Statements) == 0:
			b.WriteString(StyleSuccess.Render("✓ " + p.Table))
			b.WriteString(StyleMuted.Render("  up to date"))
			b.WriteString("\n")
		default:
			pending += len(p.Statements)
			b.WriteString(StyleHighlight.Render(fmt.Sprintf("~ %s", p.Table)))
			b.WriteString(StyleMuted.Render(fmt.Sprintf("  %d statement(s)", len(p.Statements))))
			b.WriteString("\n")
			for _, stmt := range p.Statements {
				b.WriteString(StyleStatement.Render(stmt + ";"))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if pending == 0 {
		b.WriteString(StyleMuted.Render("Nothing to do."))
	} else {
		b.WriteString(StyleMuted.Render(fmt.Sprintf("%d statement(s) pending.", pending)))
	}
	b.WriteString("\n")
	return b.String()
}
