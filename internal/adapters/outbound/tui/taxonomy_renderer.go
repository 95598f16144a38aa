package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/skillguard/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderTaxonomy lists every error code with its severity and remediation.
func RenderTaxonomy(codes []domain.CodeInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s %s\n\n",
		sectionHeaderStyle.Render("Error codes"),
		dimStyle.Render(fmt.Sprintf("(%d)", len(codes))),
	)
	for _, c := range codes {
		fmt.Fprintf(&b, "    %s %s\n", severityTag(c.Severity), titleStyle.Render(string(c.Code)))
		fmt.Fprintf(&b, "          %s\n", c.Meaning)
		if c.Remediation != "" {
			fmt.Fprintf(&b, "          %s\n", dimStyle.Render("→ "+strings.ReplaceAll(c.Remediation, "{path}", "<path>")))
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + hintStyle.Render("Run skillguard codes --json for the machine-readable registry."))
	b.WriteString("\n")
	return b.String()
}

// ToolLine is one row of the tool listing.
type ToolLine struct {
	Name        string
	Description string
}

// RenderTools lists the validators a caller can invoke.
func RenderTools(tools []ToolLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n\n",
		sectionHeaderStyle.Render("Validators"),
		dimStyle.Render(fmt.Sprintf("(%d)", len(tools))),
	)
	for _, t := range tools {
		fmt.Fprintf(&b, "    %s %s\n", passStyle.Render("●"), titleStyle.Render(padRight(t.Name, 32)))
		fmt.Fprintf(&b, "      %s\n", dimStyle.Render(t.Description))
	}
	return b.String()
}
