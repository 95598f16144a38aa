package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/skillguard/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(info)
	pathStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderEnvelope formats an envelope for a human reader. It never changes
// what the envelope says; the JSON line stays the contract.
func RenderEnvelope(env domain.Envelope) string {
	var b strings.Builder

	// ── Header ──
	verdict := passStyle.Bold(true).Render("PASS")
	if !env.OK {
		verdict = failStyle.Bold(true).Render("FAIL")
	}
	title := headerStyle.Render(env.Tool)
	subtitle := dimStyle.Render(fmt.Sprintf("%d errors  %d warnings", len(env.Errors), len(env.Warnings)))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdict))
	b.WriteString("\n\n")

	// ── Entries ──
	if len(env.Errors) == 0 && len(env.Warnings) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
	}
	for _, e := range env.Errors {
		renderEntry(&b, domain.SeverityError, e)
	}
	for _, e := range env.Warnings {
		renderEntry(&b, domain.SeverityWarning, e)
	}

	// ── Result ──
	if len(env.Result) > 0 {
		b.WriteString("\n")
		b.WriteString("  " + separatorLine)
		b.WriteString("\n\n")
		b.WriteString("  " + titleStyle.Render("Result") + "\n\n")
		keys := make([]string, 0, len(env.Result))
		for k := range env.Result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s %s\n", keyStyle.Render(padRight(k, 20)), domain.Render(env.Result[k]))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderEntry(b *strings.Builder, severity string, e domain.Entry) {
	tag := severityTag(severity)
	fmt.Fprintf(b, "    %s %s", tag, titleStyle.Render(string(e.Code)))
	if e.Path != nil {
		fmt.Fprintf(b, "  %s", pathStyle.Render(*e.Path))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "          %s\n", e.Message)
	if e.Remediation != nil {
		fmt.Fprintf(b, "          %s\n", dimStyle.Render("→ "+*e.Remediation))
	}
}

func severityTag(severity string) string {
	if severity == domain.SeverityError {
		return errorTagStyle.Render("error")
	}
	return warnTagStyle.Render("warn ")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
