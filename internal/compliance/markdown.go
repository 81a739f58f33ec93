package compliance

import (
	"fmt"
	"strings"
)

// Markdown renders the summary as the dashboard served by the
// drata://compliance/summary resource.
func (s Summary) Markdown() string {
	var b strings.Builder
	a := s.Summary

	b.WriteString("# Drata Compliance Summary\n\n")
	fmt.Fprintf(&b, "**Status**: %s\n", s.Status)
	fmt.Fprintf(&b, "**Total Issues**: %d\n", s.TotalIssues)

	b.WriteString("\n## Controls\n")
	fmt.Fprintf(&b, "- Total: %d\n", a.Controls.Total)
	for _, st := range ControlStatuses {
		if n := a.Controls.Breakdown[st]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", st, n)
		}
	}

	b.WriteString("\n## Monitors (Automated Tests)\n")
	fmt.Fprintf(&b, "- Total: %d\n", a.Monitors.Total)
	fmt.Fprintf(&b, "- Passed: %d\n", a.Monitors.Passed)
	fmt.Fprintf(&b, "- Failed: %d (%s)\n", a.Monitors.Failed, a.Monitors.Status)

	b.WriteString("\n## Personnel\n")
	fmt.Fprintf(&b, "- Active: %d\n", a.Personnel.Total)
	fmt.Fprintf(&b, "- With Device Issues: %d (%s)\n", a.Personnel.WithDeviceIssues, a.Personnel.Status)

	b.WriteString("\n## Connections\n")
	fmt.Fprintf(&b, "- Total: %d\n", a.Connections.Total)
	fmt.Fprintf(&b, "- Active: %d\n", a.Connections.Active)
	fmt.Fprintf(&b, "- Failed: %d (%s)\n", a.Connections.Failed, a.Connections.Status)

	b.WriteString("\n## Recommendation\n")
	b.WriteString(s.Recommendation)
	b.WriteString("\n")
	if s.Truncated {
		b.WriteString("\n_Some lists were truncated at the page limit; counts may be incomplete._\n")
	}
	return b.String()
}
