package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	reportTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	reportSectionStyle = lipgloss.NewStyle().Faint(true)
)

// WriteFailureReport renders the consolidated post-mortem: for every failed
// step, in declaration order, the repository, the command, the failure
// reason and the captured output streams, visually delimited. Nothing is
// written when no step failed.
func WriteFailureReport(w io.Writer, result *Result) error {
	failed := result.Failed()
	if len(failed) == 0 {
		return nil
	}

	divider := strings.Repeat("-", 72)

	fmt.Fprintf(w, "\n%s\n", reportTitleStyle.Render(fmt.Sprintf("%d failed step(s) in task %q", len(failed), result.Task)))

	for _, st := range failed {
		fmt.Fprintf(w, "%s\n", divider)
		fmt.Fprintf(w, "Repo:    %s\n", st.Repo)
		fmt.Fprintf(w, "Command: %s\n", st.DisplayCommand)
		fmt.Fprintf(w, "Reason:  %s\n", st.Reason)

		if st.Stdout != "" {
			fmt.Fprintf(w, "\n%s\n%s\n", reportSectionStyle.Render("captured stdout:"), strings.TrimRight(st.Stdout, "\n"))
		}
		if st.Stderr != "" {
			fmt.Fprintf(w, "\n%s\n%s\n", reportSectionStyle.Render("captured stderr:"), strings.TrimRight(st.Stderr, "\n"))
		}
	}
	fmt.Fprintf(w, "%s\n", divider)

	return nil
}
