package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mgit-dev/mgit/internal/model"
)

// TablePrinter prints repository information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintStatusList prints repository states in a table format.
func (t *TablePrinter) PrintStatusList(states []model.RepoState) error {
	if len(states) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tBRANCH\tUPDATED")

	for _, s := range states {
		updated := "unknown"
		if !s.LastUpdated.IsZero() {
			updated = TimeAgo(s.LastUpdated)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.CurrentBranch, updated)
	}

	return nil
}

// PrintOpResults prints per repository operation outcomes in a table format.
func (t *TablePrinter) PrintOpResults(operation string, results []model.OpResult) error {
	if len(results) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "REPO\t%s\n", strings.ToUpper(operation))

	for _, r := range results {
		outcome := r.Summary
		if r.Err != nil {
			outcome = fmt.Sprintf("error: %s", r.Err)
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Repo, outcome)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
