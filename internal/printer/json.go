package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mgit-dev/mgit/internal/model"
)

// JSONPrinter prints repository information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type statusItem struct {
	Name        string       `json:"name"`
	Branch      string       `json:"branch"`
	LastUpdated *time.Time   `json:"last_updated"`
	Branches    []branchItem `json:"branches,omitempty"`
}

type branchItem struct {
	Name        string     `json:"name"`
	LastUpdated *time.Time `json:"last_updated"`
}

type opResultItem struct {
	Repo    string `json:"repo"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

type opOutput struct {
	Operation string         `json:"operation"`
	Results   []opResultItem `json:"results"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintStatusList prints repository states in JSON format.
func (j *JSONPrinter) PrintStatusList(states []model.RepoState) error {
	items := make([]statusItem, len(states))
	for i, s := range states {
		items[i] = statusItem{
			Name:        s.Name,
			Branch:      s.CurrentBranch,
			LastUpdated: utcOrNil(s.LastUpdated),
		}
		for _, b := range s.Branches {
			items[i].Branches = append(items[i].Branches, branchItem{
				Name:        b.Name,
				LastUpdated: utcOrNil(b.LastUpdated),
			})
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintOpResults prints per repository operation outcomes in JSON format.
func (j *JSONPrinter) PrintOpResults(operation string, results []model.OpResult) error {
	output := opOutput{Operation: operation, Results: make([]opResultItem, len(results))}
	for i, r := range results {
		output.Results[i] = opResultItem{Repo: r.Repo, Summary: r.Summary}
		if r.Err != nil {
			output.Results[i].Error = r.Err.Error()
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func utcOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
