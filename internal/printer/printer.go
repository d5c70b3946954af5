package printer

import "github.com/mgit-dev/mgit/internal/model"

// Printer knows how to print repository information in different formats.
type Printer interface {
	PrintStatusList(states []model.RepoState) error
	PrintOpResults(operation string, results []model.OpResult) error
	PrintMessage(msg string) error
}
