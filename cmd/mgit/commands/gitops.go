package commands

import (
	"context"
	"fmt"

	"github.com/mgit-dev/mgit/internal/app/gitops"
	"github.com/mgit-dev/mgit/internal/model"
	"github.com/mgit-dev/mgit/internal/printer"
)

// runGitOp wires the git operations service and prints per repository
// results. It fails when any repository failed, so the exit code reflects
// partial failures.
func runGitOp(ctx context.Context, rootCmd *RootCommand, operation string, f func(svc *gitops.Service) []model.OpResult) error {
	cfg, err := rootCmd.LoadProject()
	if err != nil {
		return err
	}

	git, err := rootCmd.GitClient()
	if err != nil {
		return err
	}

	svc, err := gitops.NewService(gitops.ServiceConfig{
		Project: cfg,
		Git:     git,
		Logger:  rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results := f(svc)

	p := printer.NewTablePrinter(rootCmd.Stdout)
	if err := p.PrintOpResults(operation, results); err != nil {
		return fmt.Errorf("could not print results: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%s failed for %d repositories", operation, failed)
	}

	return nil
}
