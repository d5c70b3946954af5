package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
	"github.com/mgit-dev/mgit/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SaveRepoState stores the state of a repository, replacing any previous one.
func (r *Repository) SaveRepoState(ctx context.Context, state model.RepoState) error {
	if state.Name == "" {
		return fmt.Errorf("repository name is required: %w", model.ErrNotValid)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	query := `
		INSERT INTO repo_states (name, current_branch, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			current_branch = excluded.current_branch,
			last_updated = excluded.last_updated
	`
	_, err = tx.ExecContext(ctx, query, state.Name, state.CurrentBranch, unixOrNil(state.LastUpdated))
	if err != nil {
		return fmt.Errorf("could not upsert repo state: %w", err)
	}

	// Branches are replaced as a whole, deleted ones must not linger.
	_, err = tx.ExecContext(ctx, `DELETE FROM repo_branches WHERE repo_name = ?`, state.Name)
	if err != nil {
		return fmt.Errorf("could not clear branches: %w", err)
	}

	insertQuery := `INSERT INTO repo_branches (repo_name, name, last_updated) VALUES (?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range state.Branches {
		if _, err := stmt.ExecContext(ctx, state.Name, b.Name, unixOrNil(b.LastUpdated)); err != nil {
			return fmt.Errorf("could not insert branch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Saved state for repository %s", state.Name)
	return nil
}

// GetRepoState retrieves a repository state by name.
func (r *Repository) GetRepoState(ctx context.Context, name string) (*model.RepoState, error) {
	query := `SELECT name, current_branch, last_updated FROM repo_states WHERE name = ?`

	var state model.RepoState
	var lastUpdated sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&state.Name, &state.CurrentBranch, &lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("repository state %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query repo state: %w", err)
	}
	if lastUpdated.Valid {
		state.LastUpdated = timeFromUnix(lastUpdated.Int64)
	}

	branches, err := r.branches(ctx, name)
	if err != nil {
		return nil, err
	}
	state.Branches = branches

	return &state, nil
}

// ListRepoStates returns all stored repository states.
func (r *Repository) ListRepoStates(ctx context.Context) ([]model.RepoState, error) {
	query := `SELECT name, current_branch, last_updated FROM repo_states ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query repo states: %w", err)
	}
	defer rows.Close()

	var states []model.RepoState
	for rows.Next() {
		var state model.RepoState
		var lastUpdated sql.NullInt64
		if err := rows.Scan(&state.Name, &state.CurrentBranch, &lastUpdated); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		if lastUpdated.Valid {
			state.LastUpdated = timeFromUnix(lastUpdated.Int64)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range states {
		branches, err := r.branches(ctx, states[i].Name)
		if err != nil {
			return nil, err
		}
		states[i].Branches = branches
	}

	return states, nil
}

// DeleteRepoState deletes a repository state.
func (r *Repository) DeleteRepoState(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM repo_states WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("could not delete repo state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repository state %s: %w", name, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted state for repository %s", name)
	return nil
}

func (r *Repository) branches(ctx context.Context, repoName string) ([]model.BranchInfo, error) {
	query := `SELECT name, last_updated FROM repo_branches WHERE repo_name = ? ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, repoName)
	if err != nil {
		return nil, fmt.Errorf("could not query branches: %w", err)
	}
	defer rows.Close()

	var branches []model.BranchInfo
	for rows.Next() {
		var b model.BranchInfo
		var lastUpdated sql.NullInt64
		if err := rows.Scan(&b.Name, &lastUpdated); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		if lastUpdated.Valid {
			b.LastUpdated = timeFromUnix(lastUpdated.Int64)
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return branches, nil
}

func unixOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
