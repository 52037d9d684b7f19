package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexsquires/code-club/internal/repository"
	"github.com/alexsquires/code-club/pkg/models"
	"github.com/google/uuid"
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *sql.DB
}

// NewPostgresRunRepository creates a new PostgreSQL run repository
func NewPostgresRunRepository(db *sql.DB) repository.RunRepository {
	return &PostgresRunRepository{db: db}
}

const runColumns = `id, name, status, progress, entries_key, error_message, created_at, updated_at, completed_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var entriesKey, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.Name,
		&run.Status,
		&run.Progress,
		&entriesKey,
		&errorMsg,
		&run.CreatedAt,
		&run.UpdatedAt,
		&completedAt)
	if err != nil {
		return nil, err
	}

	if entriesKey.Valid {
		run.EntriesKey = &entriesKey.String
	}
	if errorMsg.Valid {
		run.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return &run, nil
}

// Create inserts a new run record
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = now
	}

	query := `
		INSERT INTO density_runs (id, name, status, progress, entries_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Name,
		run.Status,
		run.Progress,
		run.EntriesKey,
		run.CreatedAt,
		run.UpdatedAt)

	return err
}

// GetByID retrieves a run by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM density_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, repository.ErrNotFound)
	}
	return run, err
}

// List returns the most recent runs first
func (r *PostgresRunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM density_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// UpdateStatus updates the status and progress of a run. Moving a run back to
// processing clears the error and completion time of an earlier attempt.
func (r *PostgresRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE density_runs
		SET status = $1, progress = $2, updated_at = NOW(),
		    error_message = CASE WHEN $1 = 'processing' THEN NULL ELSE error_message END,
		    completed_at = CASE
		        WHEN $1 = 'completed' THEN NOW()
		        WHEN $1 = 'processing' THEN NULL
		        ELSE completed_at
		    END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a run failed with a message
func (r *PostgresRunRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE density_runs
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores the points and summary of a run, replacing the results
// of an earlier attempt
func (r *PostgresRunRepository) StoreResults(ctx context.Context, results *models.RunResults) error {
	points, err := json.Marshal(results.Points)
	if err != nil {
		return fmt.Errorf("failed to marshal points: %w", err)
	}

	summary, err := json.Marshal(results.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO density_results (id, run_id, points, summary, plot_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE
		SET id = EXCLUDED.id, points = EXCLUDED.points, summary = EXCLUDED.summary,
		    plot_key = EXCLUDED.plot_key, created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.RunID,
		string(points),
		string(summary),
		results.PlotKey,
		results.CreatedAt)

	return err
}

// GetResults retrieves the results of a run
func (r *PostgresRunRepository) GetResults(ctx context.Context, runID uuid.UUID) (*models.RunResults, error) {
	query := `
		SELECT id, run_id, points, summary, plot_key, created_at
		FROM density_results
		WHERE run_id = $1`

	var results models.RunResults
	var pointsStr, summaryStr string
	var plotKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&results.ID,
		&results.RunID,
		&pointsStr,
		&summaryStr,
		&plotKey,
		&results.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for run %s: %w", runID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(pointsStr), &results.Points); err != nil {
		return nil, fmt.Errorf("failed to unmarshal points: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryStr), &results.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if plotKey.Valid {
		results.PlotKey = &plotKey.String
	}

	return &results, nil
}
