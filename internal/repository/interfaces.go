package repository

import (
	"context"
	"errors"

	"github.com/alexsquires/code-club/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a run or its results do not exist
var ErrNotFound = errors.New("not found")

// RunRepository defines the interface for density run data operations
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
	List(ctx context.Context, limit int) ([]*models.Run, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.RunResults) error
	GetResults(ctx context.Context, runID uuid.UUID) (*models.RunResults, error)
}
