package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/alexsquires/code-club/internal/density"
	"github.com/alexsquires/code-club/internal/loader"
	"github.com/alexsquires/code-club/internal/plot"
	"github.com/alexsquires/code-club/internal/repository"
	"github.com/alexsquires/code-club/internal/storage"
	"github.com/alexsquires/code-club/pkg/models"
)

// ErrInvalidInput marks failures caused by the uploaded entries rather than
// by the infrastructure
var ErrInvalidInput = errors.New("invalid input")

type ProcessingService interface {
	ProcessRun(ctx context.Context, runID uuid.UUID) error
}

type processingService struct {
	s3         storage.S3Service
	repository repository.RunRepository
	plotOpts   plot.Options
}

func NewProcessingService(s3Service storage.S3Service, repo repository.RunRepository, plotOpts plot.Options) ProcessingService {
	if plotOpts.Format == "" {
		plotOpts.Format = plot.DefaultOptions().Format
	}
	return &processingService{
		s3:         s3Service,
		repository: repo,
		plotOpts:   plotOpts,
	}
}

// PlotKey is the object key of the rendered plot for a run
func PlotKey(runID uuid.UUID, format string) string {
	return fmt.Sprintf("plots/%s.%s", runID, strings.ToLower(format))
}

// ComputePoints evaluates entries into annotated density points
func ComputePoints(entries []models.Entry) ([]models.DensityPoint, error) {
	structures, energies := loader.Project(entries)

	points, err := density.Evaluate(structures, energies)
	if err != nil {
		return nil, err
	}

	for i := range points {
		points[i].EntryID = entries[i].EntryID
		points[i].Formula = structures[i].Formula()
	}
	return points, nil
}

func (s *processingService) ProcessRun(ctx context.Context, runID uuid.UUID) error {
	logger := log.With().Str("runID", runID.String()).Logger()

	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 10); err != nil {
		return s.fail(ctx, runID, "Failed to start processing", err)
	}

	// Step 2: Get run details
	run, err := s.repository.GetByID(ctx, runID)
	if err != nil {
		return s.fail(ctx, runID, "Failed to load run", err)
	}
	if run.EntriesKey == nil {
		return s.fail(ctx, runID, "Run has no entries file", fmt.Errorf("%w: missing entries key", ErrInvalidInput))
	}

	// Step 3: Download the entries file
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 20); err != nil {
		return s.fail(ctx, runID, "Failed to update progress", err)
	}
	data, err := s.s3.DownloadFile(ctx, *run.EntriesKey)
	if err != nil {
		return s.fail(ctx, runID, "Failed to download entries file", err)
	}

	// Step 4: Decode entries
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 40); err != nil {
		return s.fail(ctx, runID, "Failed to update progress", err)
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return s.fail(ctx, runID, fmt.Sprintf("Failed to read entries: %v", err), fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	logger.Info().Int("entries", len(entries)).Msg("Entries decoded")

	// Step 5: Compute densities
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 60); err != nil {
		return s.fail(ctx, runID, "Failed to update progress", err)
	}
	points, err := ComputePoints(entries)
	if err != nil {
		return s.fail(ctx, runID, fmt.Sprintf("Density computation failed: %v", err), fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	// Step 6: Render and upload the plot
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 80); err != nil {
		return s.fail(ctx, runID, "Failed to update progress", err)
	}
	var plotKey *string
	if len(points) > 0 {
		var buf bytes.Buffer
		if err := plot.Render(&buf, points, s.plotOpts); err != nil {
			return s.fail(ctx, runID, "Failed to render plot", err)
		}
		key := PlotKey(runID, s.plotOpts.Format)
		if err := s.s3.UploadFile(ctx, key, plot.ContentType(s.plotOpts.Format), buf.Bytes()); err != nil {
			return s.fail(ctx, runID, "Failed to upload plot", err)
		}
		plotKey = &key
	}

	// Step 7: Store results
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusProcessing, 90); err != nil {
		return s.fail(ctx, runID, "Failed to update progress", err)
	}
	results := &models.RunResults{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Points:    points,
		Summary:   models.Summarize(points),
		PlotKey:   plotKey,
		CreatedAt: time.Now(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return s.fail(ctx, runID, "Failed to store results", err)
	}

	// Step 8: Mark complete
	if err := s.repository.UpdateStatus(ctx, runID, models.StatusCompleted, 100); err != nil {
		return s.fail(ctx, runID, "Failed to complete run", err)
	}

	logger.Info().
		Int("points", len(points)).
		Float64("meanDensity", results.Summary.MeanDensity).
		Msg("Run completed")

	return nil
}

// fail records msg on the run and returns cause
func (s *processingService) fail(ctx context.Context, runID uuid.UUID, msg string, cause error) error {
	log.Error().Err(cause).Str("runID", runID.String()).Msg(msg)
	if err := s.repository.UpdateError(ctx, runID, msg); err != nil {
		log.Error().Err(err).Str("runID", runID.String()).Msg("Failed to record run error")
	}
	return cause
}

// decodeEntries reads a JSON entries document, gunzipping it first when the
// payload starts with the gzip magic number
func decodeEntries(data []byte) ([]models.Entry, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		return loader.Load(gz)
	}
	return loader.Load(bytes.NewReader(data))
}
