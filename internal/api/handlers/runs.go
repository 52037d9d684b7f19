package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/alexsquires/code-club/internal/processing"
	"github.com/alexsquires/code-club/internal/repository"
	"github.com/alexsquires/code-club/internal/storage"
	"github.com/alexsquires/code-club/pkg/models"
)

// MaxEntriesFileSize is the largest entries upload accepted, in bytes
const MaxEntriesFileSize = 50 * 1024 * 1024

// RunHandler handles density run HTTP requests
type RunHandler struct {
	repo          repository.RunRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewRunHandler creates a new run handler
func NewRunHandler(repo repository.RunRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *RunHandler {
	return &RunHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateRun creates a new run and returns an upload URL for its entries file
func (h *RunHandler) CreateRun(ctx context.Context, req *models.CreateRunRequest) (*models.CreateRunResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Str("contentType", req.Body.ContentType).Msg("Creating new run")

	if req.Body.FileSize < 2 {
		return nil, huma.Error400BadRequest("Entries file is empty.")
	}
	if req.Body.FileSize > MaxEntriesFileSize {
		return nil, huma.Error400BadRequest("Entries file too large. Split it into several runs.")
	}

	runID := uuid.New()
	entriesKey := fmt.Sprintf("entries/%s.json", runID)
	if req.Body.ContentType == "application/gzip" {
		entriesKey += ".gz"
	}

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, entriesKey, req.Body.ContentType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("Entries format not supported. Upload JSON or gzipped JSON.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now()
	run := &models.Run{
		ID:         runID.String(),
		Name:       req.Body.Name,
		Status:     models.StatusPending,
		Progress:   0,
		EntriesKey: &entriesKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.repo.Create(ctx, run); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create run", err)
	}

	log.Info().Str("runID", run.ID).Str("entriesKey", entriesKey).Msg("Run created, returning upload URL")
	return &models.CreateRunResponse{
		Body: models.CreateRunResponseBody{
			ID:        run.ID,
			UploadURL: uploadURL,
			ExpiresIn: int(storage.UploadURLExpiry.Seconds()),
		},
	}, nil
}

// ListRuns returns the most recent runs
func (h *RunHandler) ListRuns(ctx context.Context, req *models.ListRunsRequest) (*models.ListRunsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	runs, err := h.repo.List(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list runs", err)
	}

	resp := &models.ListRunsResponse{}
	resp.Body.Runs = make([]models.GetRunStatusResponseBody, 0, len(runs))
	for _, run := range runs {
		resp.Body.Runs = append(resp.Body.Runs, models.GetRunStatusResponseBody{
			ID:       run.ID,
			Status:   run.Status,
			Progress: run.Progress,
			Message:  generateStatusMessage(run.Status, run.Progress),
			Error:    run.ErrorMsg,
		})
	}
	return resp, nil
}

// GetRunStatus returns the current status of a run
func (h *RunHandler) GetRunStatus(ctx context.Context, req *models.GetRunStatusRequest) (*models.GetRunStatusResponse, error) {
	runID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid run ID", err)
	}

	run, err := h.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, notFoundOr500("Run not found", err)
	}

	var resultsID *string
	if run.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, runID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetRunStatusResponse{
		Body: models.GetRunStatusResponseBody{
			ID:        run.ID,
			Status:    run.Status,
			Progress:  run.Progress,
			Message:   generateStatusMessage(run.Status, run.Progress),
			Error:     run.ErrorMsg,
			ResultsID: resultsID,
		},
	}, nil
}

// GetRunResults returns the density points of a completed run
func (h *RunHandler) GetRunResults(ctx context.Context, req *models.GetRunResultsRequest) (*models.GetRunResultsResponse, error) {
	runID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid run ID", err)
	}

	run, err := h.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, notFoundOr500("Run not found", err)
	}

	if run.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Run not yet completed",
			fmt.Errorf("run status is %s", run.Status))
	}

	results, err := h.repo.GetResults(ctx, runID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	var plotURL string
	if results.PlotKey != nil {
		plotURL, err = h.s3Service.GenerateDownloadURL(ctx, *results.PlotKey)
		if err != nil {
			// Points are still useful without the figure
			log.Warn().Err(err).Str("runID", run.ID).Msg("Failed to sign plot URL")
			plotURL = ""
		}
	}

	return &models.GetRunResultsResponse{
		Body: models.GetRunResultsResponseBody{
			ID:        results.ID,
			RunID:     results.RunID,
			Points:    results.Points,
			Summary:   results.Summary,
			PlotURL:   plotURL,
			CreatedAt: results.CreatedAt,
		},
	}, nil
}

// StartProcessing starts processing an uploaded entries file
func (h *RunHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("runID", req.ID).Msg("Processing start request received")
	runID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid run ID", err)
	}

	run, err := h.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, notFoundOr500("Run not found", err)
	}
	if run.Status == models.StatusProcessing || run.Status == models.StatusCompleted {
		return nil, huma.Error409Conflict("Run already "+run.Status)
	}

	// Processing outlives the request
	go func() {
		if err := h.processingSvc.ProcessRun(context.Background(), runID); err != nil {
			log.Error().Err(err).Str("runID", runID.String()).Msg("Run processing failed")
		}
	}()

	return &models.StartProcessingResponse{
		Body: models.StartProcessingResponseBody{
			Message: "Processing started successfully",
		},
	}, nil
}

// generateStatusMessage creates a human-readable status message
func generateStatusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Waiting for entries upload..."
	case models.StatusProcessing:
		if progress < 40 {
			return "Downloading entries file..."
		} else if progress < 60 {
			return "Reading structures..."
		} else if progress < 80 {
			return "Computing densities..."
		} else {
			return "Rendering plot..."
		}
	case models.StatusCompleted:
		return "Densities ready!"
	case models.StatusFailed:
		return "Run failed. Check the entries file and try again."
	default:
		return "Unknown status"
	}
}

func notFoundOr500(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound(msg, err)
	}
	return huma.Error500InternalServerError("Failed to load run", err)
}
