package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/alexsquires/code-club/internal/density"
	"github.com/alexsquires/code-club/pkg/models"
)

// DensityHandler computes densities for structures sent inline
type DensityHandler struct{}

// NewDensityHandler creates a new density handler
func NewDensityHandler() *DensityHandler {
	return &DensityHandler{}
}

// ComputeDensities returns one (energy, density) point per structure
func (h *DensityHandler) ComputeDensities(ctx context.Context, req *models.ComputeDensitiesRequest) (*models.ComputeDensitiesResponse, error) {
	points, err := density.Evaluate(req.Body.Structures, req.Body.Energies)
	if err != nil {
		switch {
		case errors.Is(err, density.ErrLengthMismatch):
			return nil, huma.Error400BadRequest("Every structure needs exactly one energy", err)
		case errors.Is(err, density.ErrMalformedSite), errors.Is(err, density.ErrInvalidVolume):
			return nil, huma.Error422UnprocessableEntity("Structure cannot be weighed", err)
		default:
			return nil, huma.Error500InternalServerError("Density computation failed", err)
		}
	}

	for i := range points {
		points[i].Formula = req.Body.Structures[i].Formula()
	}

	log.Info().Int("structures", len(points)).Msg("Densities computed")
	return &models.ComputeDensitiesResponse{
		Body: models.ComputeDensitiesResponseBody{
			Points:  points,
			Summary: models.Summarize(points),
		},
	}, nil
}
