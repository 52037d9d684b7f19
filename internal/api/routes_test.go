package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
)

func TestComputeDensitiesRoute(t *testing.T) {
	_, api := humatest.New(t)
	RegisterDensityRoutes(api)

	body := map[string]any{
		"structures": []map[string]any{
			{
				"lattice": map[string]any{"matrix": [][]float64{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}},
				"sites": []map[string]any{
					{"species": []map[string]any{{"element": "C", "occu": 1}}},
					{"species": []map[string]any{{"element": "C", "occu": 1}}},
				},
			},
		},
		"energies": []float64{-5.0},
	}

	resp := api.Post("/api/densities", body)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"formula":"C2"`)
	assert.Contains(t, resp.Body.String(), `"energy":-5`)
}

func TestComputeDensitiesRoute_LengthMismatch(t *testing.T) {
	_, api := humatest.New(t)
	RegisterDensityRoutes(api)

	resp := api.Post("/api/densities", strings.NewReader(`{"structures": [], "energies": [-1.0]}`))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Every structure needs exactly one energy")
}
