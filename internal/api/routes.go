package api

import (
	"net/http"

	"github.com/alexsquires/code-club/internal/api/handlers"
	"github.com/alexsquires/code-club/internal/processing"
	"github.com/alexsquires/code-club/internal/repository"
	"github.com/alexsquires/code-club/internal/storage"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterDensityRoutes sets up the routes that need no storage or database
func RegisterDensityRoutes(api huma.API) {
	densityHandler := handlers.NewDensityHandler()

	huma.Register(api, huma.Operation{
		OperationID: "computeDensities",
		Method:      http.MethodPost,
		Path:        "/api/densities",
		Summary:     "Compute densities",
		Description: "Computes the mass density of each structure and pairs it with its energy",
		Tags:        []string{"Densities"},
	}, densityHandler.ComputeDensities)
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, runRepo repository.RunRepository, processingSvc processing.ProcessingService) {
	RegisterDensityRoutes(api)

	runHandler := handlers.NewRunHandler(runRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID: "createRun",
		Method:      http.MethodPost,
		Path:        "/api/runs",
		Summary:     "Create a new run",
		Description: "Creates a new density run and returns an upload URL for its entries file",
		Tags:        []string{"Runs"},
	}, runHandler.CreateRun)

	huma.Register(api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/api/runs",
		Summary:     "List runs",
		Description: "Returns the most recent runs, newest first",
		Tags:        []string{"Runs"},
	}, runHandler.ListRuns)

	huma.Register(api, huma.Operation{
		OperationID: "getRunStatus",
		Method:      http.MethodGet,
		Path:        "/api/runs/{id}/status",
		Summary:     "Get run status",
		Description: "Returns the current status and progress of a run",
		Tags:        []string{"Runs"},
	}, runHandler.GetRunStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getRunResults",
		Method:      http.MethodGet,
		Path:        "/api/runs/{id}/results",
		Summary:     "Get run results",
		Description: "Returns the energy and density points of a completed run and a link to its plot",
		Tags:        []string{"Runs"},
	}, runHandler.GetRunResults)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/runs/{id}/process",
		Summary:     "Start processing run",
		Description: "Starts processing an uploaded entries file",
		Tags:        []string{"Runs"},
	}, runHandler.StartProcessing)
}
