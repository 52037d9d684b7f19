package models

import (
	"time"
)

// Run statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// ComputeDensitiesRequestBody carries structures and their energies inline
type ComputeDensitiesRequestBody struct {
	Structures []Structure `json:"structures" required:"true" doc:"Crystal structures"`
	Energies   []float64   `json:"energies" required:"true" doc:"Energies in eV, one per structure"`
}

// ComputeDensitiesRequest represents a synchronous density computation
type ComputeDensitiesRequest struct {
	Body ComputeDensitiesRequestBody
}

// ComputeDensitiesResponseBody is the body of the compute response
type ComputeDensitiesResponseBody struct {
	Points  []DensityPoint `json:"points" doc:"Energy and density pairs, in input order"`
	Summary DensitySummary `json:"summary" doc:"Density statistics"`
}

// ComputeDensitiesResponse returns the computed points
type ComputeDensitiesResponse struct {
	Body ComputeDensitiesResponseBody
}

// CreateRunRequestBody describes the entries file about to be uploaded
type CreateRunRequestBody struct {
	Name        string `json:"name,omitempty" maxLength:"100" doc:"Optional run label"`
	FileSize    int64  `json:"file_size" minimum:"2" maximum:"52428800" required:"true" doc:"Entries file size in bytes"`
	ContentType string `json:"content_type" enum:"application/json,application/gzip" required:"true" doc:"Entries file MIME type"`
}

// CreateRunRequest represents a request to create a new density run
type CreateRunRequest struct {
	Body CreateRunRequestBody
}

// CreateRunResponseBody is the body of the create run response
type CreateRunResponseBody struct {
	ID        string `json:"id" doc:"Run unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for the entries upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateRunResponse represents the response from creating a run
type CreateRunResponse struct {
	Body CreateRunResponseBody
}

// GetRunStatusRequest represents a request to get run status
type GetRunStatusRequest struct {
	ID string `path:"id" doc:"Run ID"`
}

// GetRunStatusResponseBody is the body of the status response
type GetRunStatusResponseBody struct {
	ID        string  `json:"id" doc:"Run ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Run status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Run progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	Error     *string `json:"error,omitempty" doc:"Failure reason"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when the run completes"`
}

// GetRunStatusResponse represents the current status of a run
type GetRunStatusResponse struct {
	Body GetRunStatusResponseBody
}

// ListRunsRequest represents a request for the most recent runs
type ListRunsRequest struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum number of runs"`
}

// ListRunsResponseBody is the body of the list runs response
type ListRunsResponseBody struct {
	Runs []GetRunStatusResponseBody `json:"runs" doc:"Runs, newest first"`
}

// ListRunsResponse represents the list of recent runs
type ListRunsResponse struct {
	Body ListRunsResponseBody
}

// GetRunResultsRequest represents a request to get run results
type GetRunResultsRequest struct {
	ID string `path:"id" doc:"Run ID"`
}

// GetRunResultsResponseBody is the body of the results response
type GetRunResultsResponseBody struct {
	ID        string         `json:"id" doc:"Results ID"`
	RunID     string         `json:"run_id" doc:"Run ID"`
	Points    []DensityPoint `json:"points" doc:"Energy and density pairs, in entry order"`
	Summary   DensitySummary `json:"summary" doc:"Density statistics"`
	PlotURL   string         `json:"plot_url,omitempty" doc:"Pre-signed URL of the rendered scatter plot"`
	CreatedAt time.Time      `json:"created_at" doc:"Results creation timestamp"`
}

// GetRunResultsResponse represents the complete run results
type GetRunResultsResponse struct {
	Body GetRunResultsResponseBody
}

// StartProcessingRequest represents a request to start processing an uploaded file
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Run ID"`
}

// StartProcessingResponseBody is the body of the start processing response
type StartProcessingResponseBody struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body StartProcessingResponseBody
}

// Run represents one uploaded entries file and its processing state
type Run struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	EntriesKey  *string    `json:"entries_key,omitempty"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DensitySummary holds statistics over the densities of a run
type DensitySummary struct {
	Count       int     `json:"count" doc:"Number of structures"`
	MinDensity  float64 `json:"min_density" doc:"Lowest density in g/cm^3"`
	MaxDensity  float64 `json:"max_density" doc:"Highest density in g/cm^3"`
	MeanDensity float64 `json:"mean_density" doc:"Mean density in g/cm^3"`
	MinEnergy   float64 `json:"min_energy" doc:"Lowest energy in eV"`
	MaxEnergy   float64 `json:"max_energy" doc:"Highest energy in eV"`
}

// RunResults represents the stored results of a completed run
type RunResults struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Points    []DensityPoint `json:"points"`
	Summary   DensitySummary `json:"summary"`
	PlotKey   *string        `json:"plot_key,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Summarize computes statistics over points. The zero summary is returned
// for an empty slice.
func Summarize(points []DensityPoint) DensitySummary {
	var s DensitySummary
	if len(points) == 0 {
		return s
	}

	s.Count = len(points)
	s.MinDensity, s.MaxDensity = points[0].Density, points[0].Density
	s.MinEnergy, s.MaxEnergy = points[0].Energy, points[0].Energy

	var sum float64
	for _, p := range points {
		sum += p.Density
		s.MinDensity = min(s.MinDensity, p.Density)
		s.MaxDensity = max(s.MaxDensity, p.Density)
		s.MinEnergy = min(s.MinEnergy, p.Energy)
		s.MaxEnergy = max(s.MaxEnergy, p.Energy)
	}
	s.MeanDensity = sum / float64(len(points))

	return s
}
