package processing

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alexsquires/code-club/internal/density"
	"github.com/alexsquires/code-club/internal/plot"
	"github.com/alexsquires/code-club/pkg/models"
)

// MockRunRepository implements repository.RunRepository for testing
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *models.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*models.Run)
	return run, args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]*models.Run)
	return runs, args.Error(1)
}

func (m *MockRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockRunRepository) StoreResults(ctx context.Context, results *models.RunResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockRunRepository) GetResults(ctx context.Context, runID uuid.UUID) (*models.RunResults, error) {
	args := m.Called(ctx, runID)
	results, _ := args.Get(0).(*models.RunResults)
	return results, args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testEntries(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../loader/testdata/entries_raw.json")
	require.NoError(t, err)
	return data
}

func newRun(runID uuid.UUID) *models.Run {
	key := "entries/" + runID.String() + ".json"
	return &models.Run{ID: runID.String(), Status: models.StatusPending, EntriesKey: &key}
}

func TestProcessRun(t *testing.T) {
	runID := uuid.New()
	run := newRun(runID)

	repo := &MockRunRepository{}
	s3 := &MockS3Service{}

	repo.On("UpdateStatus", mock.Anything, runID, models.StatusProcessing, mock.AnythingOfType("int")).Return(nil)
	repo.On("GetByID", mock.Anything, runID).Return(run, nil)
	s3.On("DownloadFile", mock.Anything, *run.EntriesKey).Return(testEntries(t), nil)
	s3.On("UploadFile", mock.Anything, "plots/"+runID.String()+".svg", "image/svg+xml", mock.MatchedBy(func(data []byte) bool {
		return bytes.Contains(data, []byte("<svg"))
	})).Return(nil)

	var stored *models.RunResults
	repo.On("StoreResults", mock.Anything, mock.AnythingOfType("*models.RunResults")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.RunResults) }).
		Return(nil)
	repo.On("UpdateStatus", mock.Anything, runID, models.StatusCompleted, 100).Return(nil)

	svc := NewProcessingService(s3, repo, plot.Options{Format: "svg"})
	require.NoError(t, svc.ProcessRun(context.Background(), runID))

	require.NotNil(t, stored)
	assert.Equal(t, run.ID, stored.RunID)
	require.Len(t, stored.Points, 3)
	assert.Equal(t, "mp-149", stored.Points[0].EntryID)
	assert.Equal(t, "Si2", stored.Points[0].Formula)
	assert.Equal(t, "cell-a", stored.Points[1].EntryID)
	assert.Equal(t, -5.0, stored.Points[1].Energy)
	assert.Equal(t, "mp-1265", stored.Points[2].EntryID)
	assert.InDelta(t, -12.587, stored.Points[2].Energy, 1e-9)
	assert.Equal(t, 3, stored.Summary.Count)
	require.NotNil(t, stored.PlotKey)
	assert.Equal(t, "plots/"+runID.String()+".svg", *stored.PlotKey)

	repo.AssertExpectations(t)
	s3.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessRun_Gzip(t *testing.T) {
	runID := uuid.New()
	run := newRun(runID)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(testEntries(t))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	repo := &MockRunRepository{}
	s3 := &MockS3Service{}
	repo.On("UpdateStatus", mock.Anything, runID, mock.Anything, mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, runID).Return(run, nil)
	s3.On("DownloadFile", mock.Anything, *run.EntriesKey).Return(buf.Bytes(), nil)
	s3.On("UploadFile", mock.Anything, "plots/"+runID.String()+".png", "image/png", mock.Anything).Return(nil)
	repo.On("StoreResults", mock.Anything, mock.Anything).Return(nil)

	svc := NewProcessingService(s3, repo, plot.Options{})
	require.NoError(t, svc.ProcessRun(context.Background(), runID))

	s3.AssertExpectations(t)
}

func TestProcessRun_Failures(t *testing.T) {
	zeroVolume := `[{"energy": -1, "structure": {"lattice": {"matrix": [[0,0,0],[0,0,0],[0,0,0]]}, "sites": [{"species": [{"element": "H", "occu": 1}]}]}}]`
	unknownElement := `[{"energy": -1, "structure": {"lattice": {"matrix": [[1,0,0],[0,1,0],[0,0,1]]}, "sites": [{"species": [{"element": "Qq", "occu": 1}]}]}}]`

	tests := []struct {
		name       string
		download   []byte
		downloadEr error
		wantErr    error
		wantMsg    string
	}{
		{name: "download fails", downloadEr: errors.New("no such key"), wantMsg: "Failed to download entries file"},
		{name: "not json", download: []byte("hello"), wantErr: ErrInvalidInput, wantMsg: "Failed to read entries"},
		{name: "zero volume", download: []byte(zeroVolume), wantErr: density.ErrInvalidVolume, wantMsg: "Density computation failed"},
		{name: "unknown element", download: []byte(unknownElement), wantErr: density.ErrMalformedSite, wantMsg: "Density computation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runID := uuid.New()
			run := newRun(runID)

			repo := &MockRunRepository{}
			s3 := &MockS3Service{}
			repo.On("UpdateStatus", mock.Anything, runID, models.StatusProcessing, mock.Anything).Return(nil)
			repo.On("GetByID", mock.Anything, runID).Return(run, nil)
			s3.On("DownloadFile", mock.Anything, *run.EntriesKey).Return(tt.download, tt.downloadEr)
			repo.On("UpdateError", mock.Anything, runID, mock.MatchedBy(func(msg string) bool {
				return assert.Contains(t, msg, tt.wantMsg)
			})).Return(nil)

			svc := NewProcessingService(s3, repo, plot.DefaultOptions())
			err := svc.ProcessRun(context.Background(), runID)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			repo.AssertExpectations(t)
			repo.AssertNotCalled(t, "StoreResults", mock.Anything, mock.Anything)
			s3.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcessRun_RepositoryFailures(t *testing.T) {
	connReset := errors.New("connection reset")

	tests := []struct {
		name      string
		setup     func(repo *MockRunRepository, runID uuid.UUID)
		wantMsg   string
		wantStore bool
		completes bool
	}{
		{
			name: "results not stored",
			setup: func(repo *MockRunRepository, runID uuid.UUID) {
				repo.On("StoreResults", mock.Anything, mock.Anything).Return(connReset)
			},
			wantMsg:   "Failed to store results",
			wantStore: true,
		},
		{
			name: "completion not recorded",
			setup: func(repo *MockRunRepository, runID uuid.UUID) {
				repo.On("UpdateStatus", mock.Anything, runID, models.StatusCompleted, 100).Return(connReset)
				repo.On("StoreResults", mock.Anything, mock.Anything).Return(nil)
			},
			wantMsg:   "Failed to complete run",
			wantStore: true,
			completes: true,
		},
		{
			name: "progress not recorded",
			setup: func(repo *MockRunRepository, runID uuid.UUID) {
				repo.On("UpdateStatus", mock.Anything, runID, models.StatusProcessing, 60).Return(connReset)
			},
			wantMsg: "Failed to update progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runID := uuid.New()
			run := newRun(runID)

			repo := &MockRunRepository{}
			s3 := &MockS3Service{}
			tt.setup(repo, runID)
			repo.On("UpdateStatus", mock.Anything, runID, mock.Anything, mock.Anything).Return(nil).Maybe()
			repo.On("GetByID", mock.Anything, runID).Return(run, nil)
			repo.On("UpdateError", mock.Anything, runID, tt.wantMsg).Return(nil).Once()
			s3.On("DownloadFile", mock.Anything, *run.EntriesKey).Return(testEntries(t), nil)
			s3.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

			svc := NewProcessingService(s3, repo, plot.Options{Format: "svg"})
			err := svc.ProcessRun(context.Background(), runID)

			assert.ErrorIs(t, err, connReset)
			repo.AssertExpectations(t)
			if !tt.wantStore {
				repo.AssertNotCalled(t, "StoreResults", mock.Anything, mock.Anything)
			}
			if !tt.completes {
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, runID, models.StatusCompleted, 100)
			}
		})
	}
}

func TestProcessRun_MissingEntriesKey(t *testing.T) {
	runID := uuid.New()

	repo := &MockRunRepository{}
	repo.On("UpdateStatus", mock.Anything, runID, models.StatusProcessing, 10).Return(nil)
	repo.On("GetByID", mock.Anything, runID).Return(&models.Run{ID: runID.String()}, nil)
	repo.On("UpdateError", mock.Anything, runID, "Run has no entries file").Return(nil)

	svc := NewProcessingService(&MockS3Service{}, repo, plot.DefaultOptions())
	err := svc.ProcessRun(context.Background(), runID)

	assert.ErrorIs(t, err, ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestComputePoints(t *testing.T) {
	entries := []models.Entry{
		{
			EntryID: "cell-a",
			Energy:  -5.0,
			Structure: &models.Structure{
				Lattice: models.Lattice{Matrix: [3][3]float64{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}},
				Sites: []models.Site{
					{Species: []models.SpeciesOccupancy{{Element: "C", Occupancy: 1}}},
					{Species: []models.SpeciesOccupancy{{Element: "C", Occupancy: 1}}},
				},
			},
		},
	}

	points, err := ComputePoints(entries)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "cell-a", points[0].EntryID)
	assert.Equal(t, "C2", points[0].Formula)
	assert.InDelta(t, 2*12.0107*density.AMUToGrams/(24*density.Angstrom3ToCm3), points[0].Density, 1e-9)
}

func TestPlotKey(t *testing.T) {
	id := uuid.MustParse("6f1c1d7e-9a2b-4c3d-8e4f-5a6b7c8d9e0f")
	assert.Equal(t, "plots/6f1c1d7e-9a2b-4c3d-8e4f-5a6b7c8d9e0f.png", PlotKey(id, "PNG"))
}
