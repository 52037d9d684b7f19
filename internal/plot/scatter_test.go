package plot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexsquires/code-club/pkg/models"
)

var samplePoints = []models.DensityPoint{
	{Energy: -5.0, Density: 1.66},
	{Energy: -4.2, Density: 2.33},
	{Energy: -3.9, Density: 3.1},
}

func TestNew(t *testing.T) {
	p, err := New(samplePoints)
	require.NoError(t, err)

	assert.Equal(t, Title, p.Title.Text)
	assert.Equal(t, XLabel, p.X.Label.Text)
	assert.Equal(t, YLabel, p.Y.Label.Text)
	assert.LessOrEqual(t, p.X.Min, -5.0)
	assert.GreaterOrEqual(t, p.Y.Max, 3.1)
}

func TestMarkerRadius(t *testing.T) {
	r := float64(MarkerRadius())
	assert.InDelta(t, 3.873, r, 1e-3)

	// Squared diameter matches the scatter size
	assert.InDelta(t, MarkerSize, math.Pow(2*r, 2), 1e-9)
}

func TestNew_NoPoints(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestNew_NonFinite(t *testing.T) {
	_, err := New([]models.DensityPoint{{Energy: -1, Density: math.Inf(1)}})
	assert.Error(t, err)
}

func TestRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePoints, Options{}))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRender_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePoints, Options{Format: "SVG"}))

	assert.Contains(t, buf.String(), "<svg")
}

func TestRender_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, samplePoints, Options{Format: "bmp"})
	assert.ErrorContains(t, err, "unsupported plot format")
	assert.Zero(t, buf.Len())
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "density.svg")
	require.NoError(t, RenderFile(path, samplePoints, DefaultOptions()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	bad := filepath.Join(dir, "density.txt")
	assert.Error(t, RenderFile(bad, samplePoints, DefaultOptions()))
	assert.NoFileExists(t, bad)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "image/svg+xml", ContentType("SVG"))
	assert.Equal(t, "", ContentType("gif"))
}
