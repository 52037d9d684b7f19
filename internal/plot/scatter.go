// Package plot renders density against energy as a scatter chart
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexsquires/code-club/pkg/models"
)

const (
	Title  = "Mass Density vs Energy"
	XLabel = "Energy (eV)"
	YLabel = "Mass Density (g/cm³)"

	// MarkerSize is the squared marker diameter in pt², as matplotlib's
	// scatter size
	MarkerSize = 60.0
)

// ErrNoPoints is returned when there is nothing to plot
var ErrNoPoints = errors.New("no points to plot")

// formats lists the encoders accepted by Render
var formats = map[string]string{
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// Options controls the figure size and output encoding
type Options struct {
	Width  vg.Length
	Height vg.Length
	Format string
}

// DefaultOptions is a 7x5 inch PNG
func DefaultOptions() Options {
	return Options{Width: 7 * vg.Inch, Height: 5 * vg.Inch, Format: "png"}
}

// ContentType returns the MIME type for a format, or "" if unsupported
func ContentType(format string) string {
	return formats[strings.ToLower(format)]
}

// MarkerRadius is the glyph radius matching MarkerSize
func MarkerRadius() vg.Length {
	return vg.Points(math.Sqrt(MarkerSize) / 2)
}

// New builds the scatter plot for points
func New(points []models.DensityPoint) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.Energy
		xys[i].Y = pt.Density
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = MarkerRadius()

	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Add(plotter.NewGrid(), scatter)

	return p, nil
}

// Render draws points and writes the encoded figure to w
func Render(w io.Writer, points []models.DensityPoint, opts Options) error {
	opts = withDefaults(opts)
	format := strings.ToLower(opts.Format)
	if ContentType(format) == "" {
		return fmt.Errorf("unsupported plot format %q", opts.Format)
	}

	p, err := New(points)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("failed to draw plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// RenderFile renders to path, taking the format from its extension
func RenderFile(path string, points []models.DensityPoint, opts Options) error {
	opts.Format = strings.TrimPrefix(filepath.Ext(path), ".")

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Render(f, points, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	return opts
}
