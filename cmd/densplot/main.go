package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alexsquires/code-club/internal/loader"
	"github.com/alexsquires/code-club/internal/plot"
	"github.com/alexsquires/code-club/internal/processing"
	"github.com/alexsquires/code-club/pkg/models"
)

const defaultOut = "density_vs_energy.png"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 || len(os.Args) > 3 {
		log.Fatal().Msg("usage: densplot <entries.json[.gz]> [out.png|out.svg|out.pdf]")
	}
	in, out := os.Args[1], defaultOut
	if len(os.Args) == 3 {
		out = os.Args[2]
	}

	log.Info().Str("path", in).Msg("Reading entries")
	entries, err := loader.LoadFile(in)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load entries")
	}

	log.Info().Int("entries", len(entries)).Msg("Calculating mass densities")
	points, err := processing.ComputePoints(entries)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute densities")
	}

	for _, p := range points {
		log.Debug().
			Str("entryID", p.EntryID).
			Str("formula", p.Formula).
			Float64("energy", p.Energy).
			Float64("density", p.Density).
			Msg("Point")
	}

	summary := models.Summarize(points)
	log.Info().
		Int("count", summary.Count).
		Float64("minDensity", summary.MinDensity).
		Float64("maxDensity", summary.MaxDensity).
		Float64("meanDensity", summary.MeanDensity).
		Msg("Densities computed")

	if len(points) == 0 {
		log.Warn().Msg("No entries, nothing to plot")
		return
	}

	if err := plot.RenderFile(out, points, plot.DefaultOptions()); err != nil {
		log.Fatal().Err(err).Msg("Failed to render plot")
	}
	log.Info().Str("path", out).Msg("Done")
}
