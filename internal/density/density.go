// Package density computes crystal mass densities from periodic structures
// and pairs them with the energies they are plotted against.
package density

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexsquires/code-club/pkg/models"
)

const (
	// AMUToGrams is the mass of one atomic mass unit in grams
	AMUToGrams = 1.66053906660e-24
	// Angstrom3ToCm3 converts a volume in cubic angstroms to cubic centimeters
	Angstrom3ToCm3 = 1e-24
)

var (
	// ErrMalformedSite is returned when a site has no usable species or mass
	ErrMalformedSite = errors.New("malformed site")
	// ErrInvalidVolume is returned for a zero, negative or non-finite cell volume
	ErrInvalidVolume = errors.New("invalid cell volume")
	// ErrLengthMismatch is returned when structures and energies cannot be paired
	ErrLengthMismatch = errors.New("length mismatch")
)

// Structure is the read-only view of a periodic cell needed to weigh it.
// Volume is in cubic angstroms and SiteMass in amu.
type Structure interface {
	NumSites() int
	SiteMass(i int) (float64, error)
	Volume() float64
}

// ComputeDensity returns the mass density of s in g/cm^3.
func ComputeDensity(s Structure) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: nil structure", ErrMalformedSite)
	}

	var totalMassAmu float64
	for i := 0; i < s.NumSites(); i++ {
		m, err := s.SiteMass(i)
		if err != nil {
			return 0, fmt.Errorf("site %d: %w: %w", i, ErrMalformedSite, err)
		}
		if !(m > 0) || math.IsInf(m, 0) {
			return 0, fmt.Errorf("site %d: %w: atomic mass %v", i, ErrMalformedSite, m)
		}
		totalMassAmu += m
	}

	volume := s.Volume()
	if !(volume > 0) || math.IsInf(volume, 0) {
		return 0, fmt.Errorf("%w: %v A^3", ErrInvalidVolume, volume)
	}

	totalMassG := totalMassAmu * AMUToGrams
	volumeCm3 := volume * Angstrom3ToCm3

	return totalMassG / volumeCm3, nil
}

// ComputeDensities applies ComputeDensity to every structure, keeping order.
// The first failure aborts the batch and no partial result is returned.
func ComputeDensities[S Structure](structures []S) ([]float64, error) {
	densities := make([]float64, len(structures))
	for i, s := range structures {
		rho, err := ComputeDensity(s)
		if err != nil {
			return nil, fmt.Errorf("structure %d: %w", i, err)
		}
		densities[i] = rho
	}
	return densities, nil
}

// Pair zips energies and densities by position. Mismatched lengths are
// rejected rather than truncated.
func Pair(energies, densities []float64) ([]models.DensityPoint, error) {
	if len(energies) != len(densities) {
		return nil, fmt.Errorf("%w: %d energies, %d densities", ErrLengthMismatch, len(energies), len(densities))
	}

	points := make([]models.DensityPoint, len(energies))
	for i := range energies {
		points[i] = models.DensityPoint{
			Energy:  energies[i],
			Density: densities[i],
		}
	}
	return points, nil
}

// Evaluate checks that structures and energies line up, computes the
// densities and returns the paired points.
func Evaluate[S Structure](structures []S, energies []float64) ([]models.DensityPoint, error) {
	if len(structures) != len(energies) {
		return nil, fmt.Errorf("%w: %d structures, %d energies", ErrLengthMismatch, len(structures), len(energies))
	}

	densities, err := ComputeDensities(structures)
	if err != nil {
		return nil, err
	}

	return Pair(energies, densities)
}
