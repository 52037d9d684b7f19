package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alexsquires/code-club/internal/periodic"
)

// ErrDisorderedSite is returned when a site does not carry exactly one fully
// occupying species
var ErrDisorderedSite = errors.New("site is not ordered")

// occupancyTolerance is how far a site occupancy may drift from 1
const occupancyTolerance = 1e-8

// Lattice describes the periodic cell. Matrix rows are the lattice vectors
// in angstroms.
type Lattice struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Matrix [3][3]float64 `json:"matrix" doc:"Lattice vectors as rows, in angstroms"`
	PBC    []bool        `json:"pbc,omitempty" doc:"Periodic boundary flags"`

	// CellVolume overrides the volume derived from Matrix when set
	CellVolume *float64 `json:"volume,omitempty" doc:"Cell volume in cubic angstroms"`
}

// Volume returns the cell volume in cubic angstroms
func (l Lattice) Volume() float64 {
	if l.CellVolume != nil {
		return *l.CellVolume
	}
	m := l.Matrix
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return math.Abs(det)
}

// SpeciesOccupancy is one species on a site
type SpeciesOccupancy struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Element        string   `json:"element" doc:"Element symbol"`
	Occupancy      float64  `json:"occu" doc:"Fractional occupancy"`
	OxidationState *float64 `json:"oxidation_state,omitempty" doc:"Oxidation state"`
}

// Site is an atomic position within a structure
type Site struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Species []SpeciesOccupancy `json:"species" doc:"Species occupying the site"`
	ABC     []float64          `json:"abc,omitempty" doc:"Fractional coordinates"`
	XYZ     []float64          `json:"xyz,omitempty" doc:"Cartesian coordinates in angstroms"`
	Label   string             `json:"label,omitempty" doc:"Site label"`
}

// Specie returns the single species of an ordered site
func (s Site) Specie() (SpeciesOccupancy, error) {
	if len(s.Species) != 1 {
		return SpeciesOccupancy{}, fmt.Errorf("%w: %d species", ErrDisorderedSite, len(s.Species))
	}
	sp := s.Species[0]
	if math.Abs(sp.Occupancy-1) > occupancyTolerance {
		return SpeciesOccupancy{}, fmt.Errorf("%w: occupancy %v", ErrDisorderedSite, sp.Occupancy)
	}
	return sp, nil
}

// AtomicMass returns the atomic mass of the site species in amu
func (s Site) AtomicMass() (float64, error) {
	sp, err := s.Specie()
	if err != nil {
		return 0, err
	}
	return periodic.Mass(sp.Element)
}

// Structure is a periodic arrangement of sites
type Structure struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Lattice Lattice `json:"lattice" doc:"Cell geometry"`
	Sites   []Site  `json:"sites" doc:"Atomic sites"`
	Charge  float64 `json:"charge,omitempty" doc:"Net charge"`
}

// NumSites returns the number of sites in the cell
func (s Structure) NumSites() int {
	return len(s.Sites)
}

// SiteMass returns the atomic mass of site i in amu
func (s Structure) SiteMass(i int) (float64, error) {
	return s.Sites[i].AtomicMass()
}

// Volume returns the cell volume in cubic angstroms
func (s Structure) Volume() float64 {
	return s.Lattice.Volume()
}

// Formula returns the composition, e.g. "Si2 O4", with elements in order of
// first appearance. Disordered sites contribute every species by occupancy.
func (s Structure) Formula() string {
	var order []string
	counts := make(map[string]float64)
	for _, site := range s.Sites {
		for _, sp := range site.Species {
			el := periodic.ElementSymbol(sp.Element)
			if _, ok := counts[el]; !ok {
				order = append(order, el)
			}
			counts[el] += sp.Occupancy
		}
	}

	parts := make([]string, 0, len(order))
	for _, el := range order {
		n := counts[el]
		if n == 1 {
			parts = append(parts, el)
			continue
		}
		if n == math.Trunc(n) {
			parts = append(parts, fmt.Sprintf("%s%d", el, int(n)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s%g", el, n))
	}
	return strings.Join(parts, " ")
}
