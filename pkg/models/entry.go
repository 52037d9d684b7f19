package models

// EnergyAdjustment is a correction applied on top of the raw energy.
// Constant and manual adjustments carry Value. Composition adjustments carry
// AdjPerAtom and NAtoms, temperature adjustments AdjPerDeg, Temp and NAtoms.
type EnergyAdjustment struct {
	Class      string   `json:"@class,omitempty"`
	Name       string   `json:"name,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	AdjPerAtom *float64 `json:"adj_per_atom,omitempty"`
	AdjPerDeg  *float64 `json:"adj_per_deg,omitempty"`
	Temp       float64  `json:"temp,omitempty"`
	NAtoms     float64  `json:"n_atoms,omitempty"`
}

// Amount returns the adjustment in eV
func (a EnergyAdjustment) Amount() float64 {
	switch {
	case a.Value != nil:
		return *a.Value
	case a.AdjPerAtom != nil:
		return *a.AdjPerAtom * a.NAtoms
	case a.AdjPerDeg != nil:
		return *a.AdjPerDeg * a.Temp * a.NAtoms
	}
	return 0
}

// Entry is a computed structure together with its energy, as written by
// pymatgen's ComputedStructureEntry
type Entry struct {
	Module            string             `json:"@module,omitempty"`
	Class             string             `json:"@class,omitempty"`
	EntryID           string             `json:"entry_id,omitempty"`
	Energy            float64            `json:"energy"`
	Correction        *float64           `json:"correction,omitempty"`
	EnergyAdjustments []EnergyAdjustment `json:"energy_adjustments,omitempty"`
	Structure         *Structure         `json:"structure"`
}

// TotalCorrection returns the serialized correction, which pymatgen writes as
// the sum of all adjustments. Without it the adjustments are summed.
func (e Entry) TotalCorrection() float64 {
	if e.Correction != nil {
		return *e.Correction
	}
	var sum float64
	for _, adj := range e.EnergyAdjustments {
		sum += adj.Amount()
	}
	return sum
}

// CorrectedEnergy is the raw energy plus corrections, in eV
func (e Entry) CorrectedEnergy() float64 {
	return e.Energy + e.TotalCorrection()
}

// DensityPoint is one (energy, density) pair of the scatter plot
type DensityPoint struct {
	EntryID string  `json:"entry_id,omitempty" doc:"Entry identifier"`
	Formula string  `json:"formula,omitempty" doc:"Composition of the structure"`
	Energy  float64 `json:"energy" doc:"Energy in eV"`
	Density float64 `json:"density" doc:"Mass density in g/cm^3"`
}
