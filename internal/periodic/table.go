package periodic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownElement is returned when a symbol is not in the table
var ErrUnknownElement = errors.New("unknown element")

// Element holds the data needed to weigh a site
type Element struct {
	Symbol     string
	Number     int
	AtomicMass float64 // amu
}

// elements is ordered by atomic number; index 0 is hydrogen.
// Masses are standard atomic weights, mass number of the most stable
// isotope for elements without one.
var elements = []Element{
	{"H", 1, 1.00794}, {"He", 2, 4.002602}, {"Li", 3, 6.941}, {"Be", 4, 9.012182},
	{"B", 5, 10.811}, {"C", 6, 12.0107}, {"N", 7, 14.0067}, {"O", 8, 15.9994},
	{"F", 9, 18.9984032}, {"Ne", 10, 20.1797}, {"Na", 11, 22.98976928}, {"Mg", 12, 24.305},
	{"Al", 13, 26.9815386}, {"Si", 14, 28.0855}, {"P", 15, 30.973762}, {"S", 16, 32.065},
	{"Cl", 17, 35.453}, {"Ar", 18, 39.948}, {"K", 19, 39.0983}, {"Ca", 20, 40.078},
	{"Sc", 21, 44.955912}, {"Ti", 22, 47.867}, {"V", 23, 50.9415}, {"Cr", 24, 51.9961},
	{"Mn", 25, 54.938045}, {"Fe", 26, 55.845}, {"Co", 27, 58.933195}, {"Ni", 28, 58.6934},
	{"Cu", 29, 63.546}, {"Zn", 30, 65.409}, {"Ga", 31, 69.723}, {"Ge", 32, 72.64},
	{"As", 33, 74.9216}, {"Se", 34, 78.96}, {"Br", 35, 79.904}, {"Kr", 36, 83.798},
	{"Rb", 37, 85.4678}, {"Sr", 38, 87.62}, {"Y", 39, 88.90585}, {"Zr", 40, 91.224},
	{"Nb", 41, 92.90638}, {"Mo", 42, 95.94}, {"Tc", 43, 98}, {"Ru", 44, 101.07},
	{"Rh", 45, 102.9055}, {"Pd", 46, 106.42}, {"Ag", 47, 107.8682}, {"Cd", 48, 112.411},
	{"In", 49, 114.818}, {"Sn", 50, 118.71}, {"Sb", 51, 121.76}, {"Te", 52, 127.6},
	{"I", 53, 126.90447}, {"Xe", 54, 131.293}, {"Cs", 55, 132.9054519}, {"Ba", 56, 137.327},
	{"La", 57, 138.90547}, {"Ce", 58, 140.116}, {"Pr", 59, 140.90765}, {"Nd", 60, 144.242},
	{"Pm", 61, 145}, {"Sm", 62, 150.36}, {"Eu", 63, 151.964}, {"Gd", 64, 157.25},
	{"Tb", 65, 158.92535}, {"Dy", 66, 162.5}, {"Ho", 67, 164.93032}, {"Er", 68, 167.259},
	{"Tm", 69, 168.93421}, {"Yb", 70, 173.04}, {"Lu", 71, 174.967}, {"Hf", 72, 178.49},
	{"Ta", 73, 180.94788}, {"W", 74, 183.84}, {"Re", 75, 186.207}, {"Os", 76, 190.23},
	{"Ir", 77, 192.217}, {"Pt", 78, 195.084}, {"Au", 79, 196.966569}, {"Hg", 80, 200.59},
	{"Tl", 81, 204.3833}, {"Pb", 82, 207.2}, {"Bi", 83, 208.9804}, {"Po", 84, 209},
	{"At", 85, 210}, {"Rn", 86, 222}, {"Fr", 87, 223}, {"Ra", 88, 226},
	{"Ac", 89, 227}, {"Th", 90, 232.03806}, {"Pa", 91, 231.03588}, {"U", 92, 238.02891},
	{"Np", 93, 237}, {"Pu", 94, 244}, {"Am", 95, 243}, {"Cm", 96, 247},
	{"Bk", 97, 247}, {"Cf", 98, 251}, {"Es", 99, 252}, {"Fm", 100, 257},
	{"Md", 101, 258}, {"No", 102, 259}, {"Lr", 103, 262}, {"Rf", 104, 267},
	{"Db", 105, 268}, {"Sg", 106, 271}, {"Bh", 107, 270}, {"Hs", 108, 269},
	{"Mt", 109, 278}, {"Ds", 110, 281}, {"Rg", 111, 281}, {"Cn", 112, 285},
	{"Nh", 113, 286}, {"Fl", 114, 289}, {"Mc", 115, 289}, {"Lv", 116, 293},
	{"Ts", 117, 294}, {"Og", 118, 294},
}

var bySymbol = func() map[string]Element {
	m := make(map[string]Element, len(elements))
	for _, e := range elements {
		m[e.Symbol] = e
	}
	return m
}()

// Lookup returns the element for a symbol. Oxidation-state suffixes such as
// "Fe2+" or "O2-" are stripped before the lookup.
func Lookup(symbol string) (Element, error) {
	e, ok := bySymbol[ElementSymbol(symbol)]
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return e, nil
}

// Mass returns the atomic mass in amu for a symbol
func Mass(symbol string) (float64, error) {
	e, err := Lookup(symbol)
	if err != nil {
		return 0, err
	}
	return e.AtomicMass, nil
}

// ElementSymbol strips whitespace and any charge suffix from a species
// string, keeping the leading letters.
func ElementSymbol(species string) string {
	s := strings.TrimSpace(species)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= 'A' && c <= 'Z' && end == 0) || (c >= 'a' && c <= 'z' && end > 0) {
			end++
			continue
		}
		break
	}
	return s[:end]
}
