package molgraph

// valences lists the allowed valences per element, lowest first.
var valences = map[string][]int{
	"H":  {1},
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"F":  {1},
	"Si": {4},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"Cl": {1},
	"Se": {2, 4, 6},
	"As": {3, 5},
	"Br": {1},
	"I":  {1},
	"Li": {1},
	"Na": {1},
	"K":  {1},
	"Mg": {2},
	"Ca": {2},
	"Zn": {2},
	"Al": {3},
}

// chargeRaisesValence holds elements whose usable valence grows with positive
// charge (onium ions) and shrinks with negative charge.
var chargeRaisesValence = map[string]bool{
	"N": true, "P": true, "As": true,
	"O": true, "S": true, "Se": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// symbols is the periodic table used to validate bracket atoms.
var symbols = map[string]bool{}

func init() {
	for _, s := range []string{
		"H", "He",
		"Li", "Be", "B", "C", "N", "O", "F", "Ne",
		"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
		"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
		"Ga", "Ge", "As", "Se", "Br", "Kr",
		"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
		"In", "Sn", "Sb", "Te", "I", "Xe",
		"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
		"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
		"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
		"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
		"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
		"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
	} {
		symbols[s] = true
	}
}

// IsElement reports whether symbol is a known element symbol.
func IsElement(symbol string) bool {
	return symbols[symbol]
}

// Valences returns the allowed valences of element, lowest first.
func Valences(element string) []int {
	return valences[element]
}

// ImplicitHydrogens returns the number of hydrogens to add to an atom that
// already uses `used` valence units. Aromatic atoms are restricted to their
// lowest valence.
func ImplicitHydrogens(element string, aromatic bool, charge, used int) int {
	vals := valences[element]
	if len(vals) == 0 {
		return 0
	}
	if aromatic {
		vals = vals[:1]
	}
	for _, v := range vals {
		v = adjustForCharge(element, v, charge)
		if v >= used {
			return v - used
		}
	}
	return 0
}

func adjustForCharge(element string, valence, charge int) int {
	switch {
	case charge == 0:
		return valence
	case chargeRaisesValence[element]:
		return valence + charge
	case element == "B":
		return valence - charge
	case charge < 0:
		return valence + charge
	default:
		return valence - charge
	}
}
