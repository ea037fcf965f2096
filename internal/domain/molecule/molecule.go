// Package molecule provides the parsed molecular structure model for the
// MolGraph-Pipeline: atoms with 3D coordinates, bonds with integer orders,
// SDF/molfile parsing and serialization, SMILES structural checks, and the
// geometric feature primitives (distance matrices, nearest-neighbor and
// radial-density vectors) consumed by the graph builder.
package molecule

import (
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom / Bond / Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Coord is a 3D coordinate triple.
type Coord [3]float64

// Atom is one atom of a parsed molecule.  Atoms are immutable once parsed;
// Index is the 0-based position in the owning molecule's atom list (source
// molfiles number atoms from 1, the parser normalizes).
type Atom struct {
	Index     int
	AtomicNum int
	Symbol    string
	Coord     Coord
}

// Type returns the element-type label of the atom.  The external toolkit
// this model mirrors exposes typed labels like "C3" or "Car"; without
// perception the element symbol is the stable type label.
func (a Atom) Type() string { return a.Symbol }

// Bond is one bond of a parsed molecule.  Begin and End are 0-based atom
// indices; Order is the integer bond multiplicity (1, 2, 3; 4 for aromatic
// in source records that encode it).
type Bond struct {
	Begin int
	End   int
	Order int
}

// Molecule is one parsed molecule record: atoms, bonds, the record title,
// any SDF data fields, and the raw source text the record was parsed from.
type Molecule struct {
	Title string
	Atoms []Atom
	Bonds []Bond

	// Data holds the SDF data items ("> <NAME>" blocks) of the record.
	Data map[string]string

	// Raw is the source record text, preserved so graphs can carry it as
	// their info annotation.
	Raw string
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// IsEmpty reports whether the molecule has no atoms.
func (m *Molecule) IsEmpty() bool { return len(m.Atoms) == 0 }

// CompoundID returns the stable compound identifier used for conformer
// grouping: the PUBCHEM_COMPOUND_CID data field when present, otherwise the
// record title.
func (m *Molecule) CompoundID() string {
	if id, ok := m.Data[CompoundIDField]; ok {
		return strings.TrimSpace(id)
	}
	return strings.TrimSpace(m.Title)
}

// CompoundIDField is the SDF data field carrying the compound identifier.
const CompoundIDField = "PUBCHEM_COMPOUND_CID"

// Coords returns the ordered coordinate list of all atoms.
func (m *Molecule) Coords() []Coord {
	out := make([]Coord, len(m.Atoms))
	for i, a := range m.Atoms {
		out[i] = a.Coord
	}
	return out
}

// RemoveHydrogens returns a copy of m with all hydrogen atoms and their
// incident bonds removed and the remaining atoms renumbered to a dense
// 0-based range.  The receiver is not mutated.  An all-hydrogen molecule
// yields an empty molecule, which downstream stages filter out.
func (m *Molecule) RemoveHydrogens() *Molecule {
	remap := make(map[int]int, len(m.Atoms))
	out := &Molecule{
		Title: m.Title,
		Data:  m.Data,
		Raw:   m.Raw,
	}
	for _, a := range m.Atoms {
		if a.AtomicNum == 1 {
			continue
		}
		kept := a
		kept.Index = len(out.Atoms)
		remap[a.Index] = kept.Index
		out.Atoms = append(out.Atoms, kept)
	}
	for _, b := range m.Bonds {
		begin, okB := remap[b.Begin]
		end, okE := remap[b.End]
		if !okB || !okE {
			continue
		}
		out.Bonds = append(out.Bonds, Bond{Begin: begin, End: end, Order: b.Order})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Periodic table
// ─────────────────────────────────────────────────────────────────────────────

// elementSymbols lists element symbols indexed by atomic number (1-based;
// index 0 is unused).  Covers Z = 1..118.
var elementSymbols = []string{"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// atomicNumbers maps element symbols back to atomic numbers.
var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for z := 1; z < len(elementSymbols); z++ {
		m[elementSymbols[z]] = z
	}
	return m
}()

// SymbolForAtomicNum returns the element symbol for an atomic number, or ""
// when the number is out of range.
func SymbolForAtomicNum(z int) string {
	if z < 1 || z >= len(elementSymbols) {
		return ""
	}
	return elementSymbols[z]
}

// AtomicNumForSymbol returns the atomic number for an element symbol, or 0
// when the symbol is unknown.  Matching is exact-case ("Cl", not "CL").
func AtomicNumForSymbol(symbol string) int {
	return atomicNumbers[symbol]
}
