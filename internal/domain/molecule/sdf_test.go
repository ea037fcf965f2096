package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRecord is a minimal water record with a data item, in V2000 layout.
const sampleRecord = `water
  test

  3  2  0     1  0  0  0  0  0999 V2000
    0.0000    0.0000    0.1173 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.0000    0.7572   -0.4692 H   0  0  0  0  0  0  0  0  0  0  0  0
    0.0000   -0.7572   -0.4692 H   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0  0  0  0
  1  3  1  0  0  0  0
M  END
> <PUBCHEM_COMPOUND_CID>
962

$$$$`

func TestParseSDF(t *testing.T) {
	mol, err := ParseSDF(sampleRecord)
	require.NoError(t, err)

	assert.Equal(t, "water", mol.Title)
	require.Equal(t, 3, mol.NumAtoms())
	require.Equal(t, 2, mol.NumBonds())

	assert.Equal(t, "O", mol.Atoms[0].Symbol)
	assert.Equal(t, 8, mol.Atoms[0].AtomicNum)
	assert.InDelta(t, 0.1173, mol.Atoms[0].Coord[2], 1e-9)
	assert.Equal(t, "H", mol.Atoms[1].Symbol)

	// Bond indices are normalized to 0-based.
	assert.Equal(t, Bond{Begin: 0, End: 1, Order: 1}, mol.Bonds[0])
	assert.Equal(t, Bond{Begin: 0, End: 2, Order: 1}, mol.Bonds[1])

	assert.Equal(t, "962", mol.Data["PUBCHEM_COMPOUND_CID"])
	assert.Equal(t, "962", mol.CompoundID())
}

func TestParseSDFLeadingBlankLines(t *testing.T) {
	mol, err := ParseSDF("\n\n" + sampleRecord)
	require.NoError(t, err)
	assert.Equal(t, 3, mol.NumAtoms())
}

func TestParseSDFErrors(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"empty", ""},
		{"too short", "title\n\n"},
		{"garbage counts", "t\n\n\nabcdef\n"},
		{"declared atoms missing", "t\n\n\n  5  0  0     1  0  0  0  0  0999 V2000\n"},
		{"bond out of range", `t


  1  1  0     1  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
  1  9  1  0  0  0  0
M  END`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSDF(tt.record)
			assert.Error(t, err)
		})
	}
}

func TestWriteSDFRoundTrip(t *testing.T) {
	mol, err := ParseSDF(sampleRecord)
	require.NoError(t, err)

	out := WriteSDF(mol)
	back, err := ParseSDF(out)
	require.NoError(t, err)

	assert.Equal(t, mol.Title, back.Title)
	assert.Equal(t, mol.NumAtoms(), back.NumAtoms())
	assert.Equal(t, mol.Bonds, back.Bonds)
	assert.Equal(t, mol.Data, back.Data)
	for i := range mol.Atoms {
		assert.Equal(t, mol.Atoms[i].Symbol, back.Atoms[i].Symbol)
		assert.InDelta(t, mol.Atoms[i].Coord[0], back.Atoms[i].Coord[0], 1e-4)
		assert.InDelta(t, mol.Atoms[i].Coord[1], back.Atoms[i].Coord[1], 1e-4)
		assert.InDelta(t, mol.Atoms[i].Coord[2], back.Atoms[i].Coord[2], 1e-4)
	}
}

func TestCompoundIDFallsBackToTitle(t *testing.T) {
	mol := &Molecule{Title: " mol-42 "}
	assert.Equal(t, "mol-42", mol.CompoundID())
}

func TestRemoveHydrogens(t *testing.T) {
	mol, err := ParseSDF(sampleRecord)
	require.NoError(t, err)

	heavy := mol.RemoveHydrogens()
	require.Equal(t, 1, heavy.NumAtoms())
	assert.Equal(t, "O", heavy.Atoms[0].Symbol)
	assert.Equal(t, 0, heavy.Atoms[0].Index)
	assert.Empty(t, heavy.Bonds)

	// The receiver is untouched.
	assert.Equal(t, 3, mol.NumAtoms())
}

func TestRemoveHydrogensRenumbersBonds(t *testing.T) {
	mol := &Molecule{
		Atoms: []Atom{
			{Index: 0, AtomicNum: 1, Symbol: "H"},
			{Index: 1, AtomicNum: 6, Symbol: "C"},
			{Index: 2, AtomicNum: 8, Symbol: "O"},
		},
		Bonds: []Bond{
			{Begin: 0, End: 1, Order: 1},
			{Begin: 1, End: 2, Order: 2},
		},
	}
	heavy := mol.RemoveHydrogens()
	require.Equal(t, 2, heavy.NumAtoms())
	require.Len(t, heavy.Bonds, 1)
	assert.Equal(t, Bond{Begin: 0, End: 1, Order: 2}, heavy.Bonds[0])
}

func TestPeriodicTable(t *testing.T) {
	assert.Equal(t, "C", SymbolForAtomicNum(6))
	assert.Equal(t, "Og", SymbolForAtomicNum(118))
	assert.Equal(t, "", SymbolForAtomicNum(0))
	assert.Equal(t, "", SymbolForAtomicNum(119))

	assert.Equal(t, 17, AtomicNumForSymbol("Cl"))
	assert.Equal(t, 0, AtomicNumForSymbol("CL"))
	assert.Equal(t, 0, AtomicNumForSymbol(""))
}
