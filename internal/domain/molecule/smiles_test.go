package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

func TestSMILESHasError(t *testing.T) {
	tests := []struct {
		smiles string
		want   bool
	}{
		{"CCO", false},
		{"CC(=O)O", false},
		{"[NH4+]", false},
		{"c1ccccc1", false},
		{"CC(=O)O)", true},
		{"CC((O)", true},
		{"C[NH4+", true},
		{"C]N", true},
		{"  CCO  ", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.Equal(t, tt.want, SMILESHasError(tt.smiles))
		})
	}
}

func TestParseSMILESLinear(t *testing.T) {
	mol, err := ParseSMILES("CCO")
	require.NoError(t, err)

	require.Equal(t, 3, mol.NumAtoms())
	assert.Equal(t, "C", mol.Atoms[0].Symbol)
	assert.Equal(t, "C", mol.Atoms[1].Symbol)
	assert.Equal(t, "O", mol.Atoms[2].Symbol)
	assert.Equal(t, 8, mol.Atoms[2].AtomicNum)

	require.Equal(t, 2, mol.NumBonds())
	assert.Equal(t, Bond{Begin: 0, End: 1, Order: 1}, mol.Bonds[0])
	assert.Equal(t, Bond{Begin: 1, End: 2, Order: 1}, mol.Bonds[1])

	assert.Equal(t, "CCO", mol.Title)
	assert.Equal(t, "CCO", mol.Raw)
}

func TestParseSMILESBranchesAndBondSymbols(t *testing.T) {
	// Acetic acid: C(0)-C(1), C(1)=O(2), C(1)-O(3).
	mol, err := ParseSMILES("CC(=O)O")
	require.NoError(t, err)

	require.Equal(t, 4, mol.NumAtoms())
	require.Equal(t, 3, mol.NumBonds())
	assert.Equal(t, Bond{Begin: 0, End: 1, Order: 1}, mol.Bonds[0])
	assert.Equal(t, Bond{Begin: 1, End: 2, Order: 2}, mol.Bonds[1])
	assert.Equal(t, Bond{Begin: 1, End: 3, Order: 1}, mol.Bonds[2])
}

func TestParseSMILESAromaticRing(t *testing.T) {
	mol, err := ParseSMILES("c1ccccc1")
	require.NoError(t, err)

	require.Equal(t, 6, mol.NumAtoms())
	require.Equal(t, 6, mol.NumBonds())
	for _, a := range mol.Atoms {
		assert.Equal(t, "C", a.Symbol)
		assert.Equal(t, 6, a.AtomicNum)
	}
	// Every ring bond between aromatic atoms carries order 4.
	for _, b := range mol.Bonds {
		assert.Equal(t, 4, b.Order)
	}
	// The closure bond joins the last ring atom back to the first.
	last := mol.Bonds[len(mol.Bonds)-1]
	assert.Equal(t, Bond{Begin: 0, End: 5, Order: 4}, last)
}

func TestParseSMILESTwoLetterElements(t *testing.T) {
	mol, err := ParseSMILES("ClCBr")
	require.NoError(t, err)

	require.Equal(t, 3, mol.NumAtoms())
	assert.Equal(t, "Cl", mol.Atoms[0].Symbol)
	assert.Equal(t, 17, mol.Atoms[0].AtomicNum)
	assert.Equal(t, "Br", mol.Atoms[2].Symbol)
	assert.Equal(t, 35, mol.Atoms[2].AtomicNum)
}

func TestParseSMILESBracketAtoms(t *testing.T) {
	tests := []struct {
		smiles string
		symbol string
	}{
		{"[NH4+]", "N"},
		{"[13CH4]", "C"},
		{"[Fe+2]", "Fe"},
		{"[nH]", "N"},
		{"[C@@H](F)(Cl)Br", "C"},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			require.NotEmpty(t, mol.Atoms)
			assert.Equal(t, tt.symbol, mol.Atoms[0].Symbol)
		})
	}
}

func TestParseSMILESPercentRingClosure(t *testing.T) {
	mol, err := ParseSMILES("C%10CC%10")
	require.NoError(t, err)

	require.Equal(t, 3, mol.NumAtoms())
	require.Equal(t, 3, mol.NumBonds())
	closure := mol.Bonds[len(mol.Bonds)-1]
	assert.Equal(t, Bond{Begin: 0, End: 2, Order: 1}, closure)
}

func TestParseSMILESDotFragments(t *testing.T) {
	mol, err := ParseSMILES("C.C")
	require.NoError(t, err)
	assert.Equal(t, 2, mol.NumAtoms())
	assert.Empty(t, mol.Bonds)
}

func TestParseSMILESErrors(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"unbalanced parens", "CC(O"},
		{"unmatched branch close", "CC)O"},
		{"unclosed bracket", "[CH4"},
		{"unclosed ring", "C1CC"},
		{"ring closure first", "1CC"},
		{"unknown element", "Qx"},
		{"unexpected char", "C?C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSMILES(tt.smiles)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidSMILES))
		})
	}
}
