package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// chainMolecule builds C-O-C collinear with unit spacing, the smallest
// molecule with distinguishable types and distances.
func chainMolecule() *Molecule {
	return &Molecule{
		Atoms: []Atom{
			{Index: 0, AtomicNum: 6, Symbol: "C", Coord: Coord{0, 0, 0}},
			{Index: 1, AtomicNum: 8, Symbol: "O", Coord: Coord{1, 0, 0}},
			{Index: 2, AtomicNum: 6, Symbol: "C", Coord: Coord{2, 0, 0}},
		},
	}
}

func TestNearestNeighborVectorLength(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{AtomTypes: []int{6, 8, 7}, K: 4}
	vec := NearestNeighborVector(mol, dm, 0, opts)
	assert.Len(t, vec, len(opts.AtomTypes)*opts.K)
}

func TestNearestNeighborVectorSelfInclusion(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{AtomTypes: []int{6}, K: 2}
	vec := NearestNeighborVector(mol, dm, 0, opts)

	require.Len(t, vec, 2)
	// The query atom matches its own type at distance zero: sim = 1/(0+1).
	assert.InDelta(t, 1.0, vec[0], 1e-12)
	// The other carbon sits two units away: sim = 1/(2+1).
	assert.InDelta(t, 1.0/3.0, vec[1], 1e-12)
}

func TestNearestNeighborVectorPadsWithSentinel(t *testing.T) {
	mol := &Molecule{Atoms: []Atom{{Index: 0, AtomicNum: 6, Symbol: "C"}}}
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{AtomTypes: []int{6, 8}, K: 2}
	vec := NearestNeighborVector(mol, dm, 0, opts)

	require.Len(t, vec, 4)
	assert.InDelta(t, 1.0, vec[0], 1e-12)
	// Missing candidates map through the sentinel distance and clamp to zero.
	assert.Zero(t, vec[1])
	assert.Zero(t, vec[2])
	assert.Zero(t, vec[3])
}

func TestNearestNeighborVectorThreshold(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{AtomTypes: []int{6}, K: 2, Threshold: 1.5}
	vec := NearestNeighborVector(mol, dm, 0, opts)

	require.Len(t, vec, 2)
	assert.InDelta(t, 1.0, vec[0], 1e-12)
	// The far carbon (d=2) exceeds the threshold and collapses to zero.
	assert.Zero(t, vec[1])
}

func TestNearestNeighborVectorCustomSimilarity(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{
		AtomTypes:  []int{8},
		K:          1,
		Similarity: func(d float64) float64 { return -d },
	}
	vec := NearestNeighborVector(mol, dm, 0, opts)
	require.Len(t, vec, 1)
	// Negative similarities are below the clamp cutoff.
	assert.Zero(t, vec[0])
}

func TestLocalDensityVector(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{MaxDist: 2.0, Intervals: 3}
	vec := LocalDensityVector(mol, dm, 0, opts)

	// Thresholds are 0, 1, 2 inclusive: self only, self+O, all three.
	require.Len(t, vec, 3)
	assert.InDelta(t, 1.0/3.0, vec[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, vec[1], 1e-12)
	assert.InDelta(t, 1.0, vec[2], 1e-12)
}

func TestLocalDensityVectorNonDecreasing(t *testing.T) {
	mol := chainMolecule()
	dm := NewDistanceMatrix(mol.Coords())

	opts := chem.ExtractionOptions{MaxDist: 10.0, Intervals: 20}
	for query := 0; query < mol.NumAtoms(); query++ {
		vec := LocalDensityVector(mol, dm, query, opts)
		require.Len(t, vec, 20)
		for i := 1; i < len(vec); i++ {
			assert.GreaterOrEqual(t, vec[i], vec[i-1])
		}
		assert.InDelta(t, 1.0, vec[len(vec)-1], 1e-12)
	}
}

func TestArgsortStable(t *testing.T) {
	idx := argsort([]float64{2, 0, 1, 1})
	assert.Equal(t, []int{1, 2, 3, 0}, idx)
}
