package molecule

import (
	"math"
)

// DistanceMatrix is the symmetric pairwise Euclidean distance matrix over a
// molecule's 3D atom coordinates, indexed by 0-based atom id.  It is derived
// once per molecule and read-only afterwards: the diagonal is zero and
// d[i][j] == d[j][i] by construction.
type DistanceMatrix struct {
	n int
	d [][]float64
}

// NewDistanceMatrix computes the distance matrix for the given coordinate
// sequence.  Symmetry and the zero diagonal hold by construction: only the
// upper triangle is computed and mirrored.
func NewDistanceMatrix(coords []Coord) *DistanceMatrix {
	n := len(coords)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			dz := coords[i][2] - coords[j][2]
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			d[i][j] = dist
			d[j][i] = dist
		}
	}
	return &DistanceMatrix{n: n, d: d}
}

// Size returns the number of atoms the matrix covers.
func (m *DistanceMatrix) Size() int { return m.n }

// At returns the distance between atoms i and j.
func (m *DistanceMatrix) At(i, j int) float64 { return m.d[i][j] }

// Row returns the distance row of atom i.  The returned slice is the
// matrix's backing storage; callers must not modify it.
func (m *DistanceMatrix) Row(i int) []float64 { return m.d[i] }
