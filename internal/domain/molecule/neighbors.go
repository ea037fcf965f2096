package molecule

import (
	"math"
	"sort"

	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// similarityEpsilon is the spacing between SentinelDistance and the next
// representable float64: similarity values at or below this are
// indistinguishable from the sentinel's image and clamp to zero.
var similarityEpsilon = math.Nextafter(chem.SentinelDistance, math.Inf(1)) - chem.SentinelDistance

// NearestNeighborVector computes the "metric" node label for one query atom:
// for each configured atom type, the k nearest atoms of that type are
// selected by distance (the query atom itself is a valid candidate when it
// matches the type), missing candidates pad with the sentinel distance, and
// every slot is mapped through the similarity function.  The result always
// has length len(opts.AtomTypes) * opts.K.
//
// When opts.Threshold is positive, raw distances above it are replaced by
// the sentinel before the similarity function is applied.
func NearestNeighborVector(mol *Molecule, distances *DistanceMatrix, queryIdx int, opts chem.ExtractionOptions) []float64 {
	opts = opts.Normalized()

	row := distances.Row(queryIdx)
	sorted := argsort(row)

	// Collect candidate atom ids per atomic number in one pass.
	byType := make(map[int][]int, len(opts.AtomTypes))
	for _, a := range mol.Atoms {
		byType[a.AtomicNum] = append(byType[a.AtomicNum], a.Index)
	}

	out := make([]float64, 0, len(opts.AtomTypes)*opts.K)
	for _, atomicNum := range opts.AtomTypes {
		members := make(map[int]bool, len(byType[atomicNum]))
		for _, id := range byType[atomicNum] {
			members[id] = true
		}

		taken := 0
		for _, id := range sorted {
			if taken == opts.K {
				break
			}
			if !members[id] {
				continue
			}
			d := row[id]
			if opts.Threshold > 0 && d > opts.Threshold {
				d = chem.SentinelDistance
			}
			out = append(out, similarityOrZero(opts.Similarity, d))
			taken++
		}
		for ; taken < opts.K; taken++ {
			out = append(out, similarityOrZero(opts.Similarity, chem.SentinelDistance))
		}
	}
	return out
}

// similarityOrZero applies fn and clamps results that fall at or below the
// sentinel-scale machine epsilon to exactly zero.
func similarityOrZero(fn func(float64) float64, d float64) float64 {
	s := fn(d)
	if s <= similarityEpsilon {
		return 0
	}
	return s
}

// LocalDensityVector computes the "topological" node label for one query
// atom: a radial density histogram with opts.Intervals thresholds evenly
// spaced on [0, opts.MaxDist] inclusive.  Each entry is the fraction of the
// molecule's atoms within that distance of the query atom, so the vector is
// non-decreasing and every entry lies in [0, 1].
func LocalDensityVector(mol *Molecule, distances *DistanceMatrix, queryIdx int, opts chem.ExtractionOptions) []float64 {
	opts = opts.Normalized()

	row := distances.Row(queryIdx)
	size := float64(mol.NumAtoms())

	out := make([]float64, opts.Intervals)
	for i := 0; i < opts.Intervals; i++ {
		var threshold float64
		if opts.Intervals > 1 {
			threshold = opts.MaxDist * float64(i) / float64(opts.Intervals-1)
		}
		count := 0
		for _, d := range row {
			if d <= threshold {
				count++
			}
		}
		out[i] = float64(count) / size
	}
	return out
}

// argsort returns the indices of row sorted by ascending distance.  The
// sort is stable so ties resolve in source-index order.
func argsort(row []float64) []int {
	idx := make([]int, len(row))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] < row[idx[b]] })
	return idx
}
