package pipeline

import (
	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
)

// GroupAccumulator implements the conformer grouping and emission policy of
// the stream: graphs arrive tagged with their compound id, contiguous runs
// of the same id form a group, each group is capped at nConf graphs in
// arrival order, and the emission mode decides what leaves the accumulator.
//
// In split mode every retained non-empty graph is emitted as soon as it is
// pushed.  In merged mode retained graphs fold into a growing disjoint-union
// accumulator which is emitted once per completed group, so each emission
// supersedes the previous one.  A non-adjacent repeat of an id starts a new
// group; grouping is strictly by adjacency.
type GroupAccumulator struct {
	nConf int
	split bool

	currentID string
	started   bool
	taken     int
	union     *graph.Graph
}

// NewGroupAccumulator constructs an accumulator.  nConf values below 1 are
// treated as 1.
func NewGroupAccumulator(nConf int, split bool) *GroupAccumulator {
	if nConf < 1 {
		nConf = 1
	}
	return &GroupAccumulator{nConf: nConf, split: split}
}

// WillRetain reports whether the next Push carrying this compound id would
// count toward the current group's cap.  Callers use it to skip converting
// records the cap would discard anyway; a Push for a non-retained record is
// a no-op, so skipping it is safe.
func (a *GroupAccumulator) WillRetain(compoundID string) bool {
	if !a.started || compoundID != a.currentID {
		return true
	}
	return a.taken < a.nConf
}

// Push feeds the next graph in stream order and returns the graphs to emit
// now.  Empty graphs count toward the group cap but are never retained or
// emitted.  In merged mode the returned graph is the live accumulator;
// callers that mutate emitted graphs must clone first.
func (a *GroupAccumulator) Push(compoundID string, g *graph.Graph) []*graph.Graph {
	var out []*graph.Graph

	if !a.started || compoundID != a.currentID {
		if a.started && !a.split && a.union != nil {
			out = append(out, a.union)
		}
		a.currentID = compoundID
		a.started = true
		a.taken = 0
	}

	if a.taken >= a.nConf {
		return out
	}
	a.taken++

	if g == nil || g.IsEmpty() {
		return out
	}
	if a.split {
		return append(out, g)
	}
	if a.union == nil {
		a.union = g
	} else {
		a.union = graph.DisjointUnion(a.union, g)
	}
	return out
}

// Flush completes the stream, returning the final merged accumulator when
// one exists.  Split mode has nothing buffered and returns nil.
func (a *GroupAccumulator) Flush() []*graph.Graph {
	if a.split || !a.started || a.union == nil {
		return nil
	}
	return []*graph.Graph{a.union}
}
