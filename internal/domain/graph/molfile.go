package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/molecule"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// ToMolfile serializes a labeled graph to V2000 molfile text: a 3-line
// header, a fixed-width counts line, an atom block with zeroed coordinates
// and element symbols resolved from each node's discrete atomic-number
// label, a bond block carrying the stored node ids plus one with the edge's
// bond-order label, then the "M END" and "$$$$" terminators.
//
// Every node must carry a discrete_label resolving to a known element;
// every edge must carry a string label.  Violations return a serialization
// error rather than emitting a malformed record, and an empty graph is
// rejected outright.
func ToMolfile(g *Graph) (string, error) {
	if g == nil || g.Order() == 0 {
		return "", errors.New(errors.CodeEmptyGraph, "graph has no nodes to serialize")
	}

	var sb strings.Builder

	sb.WriteString("Attributed graph to molfile\n\n\n")

	// Counts line: atom count, bond count, atom-list count, chirality flag,
	// five reserved fields, then the version tag.
	sb.WriteString(fmt.Sprintf("%3d", g.Order()))
	sb.WriteString(fmt.Sprintf("%3d", g.Size()))
	sb.WriteString("  0")
	sb.WriteString("     1")
	sb.WriteString(strings.Repeat("  0", 5))
	sb.WriteString("999 V2000\n")

	for id := 0; id < g.Order(); id++ {
		discrete, ok := g.Node(id)[AttrDiscreteLabel].(string)
		if !ok {
			return "", errors.New(errors.CodeSerialization, "node has no discrete label").
				WithDetail(fmt.Sprintf("node=%d", id))
		}
		z, err := strconv.Atoi(discrete)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeSerialization, "discrete label is not an atomic number")
		}
		symbol := molecule.SymbolForAtomicNum(z)
		if symbol == "" {
			return "", errors.New(errors.CodeSerialization, "atomic number out of range").
				WithDetail(fmt.Sprintf("node=%d atomic_number=%d", id, z))
		}
		sb.WriteString("    0.0000    0.0000    0.0000 ")
		sb.WriteString(fmt.Sprintf("%-3s", symbol))
		sb.WriteString(" 0  0  0  0  0  0  0  0  0  0  0  0\n")
	}

	for _, e := range g.Edges() {
		label, ok := e.Attrs[AttrLabel].(string)
		if !ok {
			return "", errors.New(errors.CodeSerialization, "edge has no bond-order label").
				WithDetail(fmt.Sprintf("edge=%d-%d", e.U, e.V))
		}
		sb.WriteString(fmt.Sprintf("%3d%3d%3s", e.U+1, e.V+1, label))
		sb.WriteString("  0  0  0  0\n")
	}

	sb.WriteString("M END\n\n$$$$")
	return sb.String(), nil
}
