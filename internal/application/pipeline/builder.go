package pipeline

import (
	"strconv"
	"strings"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
	"github.com/turtacn/MolGraph-Pipeline/internal/domain/molecule"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// Builder converts one parsed molecule into one attributed graph.  The
// builder never mutates its input; hydrogen stripping happens on a copy.
type Builder struct {
	log logging.Logger
}

// NewBuilder constructs a Builder.  A nil logger falls back to the no-op
// logger so the builder is safe to use in tests without wiring.
func NewBuilder(log logging.Logger) *Builder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Builder{log: log.Named("builder")}
}

// Build2D converts a molecule on the geometry-free path: one node per atom
// labeled with its element-type text, one edge per bond labeled with the
// bond order as text.  The graph's info annotation is the trimmed source
// record.
func (b *Builder) Build2D(mol *molecule.Molecule) *graph.Graph {
	g := graph.New()
	g.Info = strings.TrimSpace(mol.Raw)

	for _, a := range mol.Atoms {
		g.AddNode(graph.Attributes{
			graph.AttrLabel: a.Type(),
		})
	}
	for _, bd := range mol.Bonds {
		g.AddEdge(bd.Begin, bd.End, graph.Attributes{
			graph.AttrLabel: strconv.Itoa(bd.Order),
		})
	}
	return g
}

// Build3D converts a molecule on the geometry path: the pairwise distance
// matrix is derived once, then each node is labeled with the feature vector
// of the configured method alongside its discrete atomic-number label,
// element-type text, and stable node id.  Edges carry the bond order as
// text.  An unrecognized method is a fatal configuration error.
func (b *Builder) Build3D(mol *molecule.Molecule, opts chem.ExtractionOptions) (*graph.Graph, error) {
	opts = opts.Normalized()
	if !opts.Method.IsValid() {
		return nil, errors.Newf(errors.CodeUnknownMethod, "unrecognized feature-extraction method %q", opts.Method)
	}

	g := graph.New()
	g.Info = strings.TrimSpace(mol.Raw)
	if mol.IsEmpty() {
		return g, nil
	}

	distances := molecule.NewDistanceMatrix(mol.Coords())

	for _, a := range mol.Atoms {
		var label []float64
		switch opts.Method {
		case chem.MethodMetric:
			label = molecule.NearestNeighborVector(mol, distances, a.Index, opts)
		case chem.MethodTopological:
			label = molecule.LocalDensityVector(mol, distances, a.Index, opts)
		}
		g.AddNode(graph.Attributes{
			graph.AttrLabel:         label,
			graph.AttrDiscreteLabel: strconv.Itoa(a.AtomicNum),
			graph.AttrAtomType:      a.Type(),
			graph.AttrID:            a.Index,
		})
	}
	for _, bd := range mol.Bonds {
		g.AddEdge(bd.Begin, bd.End, graph.Attributes{
			graph.AttrLabel: strconv.Itoa(bd.Order),
		})
	}
	return g, nil
}
