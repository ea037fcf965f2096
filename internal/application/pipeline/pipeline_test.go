package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/internal/testutil"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// fakeGenerator satisfies ConformerGenerator with canned records and call
// counting, standing in for the external tool.
type fakeGenerator struct {
	record         string
	convertCalls   int
	conformerCalls int
	err            error
}

func (f *fakeGenerator) ConvertSMILES(_ context.Context, _ string) (string, error) {
	f.convertCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.record, nil
}

func (f *fakeGenerator) GenerateConformers(_ context.Context, record string, n int) ([]string, error) {
	f.conformerCalls++
	if f.err != nil {
		return nil, f.err
	}
	if n < 1 {
		n = 1
	}
	out := make([]string, n)
	for i := range out {
		out[i] = record
	}
	return out, nil
}

// countingCache wraps the map cache with hit accounting.
type countingCache struct {
	entries map[string]string
	hits    int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string]string)}
}

func (c *countingCache) Get(_ context.Context, smiles string) (string, bool, error) {
	record, ok := c.entries[smiles]
	if ok {
		c.hits++
	}
	return record, ok, nil
}

func (c *countingCache) Set(_ context.Context, smiles, record string) error {
	c.entries[smiles] = record
	return nil
}

func collect(t *testing.T, p *Pipeline, input string) []*graph.Graph {
	t.Helper()
	var out []*graph.Graph
	err := p.Run(context.Background(), strings.NewReader(input), func(g *graph.Graph) error {
		out = append(out, g)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestNewValidatesConfiguration(t *testing.T) {
	_, err := New(chem.PipelineOptions{Format: "mol2"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnknownFormat))

	_, err = New(chem.PipelineOptions{
		Format:     chem.FormatSDF,
		Extraction: chem.ExtractionOptions{Method: "euclidean"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnknownMethod))
}

func TestNewRequiresGenerator(t *testing.T) {
	// 3D SMILES input needs the tool for structure generation.
	_, err := New(chem.PipelineOptions{Format: chem.FormatSMILES})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolNotAvailable))

	// 3D SDF without conformers in the file needs it too.
	_, err = New(chem.PipelineOptions{Format: chem.FormatSDF})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolNotAvailable))

	// Conformers already in the file: no tool involved.
	_, err = New(chem.PipelineOptions{Format: chem.FormatSDF, ConformersFromFile: true})
	assert.NoError(t, err)

	// The 2D paths parse in process and never call the tool.
	_, err = New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	assert.NoError(t, err)
	_, err = New(chem.PipelineOptions{Format: chem.FormatSMILES, TwoD: true})
	assert.NoError(t, err)
}

func TestRunIDIsUniquePerPipeline(t *testing.T) {
	a, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)
	b, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestRunSDF2D(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)

	input := sdfRecord("first", "10") + sdfRecord("second", "20")
	graphs := collect(t, p, input)

	require.Len(t, graphs, 2)
	assert.Equal(t, 1, graphs[0].Order())
	assert.Equal(t, "C", graphs[0].Node(0)[graph.AttrLabel])
}

func TestRunSDFGroupedMergedCapsConformers(t *testing.T) {
	p, err := New(chem.PipelineOptions{
		Format:             chem.FormatSDF,
		ConformersFromFile: true,
		NConf:              1,
	})
	require.NoError(t, err)

	// Two conformers of the same compound; the cap keeps only the first.
	input := sdfRecord("conf1", "10") + sdfRecord("conf2", "10")
	graphs := collect(t, p, input)

	require.Len(t, graphs, 1)
	assert.Equal(t, 1, graphs[0].Order())
}

func TestRunSDFGroupedMergedEmitsGrowingUnion(t *testing.T) {
	p, err := New(chem.PipelineOptions{
		Format:             chem.FormatSDF,
		ConformersFromFile: true,
		NConf:              4,
	})
	require.NoError(t, err)

	input := sdfRecord("a", "10") + sdfRecord("b", "10") + sdfRecord("c", "20")

	var orders []int
	err = p.Run(context.Background(), strings.NewReader(input), func(g *graph.Graph) error {
		orders = append(orders, g.Order())
		return nil
	})
	require.NoError(t, err)

	// One emission at the 10→20 boundary (both conformers of 10), then the
	// final flush carrying all three.
	assert.Equal(t, []int{2, 3}, orders)
}

func TestRunSDFGroupedSplitEmitsEachConformer(t *testing.T) {
	p, err := New(chem.PipelineOptions{
		Format:             chem.FormatSDF,
		ConformersFromFile: true,
		NConf:              2,
		SplitComponents:    true,
	})
	require.NoError(t, err)

	input := sdfRecord("a", "10") + sdfRecord("b", "10") + sdfRecord("c", "20")
	graphs := collect(t, p, input)

	require.Len(t, graphs, 3)
	for _, g := range graphs {
		assert.Equal(t, 1, g.Order())
	}
}

func TestRunSDFGroupedSkipsBuildsBeyondCap(t *testing.T) {
	collector, err := monprom.NewMetricsCollector(monprom.CollectorConfig{Namespace: "captest"}, nil)
	require.NoError(t, err)

	p, err := New(chem.PipelineOptions{
		Format:             chem.FormatSDF,
		ConformersFromFile: true,
		NConf:              1,
	}, WithMetrics(monprom.NewPipelineMetrics(collector)))
	require.NoError(t, err)

	input := sdfRecord("a", "10") + sdfRecord("b", "10") + sdfRecord("c", "10")
	graphs := collect(t, p, input)
	require.Len(t, graphs, 1)

	// Only the retained conformer goes through feature extraction; the two
	// records beyond the cap are discarded before the build.
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(),
		`captest_graph_build_duration_seconds_count{method="metric"} 1`)
}

func TestRunSDFSkipsUnparsableRecords(t *testing.T) {
	log := testutil.NewMockLogger()
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true},
		WithLogger(log))
	require.NoError(t, err)

	input := "not a molfile\n$$$$\n" + sdfRecord("good", "10")
	graphs := collect(t, p, input)
	assert.Len(t, graphs, 1)
	assert.True(t, log.HasMessage("warn", "skipping unparsable record"))
}

const hydrogenRecord = "hydrogen\n\n\n" +
	"  2  1  0     1  0  0  0  0  0999 V2000\n" +
	"    0.0000    0.0000    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"    0.7000    0.0000    0.0000 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"  1  2  1  0  0  0  0\n" +
	"M  END\n$$$$\n"

const methaneRecord = "methane\n\n\n" +
	"  5  4  0     1  0  0  0  0  0999 V2000\n" +
	"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"    0.6300    0.6300    0.6300 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"   -0.6300   -0.6300    0.6300 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"   -0.6300    0.6300   -0.6300 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"    0.6300   -0.6300   -0.6300 H   0  0  0  0  0  0  0  0  0  0  0  0\n" +
	"  1  2  1  0  0  0  0\n" +
	"  1  3  1  0  0  0  0\n" +
	"  1  4  1  0  0  0  0\n" +
	"  1  5  1  0  0  0  0\n" +
	"M  END\n$$$$\n"

func TestRunSDFFiltersAllHydrogenMolecules(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, ConformersFromFile: true})
	require.NoError(t, err)

	graphs := collect(t, p, hydrogenRecord)
	assert.Empty(t, graphs)
}

func TestRunSDF2DStripsHydrogens(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)

	graphs := collect(t, p, methaneRecord+hydrogenRecord)

	// Methane shrinks to its lone carbon; the all-hydrogen record becomes an
	// empty graph and is filtered.
	require.Len(t, graphs, 1)
	assert.Equal(t, 1, graphs[0].Order())
	assert.Equal(t, 0, graphs[0].Size())
	assert.Equal(t, "C", graphs[0].Node(0)[graph.AttrLabel])
}

func TestRunSDFGeneratedMergedEmitsOneUnion(t *testing.T) {
	gen := &fakeGenerator{}
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, NConf: 3},
		WithGenerator(gen))
	require.NoError(t, err)

	input := sdfRecord("a", "10")
	graphs := collect(t, p, input)

	// Three synthesized conformers of a one-carbon record fold into one
	// three-node union emitted after the stream ends.
	require.Len(t, graphs, 1)
	assert.Equal(t, 3, graphs[0].Order())
	assert.Equal(t, 1, gen.conformerCalls)
}

func TestRunSMILESMerged(t *testing.T) {
	gen := &fakeGenerator{record: sdfRecord("gen", "10")}
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES, NConf: 2},
		WithGenerator(gen))
	require.NoError(t, err)

	graphs := collect(t, p, "C\nCC\n")

	// Two lines, two conformers each, one final union of four nodes.
	require.Len(t, graphs, 1)
	assert.Equal(t, 4, graphs[0].Order())
	assert.Equal(t, 2, gen.convertCalls)
	assert.Equal(t, 2, gen.conformerCalls)
}

func TestRunSMILESSplit(t *testing.T) {
	gen := &fakeGenerator{record: sdfRecord("gen", "10")}
	p, err := New(chem.PipelineOptions{
		Format:          chem.FormatSMILES,
		NConf:           2,
		SplitComponents: true,
	}, WithGenerator(gen))
	require.NoError(t, err)

	graphs := collect(t, p, "C\n")
	assert.Len(t, graphs, 2)
}

func TestRunSMILESTwoD(t *testing.T) {
	// No generator: the geometry-free path parses SMILES in process.
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES, TwoD: true})
	require.NoError(t, err)

	graphs := collect(t, p, "C=O\nO\n")

	require.Len(t, graphs, 2)
	assert.Equal(t, 2, graphs[0].Order())
	assert.Equal(t, "C", graphs[0].Node(0)[graph.AttrLabel])
	assert.Equal(t, "O", graphs[0].Node(1)[graph.AttrLabel])
	assert.Equal(t, "C=O", graphs[0].Info)
	edges := graphs[0].Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "2", edges[0].Attrs[graph.AttrLabel])
	assert.Equal(t, 1, graphs[1].Order())
}

func TestRunSMILESTwoDStripsExplicitHydrogens(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES, TwoD: true})
	require.NoError(t, err)

	graphs := collect(t, p, "[H]O[H]\n")

	require.Len(t, graphs, 1)
	assert.Equal(t, 1, graphs[0].Order())
	assert.Equal(t, "O", graphs[0].Node(0)[graph.AttrLabel])
}

func TestRunSMILESSkipsMalformedLines(t *testing.T) {
	log := testutil.NewMockLogger()
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES, TwoD: true},
		WithLogger(log))
	require.NoError(t, err)

	// Unbalanced brackets, a blank line, and an unknown element symbol all
	// drop out; only the plain carbon survives.
	graphs := collect(t, p, "CC(O\n\nXq\nC\n")

	assert.Len(t, graphs, 1)
	assert.True(t, log.HasMessage("warn", "skipping unparsable SMILES"))
}

func TestRunSMILESUsesDefaultCachePerRun(t *testing.T) {
	gen := &fakeGenerator{record: sdfRecord("gen", "10")}
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES},
		WithGenerator(gen))
	require.NoError(t, err)

	graphs := collect(t, p, "C\nC\nC\n")

	// Merged mode folds the three conformer graphs into one union, and the
	// identical lines within one run convert once.
	require.Len(t, graphs, 1)
	assert.Equal(t, 3, graphs[0].Order())
	assert.Equal(t, 1, gen.convertCalls)
	assert.Equal(t, 3, gen.conformerCalls)
}

func TestRunSMILESInjectedCacheSpansRuns(t *testing.T) {
	gen := &fakeGenerator{record: sdfRecord("gen", "10")}
	cache := newCountingCache()
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES},
		WithGenerator(gen), WithCache(cache))
	require.NoError(t, err)

	collect(t, p, "C\n")
	collect(t, p, "C\n")

	assert.Equal(t, 1, gen.convertCalls)
	assert.Equal(t, 1, cache.hits)
}

func TestRunSMILESToolFailureAborts(t *testing.T) {
	gen := &fakeGenerator{err: errors.New(errors.CodeToolExecFailed, "tool died")}
	p, err := New(chem.PipelineOptions{Format: chem.FormatSMILES}, WithGenerator(gen))
	require.NoError(t, err)

	err = p.Run(context.Background(), strings.NewReader("C\n"), func(*graph.Graph) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolExecFailed))
}

func TestRunHonorsContextCancellation(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, strings.NewReader(sdfRecord("a", "10")), func(*graph.Graph) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTimeout))
}

func TestRunEmitErrorAborts(t *testing.T) {
	p, err := New(chem.PipelineOptions{Format: chem.FormatSDF, TwoD: true})
	require.NoError(t, err)

	sentinel := errors.Internal("consumer full")
	err = p.Run(context.Background(), strings.NewReader(sdfRecord("a", "10")),
		func(*graph.Graph) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestSDFScanner(t *testing.T) {
	t.Run("splits on terminator", func(t *testing.T) {
		s := newSDFScanner(strings.NewReader("a\nb\n$$$$\nc\n$$$$\n"))
		require.True(t, s.Scan())
		assert.Equal(t, "a\nb\n", s.Record())
		require.True(t, s.Scan())
		assert.Equal(t, "c\n", s.Record())
		assert.False(t, s.Scan())
		assert.NoError(t, s.Err())
	})

	t.Run("trailing fragment without terminator", func(t *testing.T) {
		s := newSDFScanner(strings.NewReader("a\nb\n"))
		require.True(t, s.Scan())
		assert.Equal(t, "a\nb\n", s.Record())
		assert.False(t, s.Scan())
	})

	t.Run("terminator with no body is skipped", func(t *testing.T) {
		s := newSDFScanner(strings.NewReader("$$$$\n\n$$$$\na\n$$$$\n"))
		require.True(t, s.Scan())
		assert.Equal(t, "a\n", s.Record())
		assert.False(t, s.Scan())
	})

	t.Run("empty input", func(t *testing.T) {
		s := newSDFScanner(strings.NewReader(""))
		assert.False(t, s.Scan())
		assert.NoError(t, s.Err())
	})
}

func TestMapCache(t *testing.T) {
	c := newMapCache()
	_, ok, err := c.Get(context.Background(), "C")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(context.Background(), "C", "record"))
	got, ok, err := c.Get(context.Background(), "C")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "record", got)
}
