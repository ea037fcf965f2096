// Package pipeline implements the streaming molecule-to-graph conversion:
// a pull-based, single-threaded driver that reads molecule records (SDF or
// SMILES), routes them through the 2D or 3D conversion path, applies the
// conformer grouping and emission policy, and hands attributed graphs to
// the caller in input order.
package pipeline

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/MolGraph-Pipeline/internal/domain/graph"
	"github.com/turtacn/MolGraph-Pipeline/internal/domain/molecule"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// ConformerGenerator abstracts the external structure-generation tool.
// Implementations are expected to be safe for sequential reuse; the
// pipeline never calls them concurrently.
type ConformerGenerator interface {
	// ConvertSMILES converts one SMILES string to a single SDF record with
	// generated 3D coordinates.
	ConvertSMILES(ctx context.Context, smiles string) (string, error)

	// GenerateConformers expands one SDF record into up to n conformer
	// records.  n below 1 returns the input record unchanged.
	GenerateConformers(ctx context.Context, record string, n int) ([]string, error)
}

// ConversionCache memoises SMILES-to-SDF conversions, keyed by the exact
// SMILES text.  Lookup errors are treated as misses by the pipeline so a
// degraded shared cache never fails a run.
type ConversionCache interface {
	Get(ctx context.Context, smiles string) (string, bool, error)
	Set(ctx context.Context, smiles, record string) error
}

// EmitFunc receives each output graph in stream order.  Returning an error
// aborts the run.
type EmitFunc func(*graph.Graph) error

// Pipeline is one configured conversion stream.  Construct with New, then
// drive with Run; a Pipeline may be reused across inputs but each Run owns
// its own conversion cache unless one was injected.
type Pipeline struct {
	opts    chem.PipelineOptions
	builder *Builder
	gen     ConformerGenerator
	cache   ConversionCache
	log     logging.Logger
	metrics *monprom.PipelineMetrics
	runID   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerator injects the external conformer generator.  Required on the
// geometry paths: SMILES 3D input and SDF input with conformers_from_file
// disabled.  The 2D paths never call the tool.
func WithGenerator(gen ConformerGenerator) Option {
	return func(p *Pipeline) { p.gen = gen }
}

// WithCache injects a conversion cache shared across runs (e.g. Redis).
// Without it each Run builds a private in-memory cache.
func WithCache(cache ConversionCache) Option {
	return func(p *Pipeline) { p.cache = cache }
}

// WithLogger injects the logger.
func WithLogger(log logging.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMetrics injects the pipeline metric set.
func WithMetrics(m *monprom.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New validates the configuration and constructs a Pipeline.  Unrecognized
// format or feature-extraction method fails here, before any input is read.
func New(opts chem.PipelineOptions, options ...Option) (*Pipeline, error) {
	opts = opts.Normalized()
	if !opts.Format.IsValid() {
		return nil, errors.Newf(errors.CodeUnknownFormat, "unrecognized file format %q", opts.Format)
	}
	if !opts.Extraction.Method.IsValid() {
		return nil, errors.Newf(errors.CodeUnknownMethod, "unrecognized feature-extraction method %q", opts.Extraction.Method)
	}

	p := &Pipeline{
		opts:  opts,
		log:   logging.NewNopLogger(),
		runID: uuid.NewString(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = monprom.NewNopPipelineMetrics()
	}
	p.log = p.log.Named("pipeline").With(logging.String("run_id", p.runID))
	p.builder = NewBuilder(p.log)

	if p.gen == nil && p.needsGenerator() {
		return nil, errors.New(errors.CodeToolNotAvailable, "conformer generator required").
			WithDetail("3D SMILES input and SDF conformer synthesis call the external tool")
	}
	return p, nil
}

func (p *Pipeline) needsGenerator() bool {
	if p.opts.TwoD {
		return false
	}
	if p.opts.Format == chem.FormatSMILES {
		return true
	}
	return !p.opts.ConformersFromFile
}

// RunID returns the identifier attached to this pipeline's log entries.
func (p *Pipeline) RunID() string { return p.runID }

// Run drives the whole stream: reads records from r, converts, and emits.
// Graphs are delivered strictly in input order; the first error aborts the
// run.  Tool failures propagate; malformed records are skipped.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, emit EmitFunc) error {
	switch p.opts.Format {
	case chem.FormatSDF:
		return p.runSDF(ctx, r, emit)
	case chem.FormatSMILES:
		return p.runSMILES(ctx, r, emit)
	}
	return errors.Newf(errors.CodeUnknownFormat, "unrecognized file format %q", p.opts.Format)
}

// ─────────────────────────────────────────────────────────────────────────────
// SDF input
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) runSDF(ctx context.Context, r io.Reader, emit EmitFunc) error {
	if p.opts.TwoD {
		return p.runSDF2D(ctx, r, emit)
	}
	if p.opts.ConformersFromFile {
		return p.runSDFGrouped(ctx, r, emit)
	}
	return p.runSDFGenerated(ctx, r, emit)
}

// runSDF2D converts each record independently on the geometry-free path.
func (p *Pipeline) runSDF2D(ctx context.Context, r io.Reader, emit EmitFunc) error {
	scanner := newSDFScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "conversion cancelled")
		}
		mol, ok := p.parseRecord(scanner.Record())
		if !ok {
			continue
		}
		g := p.builder.Build2D(mol.RemoveHydrogens())
		if err := p.emitGraph(g, emit); err != nil {
			return err
		}
	}
	return p.scanErr(scanner.Err())
}

// runSDFGrouped handles inputs that already carry one record per conformer:
// adjacent records sharing a compound id form a group capped at n_conf.
func (p *Pipeline) runSDFGrouped(ctx context.Context, r io.Reader, emit EmitFunc) error {
	scanner := newSDFScanner(r)
	acc := NewGroupAccumulator(p.opts.NConf, p.opts.SplitComponents)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "conversion cancelled")
		}
		mol, ok := p.parseRecord(scanner.Record())
		if !ok {
			continue
		}
		compoundID := mol.CompoundID()
		if !acc.WillRetain(compoundID) {
			// Beyond the group cap: discarded either way, so skip the build.
			continue
		}
		g, err := p.buildGeometry(mol)
		if err != nil {
			return err
		}
		for _, out := range acc.Push(compoundID, g) {
			if err := p.emitGraph(out, emit); err != nil {
				return err
			}
		}
	}
	if err := p.scanErr(scanner.Err()); err != nil {
		return err
	}
	for _, out := range acc.Flush() {
		if err := p.emitGraph(out, emit); err != nil {
			return err
		}
	}
	return nil
}

// runSDFGenerated synthesizes conformers for each record through the
// external tool.  Split mode emits each conformer graph; merged mode folds
// everything into one disjoint union emitted after the stream ends.
func (p *Pipeline) runSDFGenerated(ctx context.Context, r io.Reader, emit EmitFunc) error {
	scanner := newSDFScanner(r)
	var union *graph.Graph

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "conversion cancelled")
		}
		mol, ok := p.parseRecord(scanner.Record())
		if !ok {
			continue
		}
		union2, err := p.convertConformers(ctx, mol.Raw, union, emit)
		if err != nil {
			return err
		}
		union = union2
	}
	if err := p.scanErr(scanner.Err()); err != nil {
		return err
	}
	return p.emitUnion(union, emit)
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES input
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) runSMILES(ctx context.Context, r io.Reader, emit EmitFunc) error {
	cache := p.cache
	if cache == nil {
		cache = newMapCache()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var union *graph.Graph

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "conversion cancelled")
		}
		smiles := strings.TrimSpace(scanner.Text())
		if smiles == "" {
			continue
		}
		p.metrics.RecordsTotal.WithLabelValues(string(chem.FormatSMILES)).Inc()

		if molecule.SMILESHasError(smiles) {
			p.metrics.RecordsSkipped.WithLabelValues(string(chem.FormatSMILES), "malformed_smiles").Inc()
			p.log.Debug("skipping malformed SMILES", logging.String("smiles", smiles))
			continue
		}

		if p.opts.TwoD {
			if err := p.convert2DSMILES(smiles, emit); err != nil {
				return err
			}
			continue
		}

		record, err := p.convertSMILES(ctx, cache, smiles)
		if err != nil {
			return err
		}

		union2, err := p.convertConformers(ctx, record, union, emit)
		if err != nil {
			return err
		}
		union = union2
	}
	if err := p.scanErr(scanner.Err()); err != nil {
		return err
	}
	return p.emitUnion(union, emit)
}

// convert2DSMILES parses one SMILES string in process and emits its
// geometry-free graph.  The 2D path never touches the external tool;
// strings the parser rejects are skipped like any other malformed record.
func (p *Pipeline) convert2DSMILES(smiles string, emit EmitFunc) error {
	mol, err := molecule.ParseSMILES(smiles)
	if err != nil {
		p.metrics.RecordsSkipped.WithLabelValues(string(chem.FormatSMILES), "invalid_smiles").Inc()
		p.log.Warn("skipping unparsable SMILES", logging.Err(err))
		return nil
	}
	return p.emitGraph(p.builder.Build2D(mol.RemoveHydrogens()), emit)
}

// convertSMILES resolves one SMILES string to an SDF record through the
// cache, falling back to the external tool on a miss.  Cache read and write
// failures degrade to tool calls rather than failing the run.
func (p *Pipeline) convertSMILES(ctx context.Context, cache ConversionCache, smiles string) (string, error) {
	record, hit, err := cache.Get(ctx, smiles)
	if err != nil {
		p.log.Warn("conversion cache read failed", logging.Err(err))
	}
	if hit {
		p.metrics.CacheHitsTotal.WithLabelValues().Inc()
		return record, nil
	}
	p.metrics.CacheMissesTotal.WithLabelValues().Inc()

	timer := monprom.NewTimer(p.metrics.ToolCallDuration.WithLabelValues("convert_smiles"))
	p.metrics.ToolCallsTotal.WithLabelValues("convert_smiles").Inc()
	record, err = p.gen.ConvertSMILES(ctx, smiles)
	timer.ObserveDuration()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnknown, "SMILES conversion failed").WithDetail(smiles)
	}
	if err := cache.Set(ctx, smiles, record); err != nil {
		p.log.Warn("conversion cache write failed", logging.Err(err))
	}
	return record, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared stages
// ─────────────────────────────────────────────────────────────────────────────

// convertConformers expands one SDF record into conformer graphs and
// routes them per the emission mode, returning the updated merged union.
func (p *Pipeline) convertConformers(ctx context.Context, record string, union *graph.Graph, emit EmitFunc) (*graph.Graph, error) {
	timer := monprom.NewTimer(p.metrics.ToolCallDuration.WithLabelValues("generate_conformers"))
	p.metrics.ToolCallsTotal.WithLabelValues("generate_conformers").Inc()
	conformers, err := p.gen.GenerateConformers(ctx, record, p.opts.NConf)
	timer.ObserveDuration()
	if err != nil {
		return union, errors.Wrap(err, errors.CodeUnknown, "conformer generation failed")
	}

	for _, conformer := range conformers {
		mol, ok := p.parseToolRecord(conformer)
		if !ok {
			return union, errors.New(errors.CodeToolBadOutput, "conformer record unparsable")
		}
		g, err := p.buildGeometry(mol)
		if err != nil {
			return union, err
		}
		if g.IsEmpty() {
			continue
		}
		if p.opts.SplitComponents {
			if err := p.emitGraph(g, emit); err != nil {
				return union, err
			}
			continue
		}
		if union == nil {
			union = g
		} else {
			union = graph.DisjointUnion(union, g)
		}
	}
	return union, nil
}

// buildGeometry strips hydrogens and runs the 3D builder.
func (p *Pipeline) buildGeometry(mol *molecule.Molecule) (*graph.Graph, error) {
	timer := monprom.NewTimer(p.metrics.GraphBuildSeconds.WithLabelValues(string(p.opts.Extraction.Method)))
	defer timer.ObserveDuration()
	return p.builder.Build3D(mol.RemoveHydrogens(), p.opts.Extraction)
}

// parseRecord parses one input-stream SDF record, skipping (with a warning
// and a metric) records that do not parse.
func (p *Pipeline) parseRecord(record string) (*molecule.Molecule, bool) {
	p.metrics.RecordsTotal.WithLabelValues(string(chem.FormatSDF)).Inc()
	mol, err := molecule.ParseSDF(record)
	if err != nil {
		p.metrics.RecordsSkipped.WithLabelValues(string(chem.FormatSDF), "invalid_molfile").Inc()
		p.log.Warn("skipping unparsable record", logging.Err(err))
		return nil, false
	}
	return mol, true
}

// parseToolRecord parses a record produced by the external tool; unlike
// input records these are not skippable, the caller treats failure as
// tool-output corruption.
func (p *Pipeline) parseToolRecord(record string) (*molecule.Molecule, bool) {
	mol, err := molecule.ParseSDF(record)
	if err != nil {
		p.log.Error("external tool produced unparsable record", logging.Err(err))
		return nil, false
	}
	return mol, true
}

// emitGraph filters empty graphs and forwards the rest.
func (p *Pipeline) emitGraph(g *graph.Graph, emit EmitFunc) error {
	if g == nil || g.IsEmpty() {
		p.metrics.RecordsSkipped.WithLabelValues(string(p.opts.Format), "empty_graph").Inc()
		return nil
	}
	p.metrics.GraphsEmitted.WithLabelValues(string(p.opts.Format)).Inc()
	return emit(g)
}

// emitUnion emits the final merged accumulator of the generated-conformer
// and SMILES variants.
func (p *Pipeline) emitUnion(union *graph.Graph, emit EmitFunc) error {
	if p.opts.SplitComponents || union == nil {
		return nil
	}
	return p.emitGraph(union, emit)
}

func (p *Pipeline) scanErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CodeInternal, "reading input stream")
}

// ─────────────────────────────────────────────────────────────────────────────
// SDF record scanner
// ─────────────────────────────────────────────────────────────────────────────

// sdfScanner splits a multi-record SDF stream on the "$$$$" terminator
// line.  A trailing fragment without a terminator still forms a record, so
// streams missing the final "$$$$" are accepted.
type sdfScanner struct {
	lines  *bufio.Scanner
	record string
	err    error
	done   bool
}

func newSDFScanner(r io.Reader) *sdfScanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sdfScanner{lines: lines}
}

// Scan advances to the next record.
func (s *sdfScanner) Scan() bool {
	if s.done {
		return false
	}
	var sb strings.Builder
	sawLine := false
	for s.lines.Scan() {
		line := s.lines.Text()
		if strings.HasPrefix(strings.TrimSpace(line), molecule.RecordTerminator) {
			s.record = sb.String()
			if strings.TrimSpace(s.record) == "" {
				// Terminator with no body: keep scanning.
				sb.Reset()
				sawLine = false
				continue
			}
			return true
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		sawLine = true
	}
	s.done = true
	s.err = s.lines.Err()
	if sawLine && strings.TrimSpace(sb.String()) != "" {
		s.record = sb.String()
		return true
	}
	return false
}

// Record returns the current record text, terminator excluded.
func (s *sdfScanner) Record() string { return s.record }

// Err returns the first underlying read error.
func (s *sdfScanner) Err() error { return s.err }

// ─────────────────────────────────────────────────────────────────────────────
// Default per-run conversion cache
// ─────────────────────────────────────────────────────────────────────────────

// mapCache is the private in-memory conversion cache a run falls back to
// when no shared cache is injected.  Single-threaded use only, matching the
// pipeline's execution model.
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, smiles string) (string, bool, error) {
	record, ok := c.entries[smiles]
	return record, ok, nil
}

func (c *mapCache) Set(_ context.Context, smiles, record string) error {
	c.entries[smiles] = record
	return nil
}
