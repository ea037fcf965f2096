// Package chem defines the shared enumerations and option structures used
// across the MolGraph-Pipeline layers: input formats, feature-extraction
// methods, and emission modes.  No behaviour lives here — only plain types,
// their validation, and parsing helpers.
package chem

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// FileFormat
// ─────────────────────────────────────────────────────────────────────────────

// FileFormat identifies the input record format of a molecule stream.
type FileFormat string

const (
	// FormatSDF is the multi-record SDF format; records are terminated by a
	// literal "$$$$" line.
	FormatSDF FileFormat = "sdf"

	// FormatSMILES is the one-SMILES-string-per-line format.
	FormatSMILES FileFormat = "smi"
)

// IsValid reports whether f is a recognized input format.
func (f FileFormat) IsValid() bool {
	switch f {
	case FormatSDF, FormatSMILES:
		return true
	}
	return false
}

func (f FileFormat) String() string { return string(f) }

// ParseFileFormat parses a case-insensitive format name.
func ParseFileFormat(s string) (FileFormat, error) {
	f := FileFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unrecognized file format %q", s)
	}
	return f, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FeatureMethod
// ─────────────────────────────────────────────────────────────────────────────

// FeatureMethod selects how node label vectors are derived from 3D geometry.
type FeatureMethod string

const (
	// MethodMetric selects per-element-class k-nearest-neighbor similarity
	// vectors.
	MethodMetric FeatureMethod = "metric"

	// MethodTopological selects radial density histograms.
	MethodTopological FeatureMethod = "topological"
)

// IsValid reports whether m is a recognized feature-extraction method.
func (m FeatureMethod) IsValid() bool {
	switch m {
	case MethodMetric, MethodTopological:
		return true
	}
	return false
}

func (m FeatureMethod) String() string { return string(m) }

// ParseFeatureMethod parses a case-insensitive method name.
func ParseFeatureMethod(s string) (FeatureMethod, error) {
	m := FeatureMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unrecognized feature-extraction method %q", s)
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Extraction options
// ─────────────────────────────────────────────────────────────────────────────

// DefaultAtomTypes lists the atomic numbers probed by the metric method when
// no explicit list is configured: the ten most abundant elements, in the
// canonical abundance order (H, He, O, C, Ne, Fe, N, Si, Mg, S).
var DefaultAtomTypes = []int{1, 2, 8, 6, 10, 26, 7, 14, 12, 16}

const (
	// DefaultK is the number of neighbors selected per atom type.
	DefaultK = 3

	// DefaultMaxDist is the outermost radius of the topological histogram.
	DefaultMaxDist = 10.0

	// DefaultIntervals is the number of histogram thresholds.
	DefaultIntervals = 20

	// SentinelDistance is the "very large distance" assigned to padded or
	// over-threshold neighbor slots before the similarity function is applied.
	SentinelDistance = 1e10
)

// ExtractionOptions carries the feature-extraction configuration that flows
// from the configuration surface into the graph builder.
type ExtractionOptions struct {
	// Method selects metric or topological extraction.
	Method FeatureMethod `json:"method"`

	// AtomTypes is the ordered list of atomic numbers probed by the metric
	// method.  Nil selects DefaultAtomTypes.
	AtomTypes []int `json:"atom_types,omitempty"`

	// K is the number of neighbors per atom type (metric).  Zero selects
	// DefaultK.
	K int `json:"k,omitempty"`

	// Threshold is an optional distance cutoff for the metric method; zero
	// disables it.
	Threshold float64 `json:"threshold,omitempty"`

	// Similarity converts a distance to a similarity score (metric).  Nil
	// selects 1/(1+d).  Not serialized.
	Similarity func(float64) float64 `json:"-"`

	// MaxDist is the outermost histogram radius (topological).  Zero selects
	// DefaultMaxDist.
	MaxDist float64 `json:"max_dist,omitempty"`

	// Intervals is the number of histogram thresholds (topological).  Zero
	// selects DefaultIntervals.
	Intervals int `json:"n_intervals,omitempty"`
}

// Normalized returns a copy of o with every zero field replaced by its
// documented default.
func (o ExtractionOptions) Normalized() ExtractionOptions {
	if o.Method == "" {
		o.Method = MethodMetric
	}
	if o.AtomTypes == nil {
		o.AtomTypes = DefaultAtomTypes
	}
	if o.K <= 0 {
		o.K = DefaultK
	}
	if o.Similarity == nil {
		o.Similarity = func(d float64) float64 { return 1.0 / (d + 1.0) }
	}
	if o.MaxDist <= 0 {
		o.MaxDist = DefaultMaxDist
	}
	if o.Intervals <= 0 {
		o.Intervals = DefaultIntervals
	}
	return o
}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline options
// ─────────────────────────────────────────────────────────────────────────────

// PipelineOptions carries the stream-level configuration of a conversion run.
type PipelineOptions struct {
	// Format is the input record format.
	Format FileFormat `json:"format"`

	// NConf caps the number of conformers retained per compound group.
	// Zero selects 1.
	NConf int `json:"n_conf,omitempty"`

	// TwoD selects the geometry-free conversion path: node labels are the
	// element-type text and no distance features are computed.  The zero
	// value selects the 3D feature path.
	TwoD bool `json:"two_d,omitempty"`

	// ConformersFromFile indicates that the SDF input already carries one
	// record per conformer; when false, conformers are synthesized through
	// the external generator.
	ConformersFromFile bool `json:"conformers_from_file"`

	// SplitComponents selects the emission mode: true yields each graph
	// independently, false folds all retained graphs into a disjoint-union
	// accumulator.
	SplitComponents bool `json:"split_components"`

	// Extraction is the node feature-extraction configuration.
	Extraction ExtractionOptions `json:"extraction"`
}

// Normalized returns a copy of o with defaults applied.
func (o PipelineOptions) Normalized() PipelineOptions {
	if o.NConf <= 0 {
		o.NConf = 1
	}
	o.Extraction = o.Extraction.Normalized()
	return o
}
