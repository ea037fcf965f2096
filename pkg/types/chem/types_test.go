package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    FileFormat
		wantErr bool
	}{
		{"sdf", FormatSDF, false},
		{"SDF", FormatSDF, false},
		{" smi ", FormatSMILES, false},
		{"smiles", "", true},
		{"", "", true},
		{"mol2", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFeatureMethod(t *testing.T) {
	got, err := ParseFeatureMethod("Metric")
	require.NoError(t, err)
	assert.Equal(t, MethodMetric, got)

	got, err = ParseFeatureMethod("topological")
	require.NoError(t, err)
	assert.Equal(t, MethodTopological, got)

	_, err = ParseFeatureMethod("euclidean")
	assert.Error(t, err)
}

func TestExtractionOptionsNormalized(t *testing.T) {
	o := ExtractionOptions{}.Normalized()

	assert.Equal(t, MethodMetric, o.Method)
	assert.Equal(t, DefaultAtomTypes, o.AtomTypes)
	assert.Equal(t, DefaultK, o.K)
	assert.Equal(t, DefaultMaxDist, o.MaxDist)
	assert.Equal(t, DefaultIntervals, o.Intervals)
	require.NotNil(t, o.Similarity)
	assert.InDelta(t, 1.0, o.Similarity(0), 1e-12)
	assert.InDelta(t, 0.5, o.Similarity(1), 1e-12)
}

func TestExtractionOptionsNormalizedKeepsExplicitValues(t *testing.T) {
	in := ExtractionOptions{
		Method:    MethodTopological,
		AtomTypes: []int{6},
		K:         1,
		MaxDist:   4.5,
		Intervals: 5,
	}
	o := in.Normalized()
	assert.Equal(t, in.Method, o.Method)
	assert.Equal(t, in.AtomTypes, o.AtomTypes)
	assert.Equal(t, in.K, o.K)
	assert.Equal(t, in.MaxDist, o.MaxDist)
	assert.Equal(t, in.Intervals, o.Intervals)
}

func TestPipelineOptionsNormalized(t *testing.T) {
	o := PipelineOptions{}.Normalized()
	assert.Equal(t, 1, o.NConf)
	assert.False(t, o.TwoD)
	assert.Equal(t, MethodMetric, o.Extraction.Method)

	o = PipelineOptions{NConf: 7}.Normalized()
	assert.Equal(t, 7, o.NConf)
}

func TestFormatAndMethodValidity(t *testing.T) {
	assert.True(t, FormatSDF.IsValid())
	assert.True(t, FormatSMILES.IsValid())
	assert.False(t, FileFormat("xyz").IsValid())

	assert.True(t, MethodMetric.IsValid())
	assert.True(t, MethodTopological.IsValid())
	assert.False(t, FeatureMethod("").IsValid())
}
