package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphJSONRoundTrip(t *testing.T) {
	g := pathGraph("c1ccccc1")

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var back Graph
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, g.Info, back.Info)
	assert.Equal(t, g.Order(), back.Order())
	assert.Equal(t, g.Size(), back.Size())
	assert.Equal(t, "b", back.Node(1)[AttrLabel])
	assert.Equal(t, "1", back.Edges()[0].Attrs[AttrLabel])
}

func TestGraphJSONEmptyGraph(t *testing.T) {
	data, err := json.Marshal(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestGraphJSONRejectsBadEdge(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"nodes":[{}],"edges":[{"u":0,"v":5}]}`), &g)
	assert.Error(t, err)
}
