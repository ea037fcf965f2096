package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// Modifier is a per-graph node-attribute transformation.  Modifiers mutate
// the graph they are given; callers that need the original intact pass a
// Clone.  The pipeline applies modifiers to each graph as it flows through,
// preserving the one-at-a-time streaming model.
type Modifier func(*Graph) error

// Apply runs each modifier over g in order, stopping at the first error.
func Apply(g *Graph, mods ...Modifier) error {
	for _, mod := range mods {
		if err := mod(g); err != nil {
			return err
		}
	}
	return nil
}

// labelString renders an attribute value as a label string; missing values
// render as "N/A" to match the converter's absent-label convention.
func labelString(v interface{}, ok bool) string {
	if !ok {
		return "N/A"
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprint(v)
}

// attrFloat reads a numeric attribute, accepting float64 and int values;
// missing or non-numeric values read as 0.
func attrFloat(attrs Attributes, key string) float64 {
	switch v := attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Label translation and flipping
// ─────────────────────────────────────────────────────────────────────────────

// Translate maps each node's input attribute through labelMap into the
// output attribute, preserving the original value under
// "<inputAttr>_original".  Unmapped keys take the default value.
func Translate(inputAttr, outputAttr string, labelMap map[string]string, defaultValue string) Modifier {
	return func(g *Graph) error {
		originalAttr := inputAttr + "_original"
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			key := labelString(attrs[inputAttr], attrs[inputAttr] != nil)
			if attrs[inputAttr] == nil {
				key = defaultValue
			}
			attrs[originalAttr] = key
			if mapped, ok := labelMap[key]; ok {
				attrs[outputAttr] = mapped
			} else {
				attrs[outputAttr] = defaultValue
			}
		}
		return nil
	}
}

// FlipNodeLabels swaps each node's primary label with the attribute named
// newLabelName, storing the displaced label under oldLabelName and removing
// the now-redundant newLabelName key.  When the first node lacks
// newLabelName the graph is assumed already flipped and is returned
// unchanged.
func FlipNodeLabels(newLabelName, oldLabelName string) Modifier {
	return func(g *Graph) error {
		if g.IsEmpty() {
			return nil
		}
		if _, ok := g.Node(0)[newLabelName]; !ok {
			return nil
		}
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			oldLabel := attrs[AttrLabel]
			attrs[AttrLabel] = attrs[newLabelName]
			attrs[oldLabelName] = oldLabel
			delete(attrs, newLabelName)
		}
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Colorization and discretization
// ─────────────────────────────────────────────────────────────────────────────

// Colorize assigns each node a value in [0, 1] according to the position of
// its label in the labels list (evenly spaced, first label 0.0, last 1.0).
// When threeD is set the label is read from "text_label" instead of the
// primary label, matching the 3D converter's attribute layout.  Unknown
// labels colorize to 0.
func Colorize(outputAttr string, labels []string, threeD bool) Modifier {
	colors := make(map[string]float64, len(labels))
	for i, label := range labels {
		var v float64
		if len(labels) > 1 {
			v = float64(i) / float64(len(labels)-1)
		}
		colors[label] = v
	}
	inputAttr := AttrLabel
	if threeD {
		inputAttr = "text_label"
	}
	return func(g *Graph) error {
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			attrs[outputAttr] = colors[labelString(attrs[inputAttr], attrs[inputAttr] != nil)]
		}
		return nil
	}
}

// ColorizeBinary assigns 0 when the input attribute is at or below level,
// 1 otherwise.
func ColorizeBinary(outputAttr, inputAttr string, level float64) Modifier {
	return func(g *Graph) error {
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			if attrFloat(attrs, inputAttr) <= level {
				attrs[outputAttr] = 0
			} else {
				attrs[outputAttr] = 1
			}
		}
		return nil
	}
}

// Discretize buckets the input attribute by the given interval width,
// writing int(value/interval) to the output attribute.
func Discretize(outputAttr, inputAttr string, interval float64) Modifier {
	return func(g *Graph) error {
		if interval == 0 {
			return errors.New(errors.CodeInvalidInterval, "discretize interval must be non-zero")
		}
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			attrs[outputAttr] = int(attrFloat(attrs, inputAttr) / interval)
		}
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Position-based reweighting
// ─────────────────────────────────────────────────────────────────────────────

// TrapezoidalWeights parameterizes the piecewise-linear weight profile:
// low before upStart, interpolating up to high across (upStart, upEnd),
// high on [upEnd, downStart], interpolating back down across
// (downStart, downEnd), low after downEnd.
//
//	high      ___
//	         /   \
//	low   __/     \__
type TrapezoidalWeights struct {
	High      float64
	Low       float64
	UpStart   float64
	UpEnd     float64
	DownStart float64
	DownEnd   float64
}

// Validate checks the profile's internal consistency.
func (w TrapezoidalWeights) Validate() error {
	if w.High < w.Low {
		return errors.Newf(errors.CodeInvalidInterval,
			"high weight (%f) must not be lower than low weight (%f)", w.High, w.Low)
	}
	if w.UpEnd > w.DownEnd {
		return errors.Newf(errors.CodeInvalidInterval,
			"up end (%f) must not exceed down end (%f)", w.UpEnd, w.DownEnd)
	}
	if w.UpEnd < w.UpStart {
		return errors.Newf(errors.CodeInvalidInterval,
			"up end (%f) must not precede up start (%f)", w.UpEnd, w.UpStart)
	}
	if w.DownStart < w.UpStart {
		return errors.Newf(errors.CodeInvalidInterval,
			"down start (%f) must not precede up start (%f)", w.DownStart, w.UpStart)
	}
	if w.DownStart > w.DownEnd {
		return errors.Newf(errors.CodeInvalidInterval,
			"down start (%f) must not exceed down end (%f)", w.DownStart, w.DownEnd)
	}
	return nil
}

// at evaluates the profile at pos.
func (w TrapezoidalWeights) at(pos float64) float64 {
	switch {
	case pos <= w.UpStart:
		return w.Low
	case pos < w.UpEnd:
		return (w.High-w.Low)/(w.UpEnd-w.UpStart)*(pos-w.UpStart) + w.Low
	case pos <= w.DownStart:
		return w.High
	case pos < w.DownEnd:
		return w.High - (w.High-w.Low)/(w.DownEnd-w.DownStart)*(pos-w.DownStart)
	default:
		return w.Low
	}
}

// TrapezoidalReweight assigns each node a weight from the piecewise-linear
// profile evaluated at the node's position attribute.  Nodes without a
// position attribute are a caller error.
func TrapezoidalReweight(weights TrapezoidalWeights, attr string) Modifier {
	return func(g *Graph) error {
		if err := weights.Validate(); err != nil {
			return err
		}
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			pos, ok := attrs[AttrPosition]
			if !ok {
				return errors.New(errors.CodeModifierFailed, "node has no position attribute").
					WithDetail(fmt.Sprintf("node=%d", id))
			}
			attrs[attr] = weights.at(toFloat(pos))
		}
		return nil
	}
}

// Reweight assigns each node the weight found at its position in the
// supplied vector.
func Reweight(weightVector []float64, attr string) Modifier {
	return func(g *Graph) error {
		for id := 0; id < g.Order(); id++ {
			attrs := g.Node(id)
			pos, ok := attrs[AttrPosition]
			if !ok {
				return errors.New(errors.CodeModifierFailed, "node has no position attribute").
					WithDetail(fmt.Sprintf("node=%d", id))
			}
			p := int(toFloat(pos))
			if p < 0 || p >= len(weightVector) {
				return errors.New(errors.CodeModifierFailed, "node position outside weight vector").
					WithDetail(fmt.Sprintf("node=%d position=%d len=%d", id, p, len(weightVector)))
			}
			attrs[attr] = weightVector[p]
		}
		return nil
	}
}

// RegionWeight is one (start, end, weight) triplet of ListReweight.  The
// special triplet start == end == -1 assigns the weight to every node.
type RegionWeight struct {
	Start  float64
	End    float64
	Weight float64
}

// ListReweight assigns weights region by region: each triplet sets the
// weight of nodes whose position lies in [start, end); later triplets
// override earlier ones.
func ListReweight(regions []RegionWeight, attr string) Modifier {
	return func(g *Graph) error {
		for _, region := range regions {
			for id := 0; id < g.Order(); id++ {
				attrs := g.Node(id)
				pos, ok := attrs[AttrPosition]
				if !ok {
					return errors.New(errors.CodeModifierFailed, "node has no position attribute").
						WithDetail(fmt.Sprintf("node=%d", id))
				}
				p := toFloat(pos)
				if region.Start == -1 && region.End == -1 {
					attrs[attr] = region.Weight
					continue
				}
				if p >= region.Start && p < region.End {
					attrs[attr] = region.Weight
				}
			}
		}
		return nil
	}
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Incident-label vertex types
// ─────────────────────────────────────────────────────────────────────────────

// IncidentEdgeLabel assigns each node a type built from the sorted
// serialization of its incident edge labels joined by separator.  Level 1
// considers the node's own incident edges; level 2 considers all edges
// incident on its neighbors instead.
func IncidentEdgeLabel(outputAttr, separator string, level int) Modifier {
	return func(g *Graph) error {
		if level != 1 && level != 2 {
			return errors.Newf(errors.CodeModifierFailed, "unknown level: %d", level)
		}
		for id := 0; id < g.Order(); id++ {
			var labels []string
			switch level {
			case 1:
				for _, e := range g.IncidentEdges(id) {
					v, ok := e.Attrs[AttrLabel]
					labels = append(labels, labelString(v, ok))
				}
			case 2:
				for _, nb := range g.Neighbors(id) {
					for _, e := range g.IncidentEdges(nb) {
						v, ok := e.Attrs[AttrLabel]
						labels = append(labels, labelString(v, ok))
					}
				}
			}
			sort.Strings(labels)
			g.Node(id)[outputAttr] = strings.Join(labels, separator)
		}
		return nil
	}
}

// IncidentNodeLabel assigns each node a type built from the sorted
// serialization of its neighbors' labels joined by separator.  Level 1
// considers direct neighbors; level 2 considers the neighbors' neighbors.
func IncidentNodeLabel(outputAttr, separator string, level int) Modifier {
	return func(g *Graph) error {
		if level != 1 && level != 2 {
			return errors.Newf(errors.CodeModifierFailed, "unknown level: %d", level)
		}
		for id := 0; id < g.Order(); id++ {
			var labels []string
			switch level {
			case 1:
				for _, nb := range g.Neighbors(id) {
					v, ok := g.Node(nb)[AttrLabel]
					labels = append(labels, labelString(v, ok))
				}
			case 2:
				for _, nb := range g.Neighbors(id) {
					for _, nnb := range g.Neighbors(nb) {
						v, ok := g.Node(nnb)[AttrLabel]
						labels = append(labels, labelString(v, ok))
					}
				}
			}
			sort.Strings(labels)
			g.Node(id)[outputAttr] = strings.Join(labels, separator)
		}
		return nil
	}
}
