package models

import (
	"slices"
	"strings"
)

// EdgeKind is the relationship an edge represents.
type EdgeKind string

const (
	EdgeInheritance EdgeKind = "inheritance"
	EdgeAssociation EdgeKind = "association"
	EdgeUsing       EdgeKind = "using"
)

// EdgeKinds lists every relationship kind in reporting order.
var EdgeKinds = []EdgeKind{EdgeInheritance, EdgeAssociation, EdgeUsing}

// ParseEdgeKinds converts case-insensitive kind names. An empty list
// yields nil, meaning every kind.
func ParseEdgeKinds(names []string) ([]EdgeKind, error) {
	var out []EdgeKind
	for _, name := range names {
		kind := EdgeKind(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(EdgeKinds, kind) {
			return nil, &KindError{Kind: name}
		}
		out = append(out, kind)
	}
	return out, nil
}

// KindError reports an unknown relationship kind.
type KindError struct {
	Kind string
}

func (e *KindError) Error() string {
	return "unknown relationship kind " + e.Kind + " (want inheritance, association or using)"
}

// RelationEdge points from a class to a class it references.
type RelationEdge struct {
	From string   `json:"from" yaml:"from"`
	To   string   `json:"to" yaml:"to"`
	Kind EdgeKind `json:"kind" yaml:"kind"`
}

// ClassCoupling holds fan-in, fan-out and PageRank for one class.
// Fan counts are distinct classes, whatever the edge kinds between them.
type ClassCoupling struct {
	Class  string  `json:"class" yaml:"class"`
	FanIn  int     `json:"fan_in" yaml:"fan_in"`
	FanOut int     `json:"fan_out" yaml:"fan_out"`
	Rank   float64 `json:"rank" yaml:"rank"`
}

// RelationGraph is the class-level view of relationship-mode results.
type RelationGraph struct {
	Edges      []RelationEdge  `json:"edges" yaml:"edges"`
	Coupling   []ClassCoupling `json:"coupling" yaml:"coupling"`
	Components int             `json:"components" yaml:"components"`
	Cycles     [][]string      `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// IsCyclic reports whether any dependency cycle was found.
func (g *RelationGraph) IsCyclic() bool { return len(g.Cycles) > 0 }
