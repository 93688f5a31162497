// Package graph turns relationship-mode results into a class dependency
// graph and computes coupling metrics over it.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/lexscope/pkg/models"
)

// Analyzer builds class relationship graphs.
type Analyzer struct {
	kinds map[models.EdgeKind]bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithKinds limits the graph to the given relationship kinds.
func WithKinds(kinds ...models.EdgeKind) Option {
	return func(a *Analyzer) {
		a.kinds = make(map[models.EdgeKind]bool, len(kinds))
		for _, k := range kinds {
			a.kinds[k] = true
		}
	}
}

// New creates a graph analyzer covering every relationship kind.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	WithKinds(models.EdgeKinds...)(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// gonumGraph holds the gonum representation and mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nameToID   map[string]int64
	idToName   map[int64]string
}

// toGonumGraph converts classes and edges to gonum graph types. Multiple
// edges between the same pair of classes collapse into one.
func toGonumGraph(classes models.NameSet, edges []models.RelationEdge) *gonumGraph {
	g := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nameToID:   make(map[string]int64, len(classes)),
		idToName:   make(map[int64]string, len(classes)),
	}

	for i, name := range classes {
		id := int64(i)
		g.nameToID[name] = id
		g.idToName[id] = name
		g.directed.AddNode(simple.Node(id))
		g.undirected.AddNode(simple.Node(id))
	}

	// simple graphs reject self-loops
	for _, e := range edges {
		from, fromOK := g.nameToID[e.From]
		to, toOK := g.nameToID[e.To]
		if !fromOK || !toOK || from == to {
			continue
		}
		g.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		if !g.undirected.HasEdgeBetween(from, to) {
			g.undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}
	return g
}

// Analyze builds the relationship graph for tree. Classes are identified by
// name, so same-named classes in different files share a node.
func (a *Analyzer) Analyze(tree *models.ResultTree) *models.RelationGraph {
	result := &models.RelationGraph{
		Edges:    []models.RelationEdge{},
		Coupling: []models.ClassCoupling{},
	}
	if tree == nil {
		return result
	}

	classes := tree.ClassNames()
	result.Edges = a.edges(tree)
	if len(classes) == 0 {
		return result
	}

	g := toGonumGraph(classes, result.Edges)
	ranks := network.PageRank(g.directed, 0.85, 1e-6)

	for _, name := range classes {
		id := g.nameToID[name]
		result.Coupling = append(result.Coupling, models.ClassCoupling{
			Class:  name,
			FanIn:  g.directed.To(id).Len(),
			FanOut: g.directed.From(id).Len(),
			Rank:   ranks[id],
		})
	}

	result.Components = len(topo.ConnectedComponents(g.undirected))

	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, g.idToName[n.ID()])
		}
		sort.Strings(cycle)
		result.Cycles = append(result.Cycles, cycle)
	}
	sort.Slice(result.Cycles, func(i, j int) bool {
		return result.Cycles[i][0] < result.Cycles[j][0]
	})

	return result
}

// edges lists the distinct relationship edges in tree, sorted.
func (a *Analyzer) edges(tree *models.ResultTree) []models.RelationEdge {
	seen := make(map[models.RelationEdge]bool)
	edges := []models.RelationEdge{}
	add := func(from string, targets models.NameSet, kind models.EdgeKind) {
		if !a.kinds[kind] {
			return
		}
		for _, to := range targets {
			e := models.RelationEdge{From: from, To: to, Kind: kind}
			if to == from || seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}

	for _, f := range tree.Files {
		for _, ns := range f.Namespaces {
			for _, c := range ns.Classes {
				add(c.Name, c.Inheritance, models.EdgeInheritance)
				add(c.Name, c.Association, models.EdgeAssociation)
				add(c.Name, c.Using, models.EdgeUsing)
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})
	return edges
}
