// Package plan holds the frozen execution plan of a saga: a directed
// chain over the declared steps. The graph form gives the executor a
// deterministic ordering source and lets callers export the plan to
// Graphviz DOT for diagnostics.
package plan

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is a directed graph whose nodes and edges carry DOT attributes.
type Graph struct {
	*simple.DirectedGraph
	attrs encoding.Attributes
	tail  graph.Node
}

// New returns an empty plan graph.
func New() *Graph {
	return &Graph{DirectedGraph: simple.NewDirectedGraph()}
}

// Append adds a labeled node at the end of the chain, linking it after
// the previously appended node, and returns its ID.
func (g *Graph) Append(label string) int64 {
	n := g.newNode()
	if err := n.SetAttribute(encoding.Attribute{Key: "label", Value: label}); err != nil {
		panic(err)
	}
	g.DirectedGraph.AddNode(n)
	if g.tail != nil {
		g.SetEdge(simple.Edge{F: g.tail, T: n})
	}
	g.tail = n
	return n.ID()
}

func (g *Graph) newNode() *Node {
	return &Node{Node: g.DirectedGraph.NewNode()}
}

// Attributers implements the DOT encoding hooks.
func (g *Graph) Attributers() (encoding.Attributer, encoding.Attributer, encoding.Attributer) {
	return &Graph{}, &Node{}, &edge{}
}

func (g *Graph) Attributes() []encoding.Attribute {
	return g.attrs.Attributes()
}

func (g *Graph) SetAttribute(attr encoding.Attribute) error {
	return g.attrs.SetAttribute(attr)
}

// NewEdge returns an attribute-carrying edge between two nodes.
func (g *Graph) NewEdge(from, to graph.Node) graph.Edge {
	return &edge{Edge: g.DirectedGraph.NewEdge(from, to)}
}

// Dot renders the plan in Graphviz DOT format.
func (g *Graph) Dot() (string, error) {
	data, err := dot.Marshal(g, "", "", "")
	if err != nil {
		return "", fmt.Errorf("failed to export plan to DOT format: %w", err)
	}
	return string(data), nil
}

// Node is a graph node that carries DOT attributes.
type Node struct {
	graph.Node
	attrs encoding.Attributes
}

func (n *Node) Attributes() []encoding.Attribute {
	return n.attrs.Attributes()
}

func (n *Node) SetAttribute(attr encoding.Attribute) error {
	return n.attrs.SetAttribute(attr)
}

type edge struct {
	graph.Edge
	attrs encoding.Attributes
}

func (e *edge) Attributes() []encoding.Attribute {
	return e.attrs.Attributes()
}

func (e *edge) SetAttribute(attr encoding.Attribute) error {
	return e.attrs.SetAttribute(attr)
}
