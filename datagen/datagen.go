// Package datagen generates deterministic graph datasets for tests and
// benchmarks.
package datagen

import (
	"fmt"

	"github.com/agebench/agebench/loader"
)

// DefaultNodeLabel is the label Nodes uses when none is given.
const DefaultNodeLabel = "TestNode"

// DefaultEdgeLabel is the label ChainEdges uses when none is given.
const DefaultEdgeLabel = "CONNECTS_TO"

// Nodes generates count deterministic nodes with logical ids node:0
// through node:count-1.
func Nodes(count int, label string) []loader.Node {
	if label == "" {
		label = DefaultNodeLabel
	}

	nodes := make([]loader.Node, count)
	for i := 0; i < count; i++ {
		nodes[i] = loader.Node{
			ID:    fmt.Sprintf("node:%d", i),
			Label: label,
			Properties: loader.Properties{
				"name":       fmt.Sprintf("Node %d", i),
				"index":      i,
				"created_at": "2024-01-01T00:00:00Z",
				"active":     i%2 == 0,
			},
		}
	}
	return nodes
}

// ChainEdges generates edges connecting consecutive nodes into a chain:
// node 0 -> node 1 -> node 2 -> ... For n nodes it returns n-1 edges.
func ChainEdges(nodes []loader.Node, label string) []loader.Edge {
	if label == "" {
		label = DefaultEdgeLabel
	}
	if len(nodes) < 2 {
		return nil
	}

	edges := make([]loader.Edge, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		edges[i] = loader.Edge{
			ID:      fmt.Sprintf("edge:%d", i),
			Label:   label,
			StartID: nodes[i].ID,
			EndID:   nodes[i+1].ID,
			Properties: loader.Properties{
				"weight":     i % 10,
				"created_at": "2024-01-01T00:00:00Z",
			},
		}
	}
	return edges
}

// Chain generates a complete chain dataset of nodeCount nodes and
// nodeCount-1 edges using the default labels.
func Chain(nodeCount int) ([]loader.Node, []loader.Edge) {
	nodes := Nodes(nodeCount, DefaultNodeLabel)
	edges := ChainEdges(nodes, DefaultEdgeLabel)
	return nodes, edges
}
