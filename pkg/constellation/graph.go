// Package constellation builds the sparse similarity graph behind the
// dream constellation view: resonance hits become nodes, decayed pairwise
// similarity becomes edges, and the renderer owns layout.
package constellation

import "strings"

// Node is one journal entry admitted to the constellation.
type Node struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	RecencyWeight float64 `json:"recencyWeight"` // decay weight in [0,1], used for visual sizing
}

// Edge links two entries whose decayed similarity cleared the floor.
// Undirected; endpoints are stored in lexicographic order.
type Edge struct {
	ID     string  `json:"id"`
	A      string  `json:"endpointA"`
	B      string  `json:"endpointB"`
	Weight float64 `json:"weight"`
}

// Graph is an undirected similarity graph. Each logical edge is stored once
// in Edges and mirrored into both endpoints' adjacency maps.
type Graph struct {
	Nodes    map[string]*Node            `json:"nodes"`
	Edges    map[string]*Edge            `json:"edges"`
	Adjacent map[string]map[string]*Edge `json:"-"` // node -> neighbor -> edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]*Node),
		Edges:    make(map[string]*Edge),
		Adjacent: make(map[string]map[string]*Edge),
	}
}

// EnsureNode adds a node if it doesn't exist, returns the existing one otherwise.
func (g *Graph) EnsureNode(id, label string, recencyWeight float64) *Node {
	if existing, exists := g.Nodes[id]; exists {
		return existing
	}

	node := &Node{ID: id, Label: label, RecencyWeight: recencyWeight}
	g.Nodes[id] = node
	return node
}

// EdgeID builds the canonical identifier for an undirected pair.
func EdgeID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "--" + b
}

// AddEdge creates an undirected edge between two existing nodes. Re-adding
// a pair overwrites the previous weight.
func (g *Graph) AddEdge(a, b string, weight float64) *Edge {
	if b < a {
		a, b = b, a
	}
	edge := &Edge{ID: EdgeID(a, b), A: a, B: b, Weight: weight}
	g.Edges[edge.ID] = edge

	if g.Adjacent[a] == nil {
		g.Adjacent[a] = make(map[string]*Edge)
	}
	g.Adjacent[a][b] = edge

	if g.Adjacent[b] == nil {
		g.Adjacent[b] = make(map[string]*Edge)
	}
	g.Adjacent[b][a] = edge

	return edge
}

// Degree returns the number of edges touching a node.
func (g *Graph) Degree(id string) int {
	return len(g.Adjacent[id])
}

// Neighbors returns all nodes connected to the given node.
func (g *Graph) Neighbors(id string) []*Node {
	var result []*Node
	for neighborID := range g.Adjacent[id] {
		if node := g.Nodes[neighborID]; node != nil {
			result = append(result, node)
		}
	}
	return result
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// AverageDegree returns the mean node degree, 0 for an empty graph.
func (g *Graph) AverageDegree() float64 {
	if len(g.Nodes) == 0 {
		return 0.0
	}
	return 2.0 * float64(len(g.Edges)) / float64(len(g.Nodes))
}

// OrphanNodes returns nodes with no connections.
func (g *Graph) OrphanNodes() []*Node {
	var orphans []*Node
	for id, node := range g.Nodes {
		if len(g.Adjacent[id]) == 0 {
			orphans = append(orphans, node)
		}
	}
	return orphans
}

// labelFromText derives a short display label from entry text.
func labelFromText(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
