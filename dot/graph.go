// ABOUTME: Minimal Graphviz digraph model used to export the decision map.
// ABOUTME: Nodes and edges keep insertion order so output follows collection order.
package dot

// Graph is a directed graph with graph-wide attributes and per-kind defaults.
type Graph struct {
	Name         string
	Attrs        map[string]string
	NodeDefaults map[string]string
	EdgeDefaults map[string]string
	Nodes        []*Node
	Edges        []*Edge
}

// Node is a vertex with attributes.
type Node struct {
	ID    string
	Attrs map[string]string
}

// Edge is a directed edge with attributes.
type Edge struct {
	From  string
	To    string
	Attrs map[string]string
}

// NewGraph returns an empty graph with initialized attribute maps.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:         name,
		Attrs:        map[string]string{},
		NodeDefaults: map[string]string{},
		EdgeDefaults: map[string]string{},
	}
}

// AddNode appends n, replacing any earlier node with the same ID in place.
func (g *Graph) AddNode(n *Node) {
	for i, existing := range g.Nodes {
		if existing.ID == n.ID {
			g.Nodes[i] = n
			return
		}
	}
	g.Nodes = append(g.Nodes, n)
}

func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
}

// Node returns the node with id, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
