package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var errUnknownNode = errors.New("unknown scene node")

// NodeID indexes a node in a Graph. IDs are stable for the life of the graph.
type NodeID int

// InvalidNode is returned where no node exists.
const InvalidNode NodeID = -1

type node struct {
	name     string
	parent   NodeID
	children []NodeID
	local    mgl32.Mat4
}

// graph is the implementation of the Graph interface.
type graph struct {
	mu    sync.RWMutex
	nodes []node
	names map[string]NodeID
}

// Graph is an arena of transform nodes. Nodes are addressed by index, each node owns the list of
// its children, and the root is always node 0 with an identity transform. Nodes are never removed.
type Graph interface {
	// Root returns the root node.
	//
	// Returns:
	//   - NodeID: the root ID
	Root() NodeID

	// Add appends a child node.
	//
	// Parameters:
	//   - parent: the parent node
	//   - name: a lookup name, which may be empty; a repeated name shadows the earlier node in Find
	//   - local: the node transform relative to its parent
	//
	// Returns:
	//   - NodeID: the new node
	//   - error: error if parent does not exist
	Add(parent NodeID, name string, local mgl32.Mat4) (NodeID, error)

	// SetLocal replaces a node's transform relative to its parent.
	//
	// Parameters:
	//   - id: the node
	//   - local: the new transform
	//
	// Returns:
	//   - error: error if the node does not exist
	SetLocal(id NodeID, local mgl32.Mat4) error

	// Local returns a node's transform relative to its parent, or identity for an unknown node.
	//
	// Parameters:
	//   - id: the node
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	Local(id NodeID) mgl32.Mat4

	// World returns the product of every transform from the root down to the node.
	//
	// Parameters:
	//   - id: the node
	//
	// Returns:
	//   - mgl32.Mat4: the world transform, or identity for an unknown node
	World(id NodeID) mgl32.Mat4

	// Parent returns a node's parent, or InvalidNode for the root and unknown nodes.
	Parent(id NodeID) NodeID

	// Children returns a copy of a node's child list in insertion order.
	Children(id NodeID) []NodeID

	// Name returns a node's name.
	Name(id NodeID) string

	// Find looks a node up by name.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - NodeID: the node
	//   - bool: false if no node has the name
	Find(name string) (NodeID, bool)

	// Len returns the number of nodes, including the root.
	Len() int
}

var _ Graph = &graph{}

// NewGraph creates a Graph holding only the root node.
//
// Returns:
//   - Graph: the new graph
func NewGraph() Graph {
	return &graph{
		nodes: []node{{name: "root", parent: InvalidNode, local: mgl32.Ident4()}},
		names: map[string]NodeID{"root": 0},
	}
}

func (g *graph) Root() NodeID {
	return 0
}

func (g *graph) Add(parent NodeID, name string, local mgl32.Mat4) (NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(parent) {
		return InvalidNode, fmt.Errorf("%w: parent %d", errUnknownNode, parent)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{name: name, parent: parent, local: local})
	g.nodes[parent].children = append(g.nodes[parent].children, id)
	if name != "" {
		g.names[name] = id
	}
	return id, nil
}

func (g *graph) SetLocal(id NodeID, local mgl32.Mat4) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.valid(id) {
		return fmt.Errorf("%w: %d", errUnknownNode, id)
	}
	g.nodes[id].local = local
	return nil
}

func (g *graph) Local(id NodeID) mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return mgl32.Ident4()
	}
	return g.nodes[id].local
}

func (g *graph) World(id NodeID) mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	world := mgl32.Ident4()
	for cur := id; g.valid(cur); cur = g.nodes[cur].parent {
		world = g.nodes[cur].local.Mul4(world)
	}
	return world
}

func (g *graph) Parent(id NodeID) NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return InvalidNode
	}
	return g.nodes[id].parent
}

func (g *graph) Children(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return nil
	}
	return append([]NodeID(nil), g.nodes[id].children...)
}

func (g *graph) Name(id NodeID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.valid(id) {
		return ""
	}
	return g.nodes[id].name
}

func (g *graph) Find(name string) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.names[name]
	return id, ok
}

func (g *graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
