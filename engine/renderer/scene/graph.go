package scene

import (
	"fmt"
	"strings"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
)

// NodeHandle indexes a node inside its SceneGraph's arena. Handles are
// only meaningful for the graph that allocated them.
type NodeHandle int32

// InvalidNode is the zero-value-adjacent sentinel for "no node".
const InvalidNode NodeHandle = -1

// Leaf is content hung off a graph node: a mesh instance, a light,
// anything the renderer enumerates by walking the graph.
type Leaf interface {
	LeafName() string
}

type graphNode struct {
	name     string
	parent   NodeHandle
	children []NodeHandle
	local    math.Mat4
	world    math.Mat4
	leaf     Leaf
}

// SceneGraph is an arena-backed transform hierarchy. Nodes never move
// once allocated, so handles stay valid for the graph's lifetime.
// World transforms and leaf enumeration are only valid after Refresh.
type SceneGraph struct {
	nodes      []graphNode
	root       NodeHandle
	refreshed  bool
	frameIndex uint32
}

func NewSceneGraph() *SceneGraph {
	return &SceneGraph{root: InvalidNode}
}

// AllocateNode creates a detached node with an identity local transform.
func (g *SceneGraph) AllocateNode(name string) NodeHandle {
	g.nodes = append(g.nodes, graphNode{
		name:   name,
		parent: InvalidNode,
		local:  math.NewMat4Identity(),
		world:  math.NewMat4Identity(),
	})
	g.refreshed = false
	return NodeHandle(len(g.nodes) - 1)
}

func (g *SceneGraph) valid(h NodeHandle) bool {
	return h >= 0 && int(h) < len(g.nodes)
}

// SetRootNode makes the given node the traversal root. The root must
// not have a parent.
func (g *SceneGraph) SetRootNode(h NodeHandle) error {
	if !g.valid(h) {
		return fmt.Errorf("set root: handle %d out of range", h)
	}
	if g.nodes[h].parent != InvalidNode {
		return fmt.Errorf("set root: node '%s' already has a parent", g.nodes[h].name)
	}
	g.root = h
	g.refreshed = false
	return nil
}

// RootNode returns the current root, or InvalidNode if none is set.
func (g *SceneGraph) RootNode() NodeHandle { return g.root }

// Attach parents child under parent. Children keep attachment order,
// which fixes the traversal order for the whole lifetime of the graph.
func (g *SceneGraph) Attach(parent, child NodeHandle) error {
	if !g.valid(parent) || !g.valid(child) {
		return fmt.Errorf("attach: handle out of range (parent=%d child=%d)", parent, child)
	}
	if parent == child {
		return fmt.Errorf("attach: node '%s' cannot parent itself", g.nodes[parent].name)
	}
	if g.nodes[child].parent != InvalidNode {
		return fmt.Errorf("attach: node '%s' already has a parent", g.nodes[child].name)
	}
	for a := parent; a != InvalidNode; a = g.nodes[a].parent {
		if a == child {
			return fmt.Errorf("attach: node '%s' is an ancestor of '%s'",
				g.nodes[child].name, g.nodes[parent].name)
		}
	}
	g.nodes[child].parent = parent
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	g.refreshed = false
	return nil
}

// SetLeaf hangs content on a node, replacing any previous leaf.
func (g *SceneGraph) SetLeaf(h NodeHandle, leaf Leaf) error {
	if !g.valid(h) {
		return fmt.Errorf("set leaf: handle %d out of range", h)
	}
	g.nodes[h].leaf = leaf
	g.refreshed = false
	return nil
}

// AttachLeafNode allocates a node carrying leaf and parents it in one
// step. The node is named after the leaf.
func (g *SceneGraph) AttachLeafNode(parent NodeHandle, leaf Leaf) (NodeHandle, error) {
	h := g.AllocateNode(leaf.LeafName())
	g.nodes[h].leaf = leaf
	if err := g.Attach(parent, h); err != nil {
		return InvalidNode, err
	}
	return h, nil
}

// SetLocalTransform replaces a node's local transform. World transforms
// go stale until the next Refresh.
func (g *SceneGraph) SetLocalTransform(h NodeHandle, local math.Mat4) error {
	if !g.valid(h) {
		return fmt.Errorf("set local transform: handle %d out of range", h)
	}
	g.nodes[h].local = local
	g.refreshed = false
	return nil
}

func (g *SceneGraph) LocalTransform(h NodeHandle) (math.Mat4, error) {
	if !g.valid(h) {
		return math.NewMat4Identity(), fmt.Errorf("local transform: handle %d out of range", h)
	}
	return g.nodes[h].local, nil
}

// WorldTransform returns the node's cached world transform. Stale or
// never-computed caches are an error, not a silent identity.
func (g *SceneGraph) WorldTransform(h NodeHandle) (math.Mat4, error) {
	if !g.valid(h) {
		return math.NewMat4Identity(), fmt.Errorf("world transform: handle %d out of range", h)
	}
	if !g.refreshed {
		return math.NewMat4Identity(), fmt.Errorf("world transform of '%s' read before refresh: %w",
			g.nodes[h].name, core.ErrInvalidCommandState)
	}
	return g.nodes[h].world, nil
}

// Refresh recomputes every world transform reachable from the root and
// rolls mesh-instance motion transforms forward. frameIndex
// disambiguates repeated refreshes within one frame.
func (g *SceneGraph) Refresh(frameIndex uint32) {
	if g.root == InvalidNode {
		core.LogWarn("scene graph refresh with no root node")
		return
	}
	g.frameIndex = frameIndex
	g.refreshNode(g.root, math.NewMat4Identity())
	g.refreshed = true
}

func (g *SceneGraph) refreshNode(h NodeHandle, parentWorld math.Mat4) {
	n := &g.nodes[h]
	n.world = n.local.Mul(parentWorld)
	if mi, ok := n.leaf.(*MeshInstance); ok {
		mi.refreshTransform(n.world, g.frameIndex)
	}
	for _, child := range n.children {
		g.refreshNode(child, n.world)
	}
}

// GetMeshInstances returns every mesh instance reachable from the root
// in traversal (attachment) order. Requires a prior Refresh.
func (g *SceneGraph) GetMeshInstances() ([]*MeshInstance, error) {
	if !g.refreshed {
		return nil, fmt.Errorf("mesh instance walk before refresh: %w", core.ErrInvalidCommandState)
	}
	var out []*MeshInstance
	g.walk(g.root, func(n *graphNode) {
		if mi, ok := n.leaf.(*MeshInstance); ok {
			out = append(out, mi)
		}
	})
	return out, nil
}

// GetLights returns every light reachable from the root in traversal
// order. Requires a prior Refresh.
func (g *SceneGraph) GetLights() ([]Light, error) {
	if !g.refreshed {
		return nil, fmt.Errorf("light walk before refresh: %w", core.ErrInvalidCommandState)
	}
	var out []Light
	g.walk(g.root, func(n *graphNode) {
		if l, ok := n.leaf.(Light); ok {
			out = append(out, l)
		}
	})
	return out, nil
}

func (g *SceneGraph) walk(h NodeHandle, visit func(*graphNode)) {
	if h == InvalidNode {
		return
	}
	n := &g.nodes[h]
	visit(n)
	for _, child := range n.children {
		g.walk(child, visit)
	}
}

// PrintSceneGraph renders the hierarchy as an indented listing, one
// node per line. Useful from a debugger or test failure message.
func (g *SceneGraph) PrintSceneGraph() string {
	var sb strings.Builder
	g.printNode(&sb, g.root, 0)
	return sb.String()
}

func (g *SceneGraph) printNode(sb *strings.Builder, h NodeHandle, depth int) {
	if h == InvalidNode {
		return
	}
	n := &g.nodes[h]
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.name)
	if n.leaf != nil {
		fmt.Fprintf(sb, " [%s]", n.leaf.LeafName())
	}
	sb.WriteByte('\n')
	for _, child := range n.children {
		g.printNode(sb, child, depth+1)
	}
}
