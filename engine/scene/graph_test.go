package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphWorldComposesParents(t *testing.T) {
	g := NewGraph()
	a, err := g.Add(g.Root(), "a", mgl32.Translate3D(1, 0, 0))
	require.NoError(t, err)
	b, err := g.Add(a, "b", mgl32.Scale3D(2, 2, 2))
	require.NoError(t, err)
	c, err := g.Add(b, "c", mgl32.Translate3D(0, 1, 0))
	require.NoError(t, err)

	p := g.World(c).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqual(mgl32.Vec3{1, 2, 0}), "got %v", p)

	require.NoError(t, g.SetLocal(a, mgl32.Translate3D(0, 0, 3)))
	p = g.World(c).Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqual(mgl32.Vec3{0, 2, 3}), "got %v", p)
}

func TestGraphChildrenAndLookup(t *testing.T) {
	g := NewGraph()
	a, _ := g.Add(g.Root(), "a", mgl32.Ident4())
	b, _ := g.Add(g.Root(), "b", mgl32.Ident4())
	c, _ := g.Add(a, "", mgl32.Ident4())

	assert.Equal(t, []NodeID{a, b}, g.Children(g.Root()))
	assert.Equal(t, []NodeID{c}, g.Children(a))
	assert.Equal(t, a, g.Parent(c))
	assert.Equal(t, InvalidNode, g.Parent(g.Root()))
	assert.Equal(t, 4, g.Len())

	id, ok := g.Find("b")
	assert.True(t, ok)
	assert.Equal(t, b, id)
	_, ok = g.Find("missing")
	assert.False(t, ok)
	assert.Equal(t, "a", g.Name(a))

	// Returned child lists are copies.
	kids := g.Children(g.Root())
	kids[0] = 99
	assert.Equal(t, a, g.Children(g.Root())[0])
}

func TestGraphRejectsUnknownNodes(t *testing.T) {
	g := NewGraph()
	_, err := g.Add(NodeID(7), "x", mgl32.Ident4())
	assert.ErrorIs(t, err, errUnknownNode)
	assert.ErrorIs(t, g.SetLocal(InvalidNode, mgl32.Ident4()), errUnknownNode)
	assert.Equal(t, mgl32.Ident4(), g.World(NodeID(42)))
	assert.Nil(t, g.Children(NodeID(42)))
}
