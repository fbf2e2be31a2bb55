package vox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWithModels(t *testing.T, n int) *File {
	t.Helper()
	f := NewEmpty()
	for i := 0; i < n; i++ {
		m := newTestModel(t, 8, 8, 8)
		require.NoError(t, m.AddVoxelAt(uint8(i%8), 1, 2, uint8(i+1)))
		_, err := f.AddModel(m)
		require.NoError(t, err)
	}
	return f
}

func TestNodeAddChild(t *testing.T) {
	node := NewTransformNode(Transform{}, NodeAttributes{})
	require.NoError(t, node.AddChild(NewGroupNode(NodeAttributes{})))
	assert.Len(t, node.Children, 1)
	assert.ErrorIs(t, node.AddChild(NewGroupNode(NodeAttributes{})), ErrInvalidArgument)

	shape := NewShapeNode(0, NodeAttributes{})
	assert.ErrorIs(t, shape.AddChild(NewGroupNode(NodeAttributes{})), ErrInvalidArgument)

	group := NewGroupNode(NodeAttributes{})
	require.NoError(t, group.AddChild(shape))
	require.NoError(t, group.AddChild(NewShapeNode(1, NodeAttributes{})))
	assert.ErrorIs(t, group.AddChild(nil), ErrInvalidArgument)
	assert.Equal(t, 2, group.NumChildren())
}

func TestBuildNodes(t *testing.T) {
	f := fileWithModels(t, 3)
	tr := [3]int32{1, -2, 3}
	rot := RotationIdentity
	f.Models[1].Translation = &tr
	f.Models[1].Rotation = &rot
	f.Models[1].Layer = 2
	f.Models[1].Name = "middle"

	f.BuildNodes()
	root := f.Root
	require.NotNil(t, root)
	assert.Equal(t, KindTransform, root.Kind)
	require.Len(t, root.Children, 1)
	group := root.Children[0]
	assert.Equal(t, KindGroup, group.Kind)
	require.Len(t, group.Children, 3)
	assert.Equal(t, 7, root.NumChildren())

	for i, child := range group.Children {
		assert.Equal(t, KindTransform, child.Kind)
		require.True(t, child.HasChildShape())
		assert.Equal(t, f.Models[i].ID(), child.Children[0].ModelID)
	}

	plain := group.Children[0].Transform
	assert.Equal(t, int32(0), plain.Layer)
	assert.Nil(t, plain.Rotation)
	assert.Nil(t, plain.Translation)

	placed := group.Children[1]
	assert.Equal(t, int32(2), placed.Transform.Layer)
	assert.Equal(t, &tr, placed.Transform.Translation)
	assert.Equal(t, &rot, placed.Transform.Rotation)
	require.NotNil(t, placed.Attributes.Name)
	assert.Equal(t, "middle", *placed.Attributes.Name)

	// The tree holds copies, not the model's own placement.
	tr[0] = 100
	assert.Equal(t, int32(1), placed.Transform.Translation[0])

	var order []int
	root.Walk(func(n *Node) {
		if n.Kind == KindShape {
			order = append(order, n.ModelID)
		}
	})
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestApplyNodeData(t *testing.T) {
	f := fileWithModels(t, 4)
	tr := [3]int32{1, 2, 3}

	placed := NewTransformNode(Transform{Layer: 2, Translation: &tr}, NodeAttributes{})
	require.NoError(t, placed.AddChild(NewShapeNode(3, NodeAttributes{})))
	group := NewGroupNode(NodeAttributes{})
	require.NoError(t, group.AddChild(placed))
	root := NewTransformNode(Transform{Layer: -1}, NodeAttributes{})
	require.NoError(t, root.AddChild(group))
	f.Root = root

	f.ApplyNodeData()
	m, ok := f.Model(3)
	require.True(t, ok)
	require.NotNil(t, m.Translation)
	assert.Equal(t, [3]int32{1, 2, 3}, *m.Translation)
	assert.Equal(t, int32(2), m.Layer)

	for id := 0; id < 3; id++ {
		m, _ := f.Model(id)
		assert.Nil(t, m.Translation)
		assert.Zero(t, m.Layer)
	}
}

func TestApplyNodeDataSkipsShapelessTransforms(t *testing.T) {
	f := fileWithModels(t, 2)
	tr := [3]int32{7, 7, 7}

	withGroup := NewTransformNode(Transform{Layer: 3, Translation: &tr}, NodeAttributes{})
	require.NoError(t, withGroup.AddChild(NewGroupNode(NodeAttributes{})))
	empty := NewTransformNode(Transform{Layer: 4, Translation: &tr}, NodeAttributes{})

	group := NewGroupNode(NodeAttributes{})
	require.NoError(t, group.AddChild(withGroup))
	require.NoError(t, group.AddChild(empty))
	// A shape without an enclosing transform.
	require.NoError(t, group.AddChild(NewShapeNode(0, NodeAttributes{})))
	f.Root = group

	f.ApplyNodeData()
	for _, m := range f.Models {
		assert.Nil(t, m.Translation)
		assert.Nil(t, m.Rotation)
		assert.Zero(t, m.Layer)
	}
}

func TestApplyNodeDataIdempotent(t *testing.T) {
	f := fileWithModels(t, 3)
	tr := [3]int32{4, 5, 6}
	rot := Rotation(0x21)
	f.Models[2].Translation = &tr
	f.Models[2].Rotation = &rot
	f.Models[2].Layer = 1
	f.BuildNodes()

	type placement struct {
		Translation *[3]int32
		Rotation    *Rotation
		Layer       int32
		Name        string
	}
	snapshot := func() []placement {
		var out []placement
		for _, m := range f.Models {
			out = append(out, placement{m.Translation, m.Rotation, m.Layer, m.Name})
		}
		return out
	}

	f.ApplyNodeData()
	first := snapshot()
	f.ApplyNodeData()
	assert.Equal(t, first, snapshot())
	assert.Equal(t, [3]int32{4, 5, 6}, *f.Models[2].Translation)
	assert.Equal(t, Rotation(0x21), *f.Models[2].Rotation)
}

func TestNodeSizeMatchesWrittenBytes(t *testing.T) {
	f := fileWithModels(t, 3)
	tr := [3]int32{-10, 20, 300}
	rot := Rotation(0x18)
	f.Models[0].Translation = &tr
	f.Models[0].Rotation = &rot
	f.Models[0].Name = "first"
	f.BuildNodes()
	hidden := true
	f.Root.Children[0].Attributes.Hidden = &hidden

	var buf bytes.Buffer
	require.NoError(t, f.writeScene(&buf))
	assert.Equal(t, f.Root.TotalSize(), buf.Len())

	// Sizes follow later mutations.
	name := "a much longer group name"
	f.Root.Children[0].Attributes.Name = &name
	buf.Reset()
	require.NoError(t, f.writeScene(&buf))
	assert.Equal(t, f.Root.TotalSize(), buf.Len())
}

func TestWriteSceneMissingModel(t *testing.T) {
	f := fileWithModels(t, 1)
	f.BuildNodes()
	f.Root.Children[0].Children[0].Children[0].ModelID = 9

	var buf bytes.Buffer
	assert.ErrorIs(t, f.writeScene(&buf), ErrInvalidArgument)
}
