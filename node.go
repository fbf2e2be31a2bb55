package vox

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind tells which scene node variant a Node is.
type NodeKind int

const (
	KindTransform NodeKind = iota
	KindGroup
	KindShape
)

func (k NodeKind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindGroup:
		return "group"
	case KindShape:
		return "shape"
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// Transform is the placement carried by a transform node.
type Transform struct {
	Layer       int32
	Rotation    *Rotation
	Translation *[3]int32
}

// NodeAttributes are the attributes shared by every node kind.
type NodeAttributes struct {
	Name   *string
	Hidden *bool
}

// Node is an element of the scene tree. A node owns its children.
type Node struct {
	Kind       NodeKind
	Transform  Transform // KindTransform only
	ModelID    int       // KindShape only
	Attributes NodeAttributes
	Children   []*Node
}

// NewTransformNode returns a transform node without a child.
func NewTransformNode(t Transform, attrs NodeAttributes) *Node {
	return &Node{Kind: KindTransform, Transform: t, Attributes: attrs}
}

// NewGroupNode returns an empty group node.
func NewGroupNode(attrs NodeAttributes) *Node {
	return &Node{Kind: KindGroup, Attributes: attrs}
}

// NewShapeNode returns a shape node placing the model with the given id.
func NewShapeNode(modelID int, attrs NodeAttributes) *Node {
	return &Node{Kind: KindShape, ModelID: modelID, Attributes: attrs}
}

// AddChild appends child. Shapes take no children and transforms take one.
func (n *Node) AddChild(child *Node) error {
	switch {
	case child == nil:
		return fmt.Errorf("%w: nil child", ErrInvalidArgument)
	case n.Kind == KindShape:
		return fmt.Errorf("%w: shape nodes are leaves", ErrInvalidArgument)
	case n.Kind == KindTransform && len(n.Children) > 0:
		return fmt.Errorf("%w: transform node already has a child", ErrInvalidArgument)
	}
	n.Children = append(n.Children, child)
	return nil
}

// NumChildren returns the number of descendants of n.
func (n *Node) NumChildren() int {
	count := 0
	for _, c := range n.Children {
		count += 1 + c.NumChildren()
	}
	return count
}

// HasChildShape reports whether n has exactly one child and it is a shape.
func (n *Node) HasChildShape() bool {
	return len(n.Children) == 1 && n.Children[0].Kind == KindShape
}

// Walk calls fn on n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Size returns the content size in bytes of the chunk n encodes to.
func (n *Node) Size() int {
	switch n.Kind {
	case KindTransform:
		return 20 + n.Attributes.dict().Size() + n.Transform.frame().Size()
	case KindGroup:
		return 8 + n.Attributes.dict().Size() + 4*len(n.Children)
	default:
		return 12 + n.Attributes.dict().Size() + Dict{}.Size()
	}
}

// TotalSize returns the size in bytes of the chunks of n and all of its
// descendants, headers included.
func (n *Node) TotalSize() int {
	size := chunkHeaderSize + n.Size()
	for _, c := range n.Children {
		size += c.TotalSize()
	}
	return size
}

// placement returns the model id and transform of a transform node whose
// only child is a shape.
func (n *Node) placement() (modelID int, t Transform, ok bool) {
	if n.Kind != KindTransform || !n.HasChildShape() {
		return 0, Transform{}, false
	}
	return n.Children[0].ModelID, n.Transform, true
}

/////////////////////////////
//// Attribute encodings ////
/////////////////////////////

func (a NodeAttributes) dict() Dict {
	var d Dict
	if a.Name != nil {
		d.Set(keyName, *a.Name)
	}
	if a.Hidden != nil {
		hidden := "0"
		if *a.Hidden {
			hidden = "1"
		}
		d.Set(keyHidden, hidden)
	}
	return d
}

func attributesFromDict(d Dict) NodeAttributes {
	var a NodeAttributes
	if name, ok := d.Get(keyName); ok {
		a.Name = &name
	}
	if hidden, ok := d.Get(keyHidden); ok {
		h := hidden == "1"
		a.Hidden = &h
	}
	return a
}

// frame encodes the rotation and translation as a frame dictionary.
func (t Transform) frame() Dict {
	var d Dict
	if t.Rotation != nil {
		d.Set(keyRotation, strconv.Itoa(int(*t.Rotation)))
	}
	if t.Translation != nil {
		tr := t.Translation
		d.Set(keyTranslation, fmt.Sprintf("%d %d %d", tr[0], tr[1], tr[2]))
	}
	return d
}

func transformFromFrame(layer int32, d Dict) (Transform, error) {
	t := Transform{Layer: layer}
	if s, ok := d.Get(keyRotation); ok {
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return Transform{}, fmt.Errorf("%w: rotation %q", ErrCorrupt, s)
		}
		r := Rotation(v)
		t.Rotation = &r
	}
	if s, ok := d.Get(keyTranslation); ok {
		fields := strings.Fields(s)
		if len(fields) != 3 {
			return Transform{}, fmt.Errorf("%w: translation %q", ErrCorrupt, s)
		}
		var tr [3]int32
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return Transform{}, fmt.Errorf("%w: translation %q", ErrCorrupt, s)
			}
			tr[i] = int32(v)
		}
		t.Translation = &tr
	}
	return t, nil
}

/////////////////////////
//// Tree <-> models ////
/////////////////////////

// modelNode returns the transform and shape pair placing m.
func modelNode(m *Model) *Node {
	var attrs NodeAttributes
	if m.Name != "" {
		name := m.Name
		attrs.Name = &name
	}
	t := Transform{Layer: m.Layer}
	if m.Rotation != nil {
		r := *m.Rotation
		t.Rotation = &r
	}
	if m.Translation != nil {
		tr := *m.Translation
		t.Translation = &tr
	}
	n := NewTransformNode(t, attrs)
	n.Children = []*Node{NewShapeNode(m.id, NodeAttributes{})}
	return n
}

// BuildNodes replaces the scene tree with one built from the model list: a
// root transform holding a single group, which holds one transform and
// shape pair per model in list order.
func (f *File) BuildNodes() {
	group := NewGroupNode(NodeAttributes{})
	for _, m := range f.Models {
		group.Children = append(group.Children, modelNode(m))
	}
	root := NewTransformNode(Transform{Layer: -1}, NodeAttributes{})
	root.Children = []*Node{group}
	f.Root = root
}

// ApplyNodeData copies the placement of every transform whose only child is
// a shape onto the model with the shape's id. Other nodes are skipped, as
// are models no shape refers to.
func (f *File) ApplyNodeData() {
	if f.Root == nil {
		return
	}
	f.Root.Walk(func(n *Node) {
		id, t, ok := n.placement()
		if !ok {
			return
		}
		m, ok := f.Model(id)
		if !ok {
			return
		}
		m.Layer = t.Layer
		m.Rotation = nil
		if t.Rotation != nil {
			r := *t.Rotation
			m.Rotation = &r
		}
		m.Translation = nil
		if t.Translation != nil {
			tr := *t.Translation
			m.Translation = &tr
		}
		if n.Attributes.Name != nil {
			m.Name = *n.Attributes.Name
		}
	})
}
