package vox

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteFile writes f to filename.
func (f *File) WriteFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := f.Write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// Write encodes f. The scene tree is rebuilt from the model list first, so
// the written placement always matches the models.
func (f *File) Write(w io.Writer) error {
	f.BuildNodes()

	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	version := f.Version
	if version == 0 {
		version = Version
	}
	if err := writeInt32(w, version); err != nil {
		return err
	}

	return writeChunk(w, TagMain, nil, func(w io.Writer) error {
		err := f.writeModels(w)
		if err != nil {
			return err
		}

		err = f.writePalette(w)
		if err != nil {
			return err
		}

		err = f.writeScene(w)
		if err != nil {
			return err
		}

		err = f.writeLayers(w)
		if err != nil {
			return err
		}

		return f.writeMaterials(w)
	})
}

func (f *File) writeModels(w io.Writer) error {
	for _, m := range f.Models {
		if err := m.write(w); err != nil {
			return fmt.Errorf("writing model %d: %w", m.id, err)
		}
	}
	return nil
}

func (f *File) writePalette(w io.Writer) error {
	return writeChunk(w, TagRGBA, func(w io.Writer) error {
		raw := make([]byte, 0, paletteSize*4)
		for _, c := range f.Palette {
			raw = append(raw, c.R, c.G, c.B, c.A)
		}
		_, err := w.Write(raw)
		return err
	}, nil)
}

func (f *File) writeLayers(w io.Writer) error {
	for _, l := range f.Layers {
		name, hidden := l.Name, l.Hidden
		attrs := NodeAttributes{Hidden: &hidden}
		if name != "" {
			attrs.Name = &name
		}
		c := &layerChunk{LayerID: l.ID, Attributes: attrs.dict(), ReservedID: -1}
		if err := writeChunk(w, TagLayer, c.writeContent, nil); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeMaterials(w io.Writer) error {
	for _, m := range f.Materials {
		if err := writeChunk(w, TagMaterial, m.writeContent, nil); err != nil {
			return err
		}
	}
	return nil
}

// sceneWriter numbers nodes in pre-order and emits them in that order.
type sceneWriter struct {
	w      io.Writer
	nextID int32
	// models maps model ids to the order their chunks were written in.
	models map[int]int32
}

func (f *File) writeScene(w io.Writer) error {
	if f.Root == nil {
		return nil
	}
	sw := &sceneWriter{w: w, models: make(map[int]int32, len(f.Models))}
	for i, m := range f.Models {
		sw.models[m.id] = int32(i)
	}
	return sw.writeNode(f.Root)
}

// writeNode writes n and then its subtree.
func (sw *sceneWriter) writeNode(n *Node) error {
	id := sw.nextID
	sw.nextID++

	// Child ids follow from the pre-order numbering, so they are known
	// before the children are written.
	childIDs := make([]int32, len(n.Children))
	next := sw.nextID
	for i, c := range n.Children {
		childIDs[i] = next
		next += int32(1 + c.NumChildren())
	}

	var err error
	switch n.Kind {
	case KindTransform:
		childID := int32(-1)
		if len(childIDs) > 0 {
			childID = childIDs[0]
		}
		c := &transformChunk{
			NodeID:     id,
			Attributes: n.Attributes.dict(),
			ChildID:    childID,
			ReservedID: -1,
			LayerID:    n.Transform.Layer,
			Frames:     []Dict{n.Transform.frame()},
		}
		err = writeChunk(sw.w, TagTransform, c.writeContent, nil)
	case KindGroup:
		c := &groupChunk{NodeID: id, Attributes: n.Attributes.dict(), ChildIDs: childIDs}
		err = writeChunk(sw.w, TagGroup, c.writeContent, nil)
	case KindShape:
		index, ok := sw.models[n.ModelID]
		if !ok {
			return fmt.Errorf("%w: shape node refers to missing model %d", ErrInvalidArgument, n.ModelID)
		}
		c := &shapeChunk{NodeID: id, Attributes: n.Attributes.dict(), Models: []shapeModel{{ModelID: index}}}
		err = writeChunk(sw.w, TagShape, c.writeContent, nil)
	default:
		err = fmt.Errorf("%w: unknown node kind %s", ErrInvalidArgument, n.Kind)
	}
	if err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := sw.writeNode(c); err != nil {
			return err
		}
	}
	return nil
}
