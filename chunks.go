package vox

import (
	"fmt"
	"io"
)

// readChunkAt reads the chunk at offset, checks its tag and hands a reader
// limited to its content to fn. The content must be consumed exactly.
func readChunkAt(data []byte, offset int, tag string, fn func(r *binaryReader) error) error {
	r, err := newBinaryReaderAt(data, offset)
	if err != nil {
		return err
	}
	contentSize, _, err := readChunkHeader(r, tag)
	if err != nil {
		return err
	}
	content, err := r.readBytes(int(contentSize))
	if err != nil {
		return err
	}
	cr := newBinaryReader(content)
	if err := fn(cr); err != nil {
		return fmt.Errorf("reading %s chunk at offset %d: %w", tag, offset, err)
	}
	if cr.Len() != 0 {
		return fmt.Errorf("%w: %s chunk at offset %d has %d unread bytes", ErrCorrupt, tag, offset, cr.Len())
	}
	return nil
}

// transformChunk is the payload of an nTRN chunk.
type transformChunk struct {
	NodeID     int32
	Attributes Dict
	ChildID    int32
	ReservedID int32
	LayerID    int32
	Frames     []Dict
}

func readTransformChunk(r *binaryReader) (*transformChunk, error) {
	c := &transformChunk{}
	var err error
	if c.NodeID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.Attributes, err = readDict(r); err != nil {
		return nil, err
	}
	if c.ChildID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.ReservedID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.LayerID, err = readInt32(r); err != nil {
		return nil, err
	}
	numFrames, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if numFrames < 0 || int(numFrames) > r.Len()/4 {
		return nil, fmt.Errorf("%w: %d frames", ErrCorrupt, numFrames)
	}
	c.Frames = make([]Dict, numFrames)
	for i := range c.Frames {
		if c.Frames[i], err = readDict(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *transformChunk) writeContent(w io.Writer) error {
	if err := writeInt32(w, c.NodeID); err != nil {
		return err
	}
	if err := c.Attributes.Write(w); err != nil {
		return err
	}
	for _, v := range []int32{c.ChildID, c.ReservedID, c.LayerID, int32(len(c.Frames))} {
		if err := writeInt32(w, v); err != nil {
			return err
		}
	}
	for _, f := range c.Frames {
		if err := f.Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (c *transformChunk) Size() int {
	size := 20 + c.Attributes.Size()
	for _, f := range c.Frames {
		size += f.Size()
	}
	return size
}

// groupChunk is the payload of an nGRP chunk.
type groupChunk struct {
	NodeID     int32
	Attributes Dict
	ChildIDs   []int32
}

func readGroupChunk(r *binaryReader) (*groupChunk, error) {
	c := &groupChunk{}
	var err error
	if c.NodeID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.Attributes, err = readDict(r); err != nil {
		return nil, err
	}
	count, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > r.Len()/4 {
		return nil, fmt.Errorf("%w: %d children", ErrCorrupt, count)
	}
	c.ChildIDs = make([]int32, count)
	for i := range c.ChildIDs {
		if c.ChildIDs[i], err = readInt32(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *groupChunk) writeContent(w io.Writer) error {
	if err := writeInt32(w, c.NodeID); err != nil {
		return err
	}
	if err := c.Attributes.Write(w); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(c.ChildIDs))); err != nil {
		return err
	}
	for _, id := range c.ChildIDs {
		if err := writeInt32(w, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *groupChunk) Size() int {
	return 8 + c.Attributes.Size() + 4*len(c.ChildIDs)
}

type shapeModel struct {
	ModelID    int32
	Attributes Dict
}

// shapeChunk is the payload of an nSHP chunk. A shape placing more than one
// model is read but rejected when the scene is assembled.
type shapeChunk struct {
	NodeID     int32
	Attributes Dict
	Models     []shapeModel
}

func readShapeChunk(r *binaryReader) (*shapeChunk, error) {
	c := &shapeChunk{}
	var err error
	if c.NodeID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.Attributes, err = readDict(r); err != nil {
		return nil, err
	}
	count, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if count < 1 || int(count) > r.Len()/8 {
		return nil, fmt.Errorf("%w: shape node %d has %d models", ErrCorrupt, c.NodeID, count)
	}
	c.Models = make([]shapeModel, count)
	for i := range c.Models {
		if c.Models[i].ModelID, err = readInt32(r); err != nil {
			return nil, err
		}
		if c.Models[i].Attributes, err = readDict(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *shapeChunk) writeContent(w io.Writer) error {
	if err := writeInt32(w, c.NodeID); err != nil {
		return err
	}
	if err := c.Attributes.Write(w); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(c.Models))); err != nil {
		return err
	}
	for _, m := range c.Models {
		if err := writeInt32(w, m.ModelID); err != nil {
			return err
		}
		if err := m.Attributes.Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (c *shapeChunk) Size() int {
	size := 8 + c.Attributes.Size()
	for _, m := range c.Models {
		size += 4 + m.Attributes.Size()
	}
	return size
}

// layerChunk is the payload of a LAYR chunk.
type layerChunk struct {
	LayerID    int32
	Attributes Dict
	ReservedID int32
}

func readLayerChunk(r *binaryReader) (*layerChunk, error) {
	c := &layerChunk{}
	var err error
	if c.LayerID, err = readInt32(r); err != nil {
		return nil, err
	}
	if c.Attributes, err = readDict(r); err != nil {
		return nil, err
	}
	if c.ReservedID, err = readInt32(r); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *layerChunk) writeContent(w io.Writer) error {
	if err := writeInt32(w, c.LayerID); err != nil {
		return err
	}
	if err := c.Attributes.Write(w); err != nil {
		return err
	}
	return writeInt32(w, c.ReservedID)
}

func (c *layerChunk) Size() int {
	return 8 + c.Attributes.Size()
}

func readMaterialChunk(r *binaryReader) (Material, error) {
	id, err := readInt32(r)
	if err != nil {
		return Material{}, err
	}
	props, err := readDict(r)
	if err != nil {
		return Material{}, err
	}
	return Material{ID: id, Properties: props}, nil
}

func (m Material) writeContent(w io.Writer) error {
	if err := writeInt32(w, m.ID); err != nil {
		return err
	}
	return m.Properties.Write(w)
}

// Size returns the MATL content size in bytes.
func (m Material) Size() int {
	return 4 + m.Properties.Size()
}
