package vox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ReadFile reads and parses a .vox file.
func ReadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// Read parses a whole .vox file held in memory. Either the full container
// is returned or an error; there are no partial results.
func Read(data []byte) (*File, error) {
	reader := &voxReader{data: data, chunks: make(map[string][]int)}
	return reader.read()
}

// voxReader holds the state of a single parse.
type voxReader struct {
	data    []byte
	chunks  map[string][]int
	file    *File
	records map[int32]any
}

func (r *voxReader) read() (*File, error) {
	r.file = &File{Palette: DefaultPalette()}

	err := r.readMagic()
	if err != nil {
		return nil, err
	}

	err = r.readMain()
	if err != nil {
		return nil, err
	}

	err = r.readModels()
	if err != nil {
		return nil, err
	}

	err = r.readPalette()
	if err != nil {
		return nil, err
	}

	err = r.readSceneRecords()
	if err != nil {
		return nil, err
	}

	err = r.readLayers()
	if err != nil {
		return nil, err
	}

	err = r.readMaterials()
	if err != nil {
		return nil, err
	}

	err = r.buildScene()
	if err != nil {
		return nil, err
	}

	r.file.ApplyNodeData()
	return r.file, nil
}

///////////////////////////////
//// File Section Handlers ////
///////////////////////////////

func (r *voxReader) readMagic() error {
	if len(r.data) < fileHeaderSize {
		return fmt.Errorf("%w: %d byte file is shorter than its header", ErrCorrupt, len(r.data))
	}
	if string(r.data[:4]) != Magic {
		return fmt.Errorf("%w: invalid signature %q", ErrCorrupt, r.data[:4])
	}
	r.file.Version = int32(binary.LittleEndian.Uint32(r.data[4:8]))
	return nil
}

// readMain checks the MAIN chunk spans the rest of the file and indexes the
// chunks inside it.
func (r *voxReader) readMain() error {
	reader, err := newBinaryReaderAt(r.data, fileHeaderSize)
	if err != nil {
		return err
	}
	contentSize, childrenSize, err := readChunkHeader(reader, TagMain)
	if err != nil {
		return err
	}
	remaining := int64(len(r.data) - fileHeaderSize - chunkHeaderSize)
	if int64(contentSize)+int64(childrenSize) != remaining {
		return fmt.Errorf("%w: MAIN declares %d bytes, %d remain", ErrCorrupt, int64(contentSize)+int64(childrenSize), remaining)
	}

	return walkChunks(r.data, func(tag string, offset int) bool {
		r.chunks[tag] = append(r.chunks[tag], offset)
		return false
	})
}

// readModels reads every SIZE chunk and the XYZI chunk after it. Model ids
// follow file order.
func (r *voxReader) readModels() error {
	sizes := r.chunks[TagSize]
	if len(sizes) != len(r.chunks[TagXYZI]) {
		return fmt.Errorf("%w: %d SIZE chunks but %d XYZI chunks", ErrCorrupt, len(sizes), len(r.chunks[TagXYZI]))
	}
	for i, offset := range sizes {
		m, err := readModel(r.data, offset, i)
		if err != nil {
			return fmt.Errorf("reading model %d: %w", i, err)
		}
		r.file.Models = append(r.file.Models, m)
	}
	r.file.nextID = len(sizes)
	return nil
}

func (r *voxReader) readPalette() error {
	offset, err := FindChunk(r.data, TagRGBA, 1)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return readChunkAt(r.data, offset, TagRGBA, func(cr *binaryReader) error {
		raw, err := cr.readBytes(paletteSize * 4)
		if err != nil {
			return err
		}
		for i := range r.file.Palette {
			r.file.Palette[i] = Color{R: raw[4*i], G: raw[4*i+1], B: raw[4*i+2], A: raw[4*i+3]}
		}
		return nil
	})
}

// readSceneRecords reads every node chunk, keyed by node id.
func (r *voxReader) readSceneRecords() error {
	r.records = make(map[int32]any)
	add := func(id int32, rec any) error {
		if _, dup := r.records[id]; dup {
			return fmt.Errorf("%w: node %d appears twice", ErrCorrupt, id)
		}
		r.records[id] = rec
		return nil
	}

	for _, offset := range r.chunks[TagTransform] {
		err := readChunkAt(r.data, offset, TagTransform, func(cr *binaryReader) error {
			c, err := readTransformChunk(cr)
			if err != nil {
				return err
			}
			return add(c.NodeID, c)
		})
		if err != nil {
			return err
		}
	}
	for _, offset := range r.chunks[TagGroup] {
		err := readChunkAt(r.data, offset, TagGroup, func(cr *binaryReader) error {
			c, err := readGroupChunk(cr)
			if err != nil {
				return err
			}
			return add(c.NodeID, c)
		})
		if err != nil {
			return err
		}
	}
	for _, offset := range r.chunks[TagShape] {
		err := readChunkAt(r.data, offset, TagShape, func(cr *binaryReader) error {
			c, err := readShapeChunk(cr)
			if err != nil {
				return err
			}
			return add(c.NodeID, c)
		})
		if err != nil {
			return err
		}
	}

	for tag := range r.chunks {
		switch tag {
		case TagMain, TagPack, TagSize, TagXYZI, TagRGBA, TagTransform, TagGroup, TagShape, TagLayer, TagMaterial:
		default:
			slog.Debug("skipping unsupported chunks", "tag", tag, "count", len(r.chunks[tag]))
		}
	}
	return nil
}

func (r *voxReader) readLayers() error {
	for _, offset := range r.chunks[TagLayer] {
		err := readChunkAt(r.data, offset, TagLayer, func(cr *binaryReader) error {
			c, err := readLayerChunk(cr)
			if err != nil {
				return err
			}
			attrs := attributesFromDict(c.Attributes)
			layer := Layer{ID: c.LayerID}
			if attrs.Name != nil {
				layer.Name = *attrs.Name
			}
			if attrs.Hidden != nil {
				layer.Hidden = *attrs.Hidden
			}
			r.file.Layers = append(r.file.Layers, layer)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *voxReader) readMaterials() error {
	for _, offset := range r.chunks[TagMaterial] {
		err := readChunkAt(r.data, offset, TagMaterial, func(cr *binaryReader) error {
			m, err := readMaterialChunk(cr)
			if err != nil {
				return err
			}
			r.file.Materials = append(r.file.Materials, m)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// buildScene assembles the node records into a tree by recursive descent
// from node 0. Records not reachable from the root are ignored.
func (r *voxReader) buildScene() error {
	if len(r.records) == 0 {
		return nil
	}
	visited := make(map[int32]bool)
	shapes := make(map[int]bool)
	root, err := r.buildNode(0, visited, shapes)
	if err != nil {
		return fmt.Errorf("building scene graph: %w", err)
	}
	if root.Kind != KindTransform {
		return fmt.Errorf("%w: root node is a %s node", ErrCorrupt, root.Kind)
	}
	r.file.Root = root
	return nil
}

func (r *voxReader) buildNode(id int32, visited map[int32]bool, shapes map[int]bool) (*Node, error) {
	if visited[id] {
		return nil, fmt.Errorf("%w: node %d is reachable twice", ErrCorrupt, id)
	}
	visited[id] = true

	switch rec := r.records[id].(type) {
	case *transformChunk:
		var frame Dict
		if len(rec.Frames) > 0 {
			frame = rec.Frames[0]
		}
		t, err := transformFromFrame(rec.LayerID, frame)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		n := NewTransformNode(t, attributesFromDict(rec.Attributes))
		if rec.ChildID >= 0 {
			child, err := r.buildNode(rec.ChildID, visited, shapes)
			if err != nil {
				return nil, err
			}
			n.Children = []*Node{child}
		}
		return n, nil

	case *groupChunk:
		n := NewGroupNode(attributesFromDict(rec.Attributes))
		for _, childID := range rec.ChildIDs {
			child, err := r.buildNode(childID, visited, shapes)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil

	case *shapeChunk:
		if len(rec.Models) != 1 {
			return nil, fmt.Errorf("%w: shape node %d places %d models", ErrCorrupt, id, len(rec.Models))
		}
		modelID := int(rec.Models[0].ModelID)
		if modelID < 0 || modelID >= len(r.file.Models) {
			return nil, fmt.Errorf("%w: shape node %d refers to missing model %d", ErrCorrupt, id, modelID)
		}
		if shapes[modelID] {
			return nil, fmt.Errorf("%w: model %d is placed twice", ErrCorrupt, modelID)
		}
		shapes[modelID] = true
		return NewShapeNode(modelID, attributesFromDict(rec.Attributes)), nil

	default:
		return nil, fmt.Errorf("%w: node %d does not exist", ErrCorrupt, id)
	}
}
