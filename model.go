package vox

import (
	"fmt"
	"io"
	"slices"
)

// Model is a single voxel grid together with its placement in the scene.
type Model struct {
	size   [3]uint16
	voxels []Voxel

	// Placement. Translation and Rotation are nil when unset.
	Translation *[3]int32
	Rotation    *Rotation
	Layer       int32

	Name string

	id int
}

// NewModel returns an empty model. It has no id until it is added to a
// File.
func NewModel(x, y, z uint16) (*Model, error) {
	if err := checkSize(x, y, z); err != nil {
		return nil, err
	}
	return &Model{size: [3]uint16{x, y, z}, id: -1}, nil
}

func checkSize(x, y, z uint16) error {
	if x > MaxSize || y > MaxSize || z > MaxSize {
		return fmt.Errorf("%w: size %dx%dx%d exceeds %d", ErrInvalidArgument, x, y, z, MaxSize)
	}
	return nil
}

// ID returns the id assigned by the owning File, or -1.
func (m *Model) ID() int {
	return m.id
}

// Size returns the extents of the model.
func (m *Model) Size() (x, y, z uint16) {
	return m.size[0], m.size[1], m.size[2]
}

// Voxels returns a copy of the voxels in insertion order.
func (m *Model) Voxels() []Voxel {
	return slices.Clone(m.voxels)
}

func (m *Model) contains(x, y, z uint8) bool {
	return uint16(x) < m.size[0] && uint16(y) < m.size[1] && uint16(z) < m.size[2]
}

// SetSize changes the extents and drops voxels that no longer fit.
func (m *Model) SetSize(x, y, z uint16) error {
	if err := checkSize(x, y, z); err != nil {
		return err
	}
	m.size = [3]uint16{x, y, z}
	m.Compact()
	return nil
}

// AddVoxel appends v, or returns ErrOutOfBounds leaving the model unchanged.
func (m *Model) AddVoxel(v Voxel) error {
	if v.Index == 0 {
		return fmt.Errorf("%w: voxel index must be between 1 and 255", ErrInvalidArgument)
	}
	if !m.contains(v.X, v.Y, v.Z) {
		return fmt.Errorf("%w: voxel (%d,%d,%d) outside model of size %v", ErrOutOfBounds, v.X, v.Y, v.Z, m.size)
	}
	m.voxels = append(m.voxels, v)
	return nil
}

// AddVoxelAt appends a voxel at the given position.
func (m *Model) AddVoxelAt(x, y, z, index uint8) error {
	v, err := NewVoxel(x, y, z, index)
	if err != nil {
		return err
	}
	return m.AddVoxel(v)
}

// AddCube fills the half-open box [start, end) with voxels of one index.
// Nothing is added unless the whole box fits.
func (m *Model) AddCube(start, end [3]uint8, index uint8) error {
	if index == 0 {
		return fmt.Errorf("%w: voxel index must be between 1 and 255", ErrInvalidArgument)
	}
	for axis := 0; axis < 3; axis++ {
		if start[axis] > end[axis] {
			return fmt.Errorf("%w: cube start %v after end %v", ErrInvalidArgument, start, end)
		}
		if uint16(end[axis]) > m.size[axis] {
			return fmt.Errorf("%w: cube end %v outside model of size %v", ErrOutOfBounds, end, m.size)
		}
	}
	for x := start[0]; x < end[0]; x++ {
		for y := start[1]; y < end[1]; y++ {
			for z := start[2]; z < end[2]; z++ {
				m.voxels = append(m.voxels, Voxel{X: x, Y: y, Z: z, Index: index})
			}
		}
	}
	return nil
}

// ClearVoxels removes every voxel.
func (m *Model) ClearVoxels() {
	m.voxels = m.voxels[:0]
}

// NumVoxels returns the voxel count.
func (m *Model) NumVoxels() int {
	return len(m.voxels)
}

// IsVoxelAt reports whether any voxel occupies the position.
func (m *Model) IsVoxelAt(x, y, z uint8) bool {
	for _, v := range m.voxels {
		if v.X == x && v.Y == y && v.Z == z {
			return true
		}
	}
	return false
}

// RetainVoxels keeps the voxels for which keep returns true.
func (m *Model) RetainVoxels(keep func(Voxel) bool) {
	kept := m.voxels[:0]
	for _, v := range m.voxels {
		if keep(v) {
			kept = append(kept, v)
		}
	}
	m.voxels = kept
}

// ChangeVoxels calls fn on every voxel. Voxels moved outside the model or
// set to index 0 are dropped afterwards.
func (m *Model) ChangeVoxels(fn func(*Voxel)) {
	for i := range m.voxels {
		fn(&m.voxels[i])
	}
	m.Compact()
}

// Compact drops voxels outside the current extents and empty voxels.
func (m *Model) Compact() {
	m.RetainVoxels(func(v Voxel) bool {
		return v.Index != 0 && m.contains(v.X, v.Y, v.Z)
	})
}

// AutoSize moves the voxels flush against the origin and shrinks the
// extents to the smallest box holding them. An empty model becomes 1x1x1.
func (m *Model) AutoSize() {
	if len(m.voxels) == 0 {
		m.size = [3]uint16{1, 1, 1}
		return
	}
	lo := [3]uint8{255, 255, 255}
	for _, v := range m.voxels {
		lo[0] = min(lo[0], v.X)
		lo[1] = min(lo[1], v.Y)
		lo[2] = min(lo[2], v.Z)
	}
	size := [3]uint16{1, 1, 1}
	for i := range m.voxels {
		v := &m.voxels[i]
		v.X -= lo[0]
		v.Y -= lo[1]
		v.Z -= lo[2]
		size[0] = max(size[0], uint16(v.X)+1)
		size[1] = max(size[1], uint16(v.Y)+1)
		size[2] = max(size[2], uint16(v.Z)+1)
	}
	m.size = size
}

// contentSize returns the XYZI content size in bytes.
func (m *Model) contentSize() int {
	return 4 + 4*len(m.voxels)
}

// checkVoxel reports why v cannot be stored in m, or nil.
func (m *Model) checkVoxel(v Voxel) error {
	if v.Index == 0 {
		return fmt.Errorf("voxel (%d,%d,%d) has index 0", v.X, v.Y, v.Z)
	}
	if !m.contains(v.X, v.Y, v.Z) {
		return fmt.Errorf("voxel (%d,%d,%d) outside model of size %v", v.X, v.Y, v.Z, m.size)
	}
	return nil
}

// write emits the SIZE and XYZI chunks of the model.
func (m *Model) write(w io.Writer) error {
	for i, v := range m.voxels {
		if err := m.checkVoxel(v); err != nil {
			return fmt.Errorf("%w: model %d voxel %d: %v", ErrInvalidArgument, m.id, i, err)
		}
	}
	var size [12]byte
	for axis, extent := range m.size {
		size[axis*4] = byte(extent)
		size[axis*4+1] = byte(extent >> 8)
	}
	if err := WriteChunkHeader(w, TagSize, uint32(len(size)), 0); err != nil {
		return err
	}
	if _, err := w.Write(size[:]); err != nil {
		return err
	}

	if err := WriteChunkHeader(w, TagXYZI, uint32(m.contentSize()), 0); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(m.voxels))); err != nil {
		return err
	}
	voxels := make([]byte, 0, 4*len(m.voxels))
	for _, v := range m.voxels {
		voxels = append(voxels, v.X, v.Y, v.Z, v.Index)
	}
	_, err := w.Write(voxels)
	return err
}

// readModel reads a SIZE chunk at offset and the XYZI chunk following it.
func readModel(data []byte, offset, id int) (*Model, error) {
	r, err := newBinaryReaderAt(data, offset)
	if err != nil {
		return nil, err
	}
	if _, _, err := readChunkHeader(r, TagSize); err != nil {
		return nil, err
	}
	m := &Model{id: id}
	for axis := range m.size {
		extent, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		if err := r.skip(2); err != nil {
			return nil, err
		}
		m.size[axis] = extent
	}
	if err := checkSize(m.size[0], m.size[1], m.size[2]); err != nil {
		return nil, fmt.Errorf("%w: model %d: %v", ErrCorrupt, id, err)
	}

	contentSize, _, err := readChunkHeader(r, TagXYZI)
	if err != nil {
		return nil, err
	}
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int64(count)*4+4 != int64(contentSize) {
		return nil, fmt.Errorf("%w: model %d: %d voxels in %d byte XYZI chunk", ErrCorrupt, id, count, contentSize)
	}
	raw, err := r.readBytes(int(count) * 4)
	if err != nil {
		return nil, err
	}
	m.voxels = make([]Voxel, count)
	for i := range m.voxels {
		v := Voxel{X: raw[4*i], Y: raw[4*i+1], Z: raw[4*i+2], Index: raw[4*i+3]}
		if err := m.checkVoxel(v); err != nil {
			return nil, fmt.Errorf("%w: model %d voxel %d: %v", ErrCorrupt, id, i, err)
		}
		m.voxels[i] = v
	}
	return m, nil
}
