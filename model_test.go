package vox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, x, y, z uint16) *Model {
	t.Helper()
	m, err := NewModel(x, y, z)
	require.NoError(t, err)
	return m
}

func TestNewVoxel(t *testing.T) {
	v, err := NewVoxel(1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, Voxel{X: 1, Y: 2, Z: 3, Index: 4}, v)

	_, err = NewVoxel(1, 2, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewModelRejectsLargeSize(t *testing.T) {
	_, err := NewModel(257, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	m := newTestModel(t, 256, 256, 256)
	assert.Equal(t, -1, m.ID())
}

func TestAddVoxelBounds(t *testing.T) {
	m := newTestModel(t, 10, 10, 10)

	assert.ErrorIs(t, m.AddVoxelAt(10, 0, 0, 1), ErrOutOfBounds)
	assert.Zero(t, m.NumVoxels())

	require.NoError(t, m.AddVoxelAt(9, 0, 0, 1))
	assert.Equal(t, 1, m.NumVoxels())
	assert.True(t, m.IsVoxelAt(9, 0, 0))
	assert.False(t, m.IsVoxelAt(0, 0, 0))

	assert.ErrorIs(t, m.AddVoxel(Voxel{X: 1}), ErrInvalidArgument)
	assert.Equal(t, 1, m.NumVoxels())
}

func TestAddCube(t *testing.T) {
	m := newTestModel(t, 10, 10, 10)
	require.NoError(t, m.AddCube([3]uint8{0, 0, 0}, [3]uint8{5, 5, 5}, 1))
	assert.Equal(t, 125, m.NumVoxels())
	for _, v := range m.Voxels() {
		assert.Less(t, v.X, uint8(5))
		assert.Less(t, v.Y, uint8(5))
		assert.Less(t, v.Z, uint8(5))
	}

	// No partial fill when the box sticks out on one axis.
	assert.ErrorIs(t, m.AddCube([3]uint8{0, 0, 0}, [3]uint8{5, 11, 5}, 2), ErrOutOfBounds)
	assert.Equal(t, 125, m.NumVoxels())

	assert.ErrorIs(t, m.AddCube([3]uint8{3, 0, 0}, [3]uint8{2, 1, 1}, 2), ErrInvalidArgument)
	assert.ErrorIs(t, m.AddCube([3]uint8{0, 0, 0}, [3]uint8{1, 1, 1}, 0), ErrInvalidArgument)
	assert.Equal(t, 125, m.NumVoxels())
}

func TestAutoSize(t *testing.T) {
	m := newTestModel(t, 20, 20, 20)
	require.NoError(t, m.AddCube([3]uint8{2, 3, 4}, [3]uint8{6, 7, 9}, 1))
	require.NoError(t, m.AddVoxelAt(10, 3, 4, 2))

	m.AutoSize()
	x, y, z := m.Size()
	assert.Equal(t, [3]uint16{9, 4, 5}, [3]uint16{x, y, z})
	assert.True(t, m.IsVoxelAt(0, 0, 0))
	assert.True(t, m.IsVoxelAt(8, 0, 0))

	voxels := m.Voxels()
	m.AutoSize()
	x2, y2, z2 := m.Size()
	assert.Equal(t, [3]uint16{x, y, z}, [3]uint16{x2, y2, z2})
	assert.Equal(t, voxels, m.Voxels())
}

func TestAutoSizeEmpty(t *testing.T) {
	m := newTestModel(t, 20, 20, 20)
	m.AutoSize()
	x, y, z := m.Size()
	assert.Equal(t, [3]uint16{1, 1, 1}, [3]uint16{x, y, z})
}

func TestSetSizeCompacts(t *testing.T) {
	m := newTestModel(t, 10, 10, 10)
	require.NoError(t, m.AddVoxelAt(1, 1, 1, 1))
	require.NoError(t, m.AddVoxelAt(8, 1, 1, 1))

	assert.ErrorIs(t, m.SetSize(300, 1, 1), ErrInvalidArgument)
	assert.Equal(t, 2, m.NumVoxels())

	require.NoError(t, m.SetSize(5, 5, 5))
	assert.Equal(t, 1, m.NumVoxels())
	assert.True(t, m.IsVoxelAt(1, 1, 1))
}

func TestRetainAndChangeVoxels(t *testing.T) {
	m := newTestModel(t, 50, 10, 30)
	require.NoError(t, m.AddVoxelAt(1, 1, 1, 6))
	require.NoError(t, m.AddVoxelAt(1, 1, 2, 5))
	require.NoError(t, m.AddVoxelAt(1, 1, 3, 6))
	require.NoError(t, m.AddVoxelAt(1, 1, 4, 7))

	m.RetainVoxels(func(v Voxel) bool { return v.Index == 6 })
	assert.Equal(t, 2, m.NumVoxels())

	m.ChangeVoxels(func(v *Voxel) { v.Index = 3 })
	for _, v := range m.Voxels() {
		assert.Equal(t, uint8(3), v.Index)
	}

	// Voxels pushed out of the model are dropped.
	m.ChangeVoxels(func(v *Voxel) { v.Y += 9 })
	assert.Zero(t, m.NumVoxels())

	require.NoError(t, m.AddVoxelAt(1, 1, 1, 6))
	m.ClearVoxels()
	assert.Zero(t, m.NumVoxels())
}

func TestModelCodec(t *testing.T) {
	m := newTestModel(t, 256, 3, 7)
	require.NoError(t, m.AddVoxelAt(255, 2, 6, 9))
	require.NoError(t, m.AddVoxelAt(0, 0, 0, 1))

	var buf bytes.Buffer
	buf.WriteString("VOX \x96\x00\x00\x00")
	require.NoError(t, m.write(&buf))
	data := buf.Bytes()
	assert.Equal(t, fileHeaderSize+2*chunkHeaderSize+12+m.contentSize(), len(data))

	got, err := readModel(data, fileHeaderSize, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID())
	x, y, z := got.Size()
	assert.Equal(t, [3]uint16{256, 3, 7}, [3]uint16{x, y, z})
	assert.Equal(t, m.Voxels(), got.Voxels())
}

func TestReadModelBadVoxelCount(t *testing.T) {
	m := newTestModel(t, 4, 4, 4)
	require.NoError(t, m.AddVoxelAt(1, 1, 1, 1))

	var buf bytes.Buffer
	require.NoError(t, m.write(&buf))
	data := buf.Bytes()
	// voxel count lives right after the XYZI header
	data[24+chunkHeaderSize] = 2

	_, err := readModel(data, 0, 0)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReadModelInvalidVoxel(t *testing.T) {
	tests := []struct {
		name  string
		patch func(voxel []byte)
	}{
		{"index zero", func(voxel []byte) { voxel[3] = 0 }},
		{"x outside", func(voxel []byte) { voxel[0] = 200 }},
		{"z on the edge", func(voxel []byte) { voxel[2] = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, 4, 4, 4)
			require.NoError(t, m.AddVoxelAt(1, 1, 1, 1))

			var buf bytes.Buffer
			require.NoError(t, m.write(&buf))
			data := buf.Bytes()
			// SIZE chunk, XYZI header, voxel count
			tt.patch(data[24+chunkHeaderSize+4:])

			got, err := readModel(data, 0, 0)
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.Nil(t, got)
		})
	}
}

func TestVoxelsReturnsCopy(t *testing.T) {
	m := newTestModel(t, 10, 10, 10)
	require.NoError(t, m.AddVoxelAt(1, 2, 3, 4))

	voxels := m.Voxels()
	voxels[0].Index = 0

	assert.Equal(t, []Voxel{{X: 1, Y: 2, Z: 3, Index: 4}}, m.Voxels())
}

func TestWriteRejectsInvalidVoxel(t *testing.T) {
	tests := []struct {
		name  string
		voxel Voxel
	}{
		{"index zero", Voxel{X: 1, Y: 1, Z: 1}},
		{"outside", Voxel{X: 50, Index: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, 10, 10, 10)
			m.voxels = append(m.voxels, tt.voxel)

			var buf bytes.Buffer
			assert.ErrorIs(t, m.write(&buf), ErrInvalidArgument)
			assert.Zero(t, buf.Len())
		})
	}
}
