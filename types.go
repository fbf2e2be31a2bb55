package vox

import "fmt"

// File format constants
const (
	Magic   = "VOX "
	Version = 150

	// MaxSize is the largest extent a model may have on any axis.
	MaxSize = 256

	// chunkHeaderSize covers the tag and the two size fields.
	chunkHeaderSize = 12
	// fileHeaderSize covers the magic and the version.
	fileHeaderSize = 8
	paletteSize    = 256
)

// Chunk tags
const (
	TagMain      = "MAIN"
	TagPack      = "PACK"
	TagSize      = "SIZE"
	TagXYZI      = "XYZI"
	TagRGBA      = "RGBA"
	TagTransform = "nTRN"
	TagGroup     = "nGRP"
	TagShape     = "nSHP"
	TagLayer     = "LAYR"
	TagMaterial  = "MATL"
)

// Reserved dictionary keys
const (
	keyName        = "_name"
	keyHidden      = "_hidden"
	keyRotation    = "_r"
	keyTranslation = "_t"
)

// Voxel is a single colored cell of a model. Index refers to a palette
// entry and is never 0.
type Voxel struct {
	X, Y, Z uint8
	Index   uint8
}

// NewVoxel returns a voxel at the given position. Index 0 means empty and
// is rejected.
func NewVoxel(x, y, z, index uint8) (Voxel, error) {
	if index == 0 {
		return Voxel{}, fmt.Errorf("%w: voxel index must be between 1 and 255", ErrInvalidArgument)
	}
	return Voxel{X: x, Y: y, Z: z, Index: index}, nil
}

// Color is an RGBA palette entry.
type Color struct {
	R, G, B, A uint8
}

// Palette holds the 256 color slots of a file. Entries are addressed
// 1-based, as voxel indices are.
type Palette [paletteSize]Color

// DefaultPalette returns a palette with every slot opaque white.
func DefaultPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = Color{R: 255, G: 255, B: 255, A: 255}
	}
	return p
}

// Color returns the entry for a 1-based index.
func (p *Palette) Color(index int) (Color, error) {
	if index < 1 || index > paletteSize {
		return Color{}, fmt.Errorf("%w: palette index %d not in 1..%d", ErrInvalidArgument, index, paletteSize)
	}
	return p[index-1], nil
}

// SetColor replaces the entry for a 1-based index.
func (p *Palette) SetColor(index int, c Color) error {
	if index < 1 || index > paletteSize {
		return fmt.Errorf("%w: palette index %d not in 1..%d", ErrInvalidArgument, index, paletteSize)
	}
	p[index-1] = c
	return nil
}

// Rotation stores a row-major rotation matrix in the bits of a byte.
//
//	bit | value
//	0-1 : index of the non-zero entry in the first row
//	2-3 : index of the non-zero entry in the second row
//	4   : sign in the first row (0 positive, 1 negative)
//	5   : sign in the second row
//	6   : sign in the third row
type Rotation uint8

// RotationIdentity is the packed identity matrix.
const RotationIdentity Rotation = 1 << 2

// Matrix unpacks the rotation.
func (r Rotation) Matrix() [3][3]int {
	var m [3][3]int
	first := int(r & 3)
	second := int((r >> 2) & 3)
	third := 3 - first - second
	cols := [3]int{first, second, third}
	for row, col := range cols {
		if col < 0 || col > 2 {
			// Malformed codes keep a zero row.
			continue
		}
		sign := 1
		if r&(1<<(4+row)) != 0 {
			sign = -1
		}
		m[row][col] = sign
	}
	return m
}

// RotationFromMatrix packs a signed permutation matrix.
func RotationFromMatrix(m [3][3]int) (Rotation, error) {
	var r Rotation
	var seen [3]bool
	for row := 0; row < 3; row++ {
		col := -1
		for c := 0; c < 3; c++ {
			if m[row][c] == 0 {
				continue
			}
			if col != -1 || (m[row][c] != 1 && m[row][c] != -1) {
				return 0, fmt.Errorf("%w: row %d is not a signed unit row", ErrInvalidArgument, row)
			}
			col = c
		}
		if col == -1 || seen[col] {
			return 0, fmt.Errorf("%w: matrix is not a permutation", ErrInvalidArgument)
		}
		seen[col] = true
		switch row {
		case 0:
			r |= Rotation(col)
		case 1:
			r |= Rotation(col) << 2
		}
		if m[row][col] < 0 {
			r |= 1 << (4 + row)
		}
	}
	return r, nil
}

// Layer is a named visibility group referenced by transform nodes.
type Layer struct {
	ID     int32
	Name   string
	Hidden bool
}

// Material carries the properties of a MATL chunk. Keys are kept in file
// order.
type Material struct {
	ID         int32
	Properties Dict
}
