package vox

import "fmt"

// File is an in-memory .vox container.
type File struct {
	Version   int32
	Palette   Palette
	Models    []*Model
	Layers    []Layer
	Materials []Material

	// Root is the scene tree. It is rebuilt from Models on write and
	// filled from the scene chunks on read.
	Root *Node

	nextID int
}

// New returns a file holding one empty model of the given size.
func New(x, y, z uint16) (*File, error) {
	m, err := NewModel(x, y, z)
	if err != nil {
		return nil, err
	}
	f := NewEmpty()
	if _, err := f.AddModel(m); err != nil {
		return nil, err
	}
	return f, nil
}

// NewEmpty returns a file with the default palette and no models.
func NewEmpty() *File {
	return &File{Version: Version, Palette: DefaultPalette()}
}

// AddModel appends m and assigns it the next model id.
func (f *File) AddModel(m *Model) (int, error) {
	if m == nil {
		return 0, fmt.Errorf("%w: nil model", ErrInvalidArgument)
	}
	for _, owned := range f.Models {
		if owned == m {
			return 0, fmt.Errorf("%w: model %d already added", ErrInvalidArgument, m.id)
		}
	}
	m.id = f.nextID
	f.nextID++
	f.Models = append(f.Models, m)
	return m.id, nil
}

// Model returns the model with the given id.
func (f *File) Model(id int) (*Model, bool) {
	for _, m := range f.Models {
		if m.id == id {
			return m, true
		}
	}
	return nil, false
}

// RemoveModel drops the model with the given id. Its id is not reused.
func (f *File) RemoveModel(id int) bool {
	for i, m := range f.Models {
		if m.id == id {
			f.Models = append(f.Models[:i], f.Models[i+1:]...)
			m.id = -1
			return true
		}
	}
	return false
}
