package vox

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Summary is a compact description of a file, used by the YAML dump.
type Summary struct {
	Version   int32             `yaml:"version"`
	Models    []ModelSummary    `yaml:"models"`
	Layers    []Layer           `yaml:"layers,omitempty"`
	Materials []MaterialSummary `yaml:"materials,omitempty"`
	Nodes     int               `yaml:"nodes"`
}

type ModelSummary struct {
	ID          int       `yaml:"id"`
	Name        string    `yaml:"name,omitempty"`
	Size        [3]uint16 `yaml:"size,flow"`
	Voxels      int       `yaml:"voxels"`
	Layer       int32     `yaml:"layer"`
	Rotation    *Rotation `yaml:"rotation,omitempty"`
	Translation *[3]int32 `yaml:"translation,omitempty,flow"`
}

type MaterialSummary struct {
	ID         int32             `yaml:"id"`
	Properties map[string]string `yaml:"properties"`
}

// Summarize describes f.
func Summarize(f *File) Summary {
	s := Summary{Version: f.Version, Layers: f.Layers}
	for _, m := range f.Models {
		x, y, z := m.Size()
		s.Models = append(s.Models, ModelSummary{
			ID:          m.ID(),
			Name:        m.Name,
			Size:        [3]uint16{x, y, z},
			Voxels:      m.NumVoxels(),
			Layer:       m.Layer,
			Rotation:    m.Rotation,
			Translation: m.Translation,
		})
	}
	for _, mat := range f.Materials {
		props := make(map[string]string, mat.Properties.Len())
		for _, p := range mat.Properties.Pairs {
			props[p.Key.Content] = p.Value.Content
		}
		s.Materials = append(s.Materials, MaterialSummary{ID: mat.ID, Properties: props})
	}
	if f.Root != nil {
		s.Nodes = 1 + f.Root.NumChildren()
	}
	return s
}

// WriteYAML writes the summary of f as YAML.
func WriteYAML(w io.Writer, f *File) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Summarize(f)); err != nil {
		return err
	}
	return encoder.Close()
}

// WriteYAMLFile writes the YAML summary of f into filename.
func WriteYAMLFile(filename string, f *File) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteYAML(file, f); err != nil {
		return err
	}
	return file.Close()
}
