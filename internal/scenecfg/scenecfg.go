// Package scenecfg builds .vox files from TOML scene descriptions.
//
// A description lists palette overrides, layers and models. Each model is
// filled from cuboids and single voxels:
//
//	[[palette]]
//	index = 1
//	rgba = [255, 0, 0, 255]
//
//	[[models]]
//	name = "crate"
//	size = [8, 8, 8]
//	translation = [0, 0, 4]
//
//	  [[models.cubes]]
//	  from = [0, 0, 0]
//	  to = [8, 8, 8]
//	  color = 1
package scenecfg

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"vox"
)

// Config is a scene description.
type Config struct {
	Palette []ColorConfig `toml:"palette"`
	Layers  []LayerConfig `toml:"layers"`
	Models  []ModelConfig `toml:"models"`
}

type ColorConfig struct {
	Index int      `toml:"index"`
	RGBA  [4]uint8 `toml:"rgba"`
}

type LayerConfig struct {
	Name   string `toml:"name"`
	Hidden bool   `toml:"hidden"`
}

type ModelConfig struct {
	Name        string        `toml:"name"`
	Size        [3]uint16     `toml:"size"`
	Translation *[3]int32     `toml:"translation"`
	Rotation    *uint8        `toml:"rotation"`
	Layer       int32         `toml:"layer"`
	AutoSize    bool          `toml:"auto_size"`
	Cubes       []CubeConfig  `toml:"cubes"`
	Voxels      []VoxelConfig `toml:"voxels"`
}

// CubeConfig fills the half-open box [From, To).
type CubeConfig struct {
	From  [3]uint8 `toml:"from"`
	To    [3]uint8 `toml:"to"`
	Color uint8    `toml:"color"`
}

type VoxelConfig struct {
	Pos   [3]uint8 `toml:"pos"`
	Color uint8    `toml:"color"`
}

// Load reads a scene description from a TOML file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Parse decodes a scene description. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build returns the file the description stands for.
func (c *Config) Build() (*vox.File, error) {
	f := vox.NewEmpty()

	for _, entry := range c.Palette {
		color := vox.Color{R: entry.RGBA[0], G: entry.RGBA[1], B: entry.RGBA[2], A: entry.RGBA[3]}
		if err := f.Palette.SetColor(entry.Index, color); err != nil {
			return nil, err
		}
	}

	for i, l := range c.Layers {
		f.Layers = append(f.Layers, vox.Layer{ID: int32(i), Name: l.Name, Hidden: l.Hidden})
	}

	for i, mc := range c.Models {
		m, err := mc.build()
		if err != nil {
			return nil, fmt.Errorf("model %d (%s): %w", i, mc.Name, err)
		}
		if _, err := f.AddModel(m); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (mc ModelConfig) build() (*vox.Model, error) {
	m, err := vox.NewModel(mc.Size[0], mc.Size[1], mc.Size[2])
	if err != nil {
		return nil, err
	}
	m.Name = mc.Name
	m.Layer = mc.Layer
	if mc.Translation != nil {
		t := *mc.Translation
		m.Translation = &t
	}
	if mc.Rotation != nil {
		r := vox.Rotation(*mc.Rotation)
		m.Rotation = &r
	}

	for _, cube := range mc.Cubes {
		if err := m.AddCube(cube.From, cube.To, cube.Color); err != nil {
			return nil, err
		}
	}
	for _, v := range mc.Voxels {
		if err := m.AddVoxelAt(v.Pos[0], v.Pos[1], v.Pos[2], v.Color); err != nil {
			return nil, err
		}
	}
	if mc.AutoSize {
		m.AutoSize()
	}
	return m, nil
}
