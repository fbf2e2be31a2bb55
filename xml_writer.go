package vox

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteXMLFile renders f as XML into filename.
func WriteXMLFile(filename string, f *File) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteXML(file, f); err != nil {
		return err
	}
	return file.Close()
}

// WriteXML renders f as an indented XML document. Output is deterministic
// so dumps of two files can be diffed.
func WriteXML(w io.Writer, f *File) error {
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "\t")

	_, err := w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>` + "\n"))
	if err != nil {
		return err
	}

	// Write root
	err = encoder.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "vox"},
		Attr: []xml.Attr{attr("version", strconv.Itoa(int(f.Version)))},
	})
	if err != nil {
		return err
	}

	err = writeModels(encoder, f)
	if err != nil {
		return err
	}

	err = writePalette(encoder, f)
	if err != nil {
		return err
	}

	if f.Root != nil {
		err = writeElement(encoder, "scene", nil, func() error {
			return writeNode(encoder, f.Root)
		})
		if err != nil {
			return err
		}
	}

	err = writeLayers(encoder, f)
	if err != nil {
		return err
	}

	err = writeMaterials(encoder, f)
	if err != nil {
		return err
	}

	// Close root
	err = encoder.EncodeToken(xml.EndElement{Name: xml.Name{Local: "vox"}})
	if err != nil {
		return err
	}

	return encoder.Flush()
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// writeElement writes a start tag, whatever body writes, and the end tag.
func writeElement(encoder *xml.Encoder, name string, attrs []xml.Attr, body func() error) error {
	err := encoder.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
	if err != nil {
		return err
	}
	if body != nil {
		if err := body(); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func writeModels(encoder *xml.Encoder, f *File) error {
	return writeElement(encoder, "models", nil, func() error {
		for _, m := range f.Models {
			x, y, z := m.Size()
			attrs := []xml.Attr{
				attr("id", strconv.Itoa(m.ID())),
				attr("size", fmt.Sprintf("%d %d %d", x, y, z)),
				attr("voxels", strconv.Itoa(m.NumVoxels())),
			}
			if m.Name != "" {
				attrs = append(attrs, attr("name", m.Name))
			}
			attrs = append(attrs, placementAttrs(m.Layer, m.Rotation, m.Translation)...)
			if err := writeElement(encoder, "model", attrs, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func placementAttrs(layer int32, rotation *Rotation, translation *[3]int32) []xml.Attr {
	attrs := []xml.Attr{attr("layer", strconv.Itoa(int(layer)))}
	if rotation != nil {
		attrs = append(attrs, attr("rotation", formatRotation(*rotation)))
	}
	if translation != nil {
		attrs = append(attrs, attr("translation", fmt.Sprintf("%d %d %d", translation[0], translation[1], translation[2])))
	}
	return attrs
}

// formatRotation renders the unpacked matrix row by row.
func formatRotation(r Rotation) string {
	m := r.Matrix()
	return fmt.Sprintf("%d %d %d %d %d %d %d %d %d",
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2])
}

// writePalette lists only the entries that differ from the default palette.
func writePalette(encoder *xml.Encoder, f *File) error {
	def := DefaultPalette()
	return writeElement(encoder, "palette", nil, func() error {
		for i, c := range f.Palette {
			if c == def[i] {
				continue
			}
			attrs := []xml.Attr{
				attr("index", strconv.Itoa(i+1)),
				attr("rgba", fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)),
			}
			if err := writeElement(encoder, "color", attrs, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNode(encoder *xml.Encoder, node *Node) error {
	attrs := []xml.Attr{attr("type", node.Kind.String())}
	if node.Attributes.Name != nil {
		attrs = append(attrs, attr("name", *node.Attributes.Name))
	}
	if node.Attributes.Hidden != nil {
		attrs = append(attrs, attr("hidden", strconv.FormatBool(*node.Attributes.Hidden)))
	}
	switch node.Kind {
	case KindTransform:
		attrs = append(attrs, placementAttrs(node.Transform.Layer, node.Transform.Rotation, node.Transform.Translation)...)
	case KindShape:
		attrs = append(attrs, attr("model", strconv.Itoa(node.ModelID)))
	}

	return writeElement(encoder, "node", attrs, func() error {
		for _, child := range node.Children {
			if err := writeNode(encoder, child); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLayers(encoder *xml.Encoder, f *File) error {
	if len(f.Layers) == 0 {
		return nil
	}
	return writeElement(encoder, "layers", nil, func() error {
		for _, l := range f.Layers {
			attrs := []xml.Attr{
				attr("id", strconv.Itoa(int(l.ID))),
				attr("name", l.Name),
				attr("hidden", strconv.FormatBool(l.Hidden)),
			}
			if err := writeElement(encoder, "layer", attrs, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeMaterials keeps each material's properties in file order.
func writeMaterials(encoder *xml.Encoder, f *File) error {
	if len(f.Materials) == 0 {
		return nil
	}
	return writeElement(encoder, "materials", nil, func() error {
		for _, m := range f.Materials {
			err := writeElement(encoder, "material", []xml.Attr{attr("id", strconv.Itoa(int(m.ID)))}, func() error {
				for _, p := range m.Properties.Pairs {
					attrs := []xml.Attr{attr("key", p.Key.Content), attr("value", p.Value.Content)}
					if err := writeElement(encoder, "property", attrs, nil); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
