package vox

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

///////////////////////
//// Chunk framing ////
///////////////////////

// WriteChunkHeader writes the 12 byte header of a chunk. The caller must
// follow it with exactly contentSize+childrenSize bytes.
func WriteChunkHeader(w io.Writer, tag string, contentSize, childrenSize uint32) error {
	if len(tag) != 4 {
		return fmt.Errorf("%w: chunk tag %q is not 4 bytes", ErrInvalidArgument, tag)
	}
	var header [chunkHeaderSize]byte
	copy(header[:4], tag)
	binary.LittleEndian.PutUint32(header[4:8], contentSize)
	binary.LittleEndian.PutUint32(header[8:12], childrenSize)
	_, err := w.Write(header[:])
	return err
}

// writeChunk serializes content and children into intermediate buffers and
// derives the header sizes from their lengths. Either callback may be nil.
func writeChunk(w io.Writer, tag string, content, children func(io.Writer) error) error {
	var body, kids bytes.Buffer
	if content != nil {
		if err := content(&body); err != nil {
			return fmt.Errorf("writing %s content: %w", tag, err)
		}
	}
	if children != nil {
		if err := children(&kids); err != nil {
			return fmt.Errorf("writing %s children: %w", tag, err)
		}
	}
	if err := WriteChunkHeader(w, tag, uint32(body.Len()), uint32(kids.Len())); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := kids.WriteTo(w)
	return err
}

// walkChunks visits chunk headers from the end of the file header. Each
// step skips the header and the declared content, so child chunks are
// visited as siblings of their parent. fn returns true to stop the walk.
func walkChunks(data []byte, fn func(tag string, offset int) bool) error {
	pos := fileHeaderSize
	for pos < len(data) {
		if pos+chunkHeaderSize > len(data) {
			return fmt.Errorf("%w: chunk header at offset %d runs past end of %d byte buffer", ErrCorrupt, pos, len(data))
		}
		tag := string(data[pos : pos+4])
		size := int64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		end := int64(pos) + chunkHeaderSize + size
		if end > int64(len(data)) {
			return fmt.Errorf("%w: %s chunk at offset %d declares %d bytes, only %d remain", ErrCorrupt, tag, pos, size, len(data)-pos-chunkHeaderSize)
		}
		if fn(tag, pos) {
			return nil
		}
		pos = int(end)
	}
	return nil
}

// FindChunk returns the offset of the n-th (1-indexed) chunk tagged tag.
func FindChunk(data []byte, tag string, n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: chunk number %d must be at least 1", ErrInvalidArgument, n)
	}
	found := -1
	seen := 0
	err := walkChunks(data, func(t string, offset int) bool {
		if t != tag {
			return false
		}
		seen++
		if seen == n {
			found = offset
			return true
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	if found < 0 {
		return 0, fmt.Errorf("%w: %s #%d (file has %d)", ErrNotFound, tag, n, seen)
	}
	return found, nil
}

// CountChunks returns the number of chunks tagged tag.
func CountChunks(data []byte, tag string) (int, error) {
	count := 0
	err := walkChunks(data, func(t string, _ int) bool {
		if t == tag {
			count++
		}
		return false
	})
	return count, err
}

// readChunkHeader reads a header at the current position and checks its tag.
func readChunkHeader(r *binaryReader, tag string) (contentSize, childrenSize uint32, err error) {
	got, err := r.readTag()
	if err != nil {
		return 0, 0, err
	}
	if got != tag {
		return 0, 0, fmt.Errorf("%w: expected %s chunk at offset %d, got %q", ErrCorrupt, tag, r.pos()-4, got)
	}
	if contentSize, err = readUint32(r); err != nil {
		return 0, 0, err
	}
	if childrenSize, err = readUint32(r); err != nil {
		return 0, 0, err
	}
	return contentSize, childrenSize, nil
}

/////////////////
//// Records ////
/////////////////

// VoxString is a length-prefixed UTF-8 string.
type VoxString struct {
	Content string
}

func readVoxString(r *binaryReader) (VoxString, error) {
	length, err := readInt32(r)
	if err != nil {
		return VoxString{}, err
	}
	b, err := r.readBytes(int(length))
	if err != nil {
		return VoxString{}, err
	}
	if !utf8.Valid(b) {
		return VoxString{}, fmt.Errorf("%w: %d byte string at offset %d", ErrEncoding, length, r.pos()-int(length))
	}
	return VoxString{Content: string(b)}, nil
}

func (s VoxString) Write(w io.Writer) error {
	if err := writeInt32(w, int32(len(s.Content))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s.Content)
	return err
}

// Size returns the encoded size in bytes.
func (s VoxString) Size() int {
	return 4 + len(s.Content)
}

// DictPair is one key/value entry of a Dict.
type DictPair struct {
	Key   VoxString
	Value VoxString
}

// Dict is an ordered list of string pairs. Order is kept on round trip.
type Dict struct {
	Pairs []DictPair
}

func readDict(r *binaryReader) (Dict, error) {
	count, err := readInt32(r)
	if err != nil {
		return Dict{}, err
	}
	if count < 0 || int(count) > r.Len()/8 {
		return Dict{}, fmt.Errorf("%w: dictionary of %d pairs at offset %d", ErrCorrupt, count, r.pos()-4)
	}
	d := Dict{Pairs: make([]DictPair, 0, count)}
	for i := int32(0); i < count; i++ {
		key, err := readVoxString(r)
		if err != nil {
			return Dict{}, err
		}
		value, err := readVoxString(r)
		if err != nil {
			return Dict{}, err
		}
		d.Pairs = append(d.Pairs, DictPair{Key: key, Value: value})
	}
	return d, nil
}

func (d Dict) Write(w io.Writer) error {
	if err := writeInt32(w, int32(len(d.Pairs))); err != nil {
		return err
	}
	for _, p := range d.Pairs {
		if err := p.Key.Write(w); err != nil {
			return err
		}
		if err := p.Value.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the encoded size in bytes of the current content.
func (d Dict) Size() int {
	size := 4
	for _, p := range d.Pairs {
		size += p.Key.Size() + p.Value.Size()
	}
	return size
}

// Len returns the number of pairs.
func (d Dict) Len() int {
	return len(d.Pairs)
}

// Get returns the value of the first pair with the given key.
func (d Dict) Get(key string) (string, bool) {
	for _, p := range d.Pairs {
		if p.Key.Content == key {
			return p.Value.Content, true
		}
	}
	return "", false
}

// Set replaces the value of key in place, or appends a new pair.
func (d *Dict) Set(key, value string) {
	for i := range d.Pairs {
		if d.Pairs[i].Key.Content == key {
			d.Pairs[i].Value.Content = value
			return
		}
	}
	d.Pairs = append(d.Pairs, DictPair{Key: VoxString{Content: key}, Value: VoxString{Content: value}})
}

// Delete removes every pair with the given key.
func (d *Dict) Delete(key string) {
	kept := d.Pairs[:0]
	for _, p := range d.Pairs {
		if p.Key.Content != key {
			kept = append(kept, p)
		}
	}
	d.Pairs = kept
}
