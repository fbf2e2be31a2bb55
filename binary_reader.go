// Unified handler for binary reading and writing operations

package vox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type binaryReader struct {
	*bytes.Reader
	data []byte
}

func newBinaryReader(data []byte) *binaryReader {
	return &binaryReader{Reader: bytes.NewReader(data), data: data}
}

// newBinaryReaderAt returns a reader positioned at offset.
func newBinaryReaderAt(data []byte, offset int) (*binaryReader, error) {
	r := newBinaryReader(data)
	if err := r.seek(offset); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *binaryReader) pos() int {
	return int(r.Size()) - r.Len()
}

func (r *binaryReader) seek(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("%w: seek to %d outside %d byte buffer", ErrCorrupt, offset, len(r.data))
	}
	_, err := r.Seek(int64(offset), io.SeekStart)
	return err
}

func (r *binaryReader) skip(n int) error {
	return r.seek(r.pos() + n)
}

// readBytes returns the next n bytes without copying them.
func (r *binaryReader) readBytes(n int) ([]byte, error) {
	start := r.pos()
	if n < 0 || start+n > len(r.data) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d exceed %d byte buffer", ErrCorrupt, n, start, len(r.data))
	}
	if err := r.seek(start + n); err != nil {
		return nil, err
	}
	return r.data[start : start+n], nil
}

func (r *binaryReader) readTag() (string, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readUint16(reader io.Reader) (uint16, error) {
	var val uint16
	err := binary.Read(reader, binary.LittleEndian, &val)
	return val, corrupt(err)
}

func readUint32(reader io.Reader) (uint32, error) {
	var val uint32
	err := binary.Read(reader, binary.LittleEndian, &val)
	return val, corrupt(err)
}

func readInt32(reader io.Reader) (int32, error) {
	var val int32
	err := binary.Read(reader, binary.LittleEndian, &val)
	return val, corrupt(err)
}

// corrupt maps short reads onto ErrCorrupt.
func corrupt(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrCorrupt, io.ErrUnexpectedEOF)
	}
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}
