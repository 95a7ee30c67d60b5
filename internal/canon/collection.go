package canon

import (
	"encoding/binary"
	"io"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// Collection iterates the length-prefixed u32 sequences of a canonical
// binary stream held in memory. It is the read-side counterpart of
// EncodeU32Sequence and is used by the reverse converter and by tests that
// verify encoder output.
type Collection struct {
	data []byte
	off  int
	seq  int
}

// NewCollection returns a Collection over raw artifact bytes.
func NewCollection(data []byte) *Collection {
	return &Collection{data: data}
}

// ReadUint32 consumes a single raw 4-byte value, such as the doc_count
// header at the start of a docs stream.
func (c *Collection) ReadUint32() (uint32, error) {
	if len(c.data)-c.off < 4 {
		return 0, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"expected a 4-byte value at offset %d, %d bytes left", c.off, len(c.data)-c.off)
	}
	v := binary.LittleEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

// Next returns the next sequence, or io.EOF once the stream is exactly
// exhausted. Trailing bytes that do not form a complete sequence are a
// format error, never silently dropped.
func (c *Collection) Next() ([]uint32, error) {
	if c.off == len(c.data) {
		return nil, io.EOF
	}
	count, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if len(c.data)-c.off < int(count)*4 {
		return nil, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"sequence %d declares %d elements, only %d bytes left", c.seq, count, len(c.data)-c.off)
	}
	values := make([]uint32, count)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(c.data[c.off:])
		c.off += 4
	}
	c.seq++
	return values, nil
}
