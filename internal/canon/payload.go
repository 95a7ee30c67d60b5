package canon

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// PayloadVector is a random-access binary lexicon: a u64 element count,
// count+1 u64 end offsets (the first always zero), then the concatenated
// payload bytes. All integers little-endian. Element i spans
// payload[offset[i]:offset[i+1]], so lookups need no scanning.
type PayloadVector struct {
	data []byte
}

// PayloadVectorFromStrings builds a PayloadVector from items in order.
func PayloadVectorFromStrings(items []string) PayloadVector {
	var payloadLen int
	for _, item := range items {
		payloadLen += len(item)
	}
	data := make([]byte, 0, 8*(len(items)+2)+payloadLen)
	data = binary.LittleEndian.AppendUint64(data, uint64(len(items)))

	var offset uint64
	data = binary.LittleEndian.AppendUint64(data, offset)
	for _, item := range items {
		offset += uint64(len(item))
		data = binary.LittleEndian.AppendUint64(data, offset)
	}
	for _, item := range items {
		data = append(data, item...)
	}
	return PayloadVector{data: data}
}

// Bytes returns the serialized form.
func (v PayloadVector) Bytes() []byte {
	return v.data
}

// WriteTo writes the serialized form to w.
func (v PayloadVector) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(v.data)
	return int64(n), err
}

// PayloadSlice reads elements out of serialized PayloadVector bytes without
// materializing them.
type PayloadSlice struct {
	data []byte
}

// NewPayloadSlice validates the framing of data and wraps it.
func NewPayloadSlice(data []byte) (PayloadSlice, error) {
	if len(data) < 16 {
		return PayloadSlice{}, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"payload vector needs at least 16 bytes, got %d", len(data))
	}
	count := binary.LittleEndian.Uint64(data)
	headerLen := 8 * (count + 2)
	if uint64(len(data)) < headerLen {
		return PayloadSlice{}, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"payload vector declares %d elements but holds only %d bytes", count, len(data))
	}
	last := binary.LittleEndian.Uint64(data[8*(count+1):])
	if uint64(len(data)) != headerLen+last {
		return PayloadSlice{}, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"payload vector size %d does not match declared layout %d", len(data), headerLen+last)
	}
	return PayloadSlice{data: data}, nil
}

// Count returns the number of elements.
func (s PayloadSlice) Count() int {
	return int(binary.LittleEndian.Uint64(s.data))
}

// At returns element i, or false if i is out of range. The returned bytes
// alias the underlying buffer.
func (s PayloadSlice) At(i int) ([]byte, bool) {
	count := s.Count()
	if i < 0 || i >= count {
		return nil, false
	}
	start := binary.LittleEndian.Uint64(s.data[8*(i+1):])
	end := binary.LittleEndian.Uint64(s.data[8*(i+2):])
	base := uint64(8 * (count + 2))
	return s.data[base+start : base+end], true
}

// BuildLexicon converts a plain-text lexicon (one term per line) into the
// binary payload-vector form.
func BuildLexicon(r io.Reader, w io.Writer) error {
	var terms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		terms = append(terms, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading lexicon: %w", err)
	}
	if _, err := PayloadVectorFromStrings(terms).WriteTo(w); err != nil {
		return fmt.Errorf("writing binary lexicon: %w", err)
	}
	return nil
}
