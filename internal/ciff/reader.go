package ciff

import (
	"bufio"
	"encoding/binary"
	"io"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// DefaultMaxFrameSize is the largest length prefix the reader accepts unless
// configured otherwise.
const DefaultMaxFrameSize = 512 << 20

// Reader decodes postings lists from a stream of length-prefixed frames.
// A clean end of stream (no bytes left at a frame boundary) is reported as
// io.EOF; anything else that prevents fully decoding a frame is fatal.
type Reader struct {
	src     *bufio.Reader
	max     int64
	buf     []byte
	records int
	bytes   int64
}

// NewReader returns a Reader over src with the default frame size limit.
func NewReader(src io.Reader) *Reader {
	return NewReaderSize(src, DefaultMaxFrameSize, 1<<20)
}

// NewReaderSize returns a Reader with an explicit frame size limit and
// input buffer size.
func NewReaderSize(src io.Reader, maxFrameSize int64, bufferSize int) *Reader {
	return &Reader{
		src: bufio.NewReaderSize(src, bufferSize),
		max: maxFrameSize,
	}
}

// Next returns the next postings list in the stream. It returns io.EOF when
// the stream ends cleanly at a frame boundary. Any other failure means the
// stream cannot be trusted past this point and the whole conversion must be
// abandoned: the frame layout has no resync point.
func (r *Reader) Next() (*PostingsList, error) {
	size, err := binary.ReadUvarint(r.src)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, cerrors.Newf(cerrors.ErrMalformedMessage, cerrors.ExitFailure,
			"record %d: truncated length prefix: %v", r.records, err)
	}
	if int64(size) > r.max || int64(size) < 0 {
		return nil, cerrors.Newf(cerrors.ErrMalformedMessage, cerrors.ExitFailure,
			"record %d: declared frame size %d exceeds limit %d", r.records, size, r.max)
	}

	// Pull the payload through a LimitedReader so a decoder bug can never
	// consume bytes belonging to the next frame.
	frame := io.LimitedReader{R: r.src, N: int64(size)}
	if cap(r.buf) < int(size) {
		r.buf = make([]byte, size)
	}
	buf := r.buf[:size]
	if _, err := io.ReadFull(&frame, buf); err != nil {
		return nil, cerrors.Newf(cerrors.ErrMalformedMessage, cerrors.ExitFailure,
			"record %d: frame shorter than declared size %d: %v", r.records, size, err)
	}

	var record PostingsList
	if err := record.Unmarshal(buf); err != nil {
		return nil, cerrors.Newf(cerrors.ErrMalformedMessage, cerrors.ExitFailure,
			"record %d: %v", r.records, err)
	}
	r.records++
	r.bytes += int64(size)
	return &record, nil
}

// Records returns the number of postings lists decoded so far.
func (r *Reader) Records() int {
	return r.records
}

// BytesRead returns the total payload bytes consumed so far, excluding
// length prefixes.
func (r *Reader) BytesRead() int64 {
	return r.bytes
}
