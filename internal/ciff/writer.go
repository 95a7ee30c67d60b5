package ciff

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer emits postings lists as length-prefixed frames, the exact format
// Reader consumes.
type Writer struct {
	dst     *bufio.Writer
	scratch []byte
	prefix  [binary.MaxVarintLen64]byte
	records int
}

// NewWriter returns a Writer on dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: bufio.NewWriter(dst)}
}

// Write appends one postings list to the stream.
func (w *Writer) Write(record *PostingsList) error {
	w.scratch = record.Append(w.scratch[:0])
	n := binary.PutUvarint(w.prefix[:], uint64(len(w.scratch)))
	if _, err := w.dst.Write(w.prefix[:n]); err != nil {
		return fmt.Errorf("writing frame prefix for term %q: %w", record.Term, err)
	}
	if _, err := w.dst.Write(w.scratch); err != nil {
		return fmt.Errorf("writing frame for term %q: %w", record.Term, err)
	}
	w.records++
	return nil
}

// Records returns the number of postings lists written so far.
func (w *Writer) Records() int {
	return w.records
}

// Flush writes any buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	return w.dst.Flush()
}
