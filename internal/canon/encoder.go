// Package canon writes and reads the canonical positional index format: a
// docs stream, a freqs stream, a sizes stream, and a plain-text lexicon, all
// aligned by term id. Binary sequences are little-endian u32: a 4-byte
// element count followed by exactly that many 4-byte values.
package canon

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/indexforge/ciffbridge/internal/index"
)

// Artifact suffixes of the canonical index.
const (
	DocsSuffix    = ".docs"
	FreqsSuffix   = ".freqs"
	SizesSuffix   = ".sizes"
	LexiconSuffix = ".lexicon.plain"
	TermLexSuffix = ".termlex"
)

// EncodeU32Sequence writes one length-prefixed sequence: a 4-byte element
// count followed by the values, no padding, no terminator.
func EncodeU32Sequence(w io.Writer, values []uint32) error {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(values)))
	if _, err := w.Write(scratch[:]); err != nil {
		return err
	}
	for _, v := range values {
		binary.LittleEndian.PutUint32(scratch[:], v)
		if _, err := w.Write(scratch[:]); err != nil {
			return err
		}
	}
	return nil
}

// Encoder materializes a completed inverted index and document length store
// as the four canonical artifacts sharing a common basename.
type Encoder struct {
	basename string
	bufSize  int
}

// NewEncoder returns an Encoder writing artifacts as basename + suffix.
func NewEncoder(basename string, bufferSize int) *Encoder {
	if bufferSize <= 0 {
		bufferSize = 1 << 20
	}
	return &Encoder{basename: basename, bufSize: bufferSize}
}

// Encode writes all four artifacts. Each artifact is an independent single
// pass over the index, so they are written concurrently; within each file
// the term id order is preserved. Every file goes to a .tmp path first and
// is renamed into place only after all four streams completed, so a fatal
// error never leaves artifacts that imply a successful run.
//
// A term id with no postings still emits a zero-length sequence in both the
// docs and freqs streams; skipping the slot would desynchronize every
// artifact after it.
func (e *Encoder) Encode(ctx context.Context, idx *index.Accumulator, lens *index.DocLengths) error {
	artifacts := []struct {
		path  string
		write func(io.Writer) error
	}{
		{e.basename + DocsSuffix, func(w io.Writer) error {
			return writeDocs(w, idx, uint32(lens.Len()))
		}},
		{e.basename + FreqsSuffix, func(w io.Writer) error {
			return writeFreqs(w, idx)
		}},
		{e.basename + SizesSuffix, func(w io.Writer) error {
			return EncodeU32Sequence(w, lens.Ascending())
		}},
		{e.basename + LexiconSuffix, func(w io.Writer) error {
			return writeLexicon(w, idx)
		}},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, artifact := range artifacts {
		artifact := artifact
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.writeFile(artifact.path+".tmp", artifact.write)
		})
	}
	if err := g.Wait(); err != nil {
		for _, artifact := range artifacts {
			os.Remove(artifact.path + ".tmp")
		}
		return err
	}

	for _, artifact := range artifacts {
		if err := os.Rename(artifact.path+".tmp", artifact.path); err != nil {
			return fmt.Errorf("finalizing %s: %w", artifact.path, err)
		}
	}
	return nil
}

func (e *Encoder) writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, e.bufSize)
	if err := write(w); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return f.Close()
}

// writeDocs emits the 4-byte doc_count header followed by one doc id
// sequence per term id, in term id order.
func writeDocs(w io.Writer, idx *index.Accumulator, docCount uint32) error {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], docCount)
	if _, err := w.Write(scratch[:]); err != nil {
		return err
	}
	for termID := 0; termID < idx.TermCount(); termID++ {
		if err := EncodeU32Sequence(w, idx.Docs(termID)); err != nil {
			return err
		}
	}
	return nil
}

func writeFreqs(w io.Writer, idx *index.Accumulator) error {
	for termID := 0; termID < idx.TermCount(); termID++ {
		if err := EncodeU32Sequence(w, idx.Freqs(termID)); err != nil {
			return err
		}
	}
	return nil
}

func writeLexicon(w io.Writer, idx *index.Accumulator) error {
	for termID := 0; termID < idx.TermCount(); termID++ {
		if _, err := io.WriteString(w, idx.Term(termID)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
