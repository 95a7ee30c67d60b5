package convert

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/indexforge/ciffbridge/internal/canon"
	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/pkg/logger"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// CanonToCiff rebuilds an interchange postings stream and a document length
// file from a canonical index. The sizes artifact stores lengths
// positionally without doc ids, so the collection is assumed to use densely
// assigned doc ids 0..doc_count-1, which is how downstream engines lay out
// their collections.
type CanonToCiff struct {
	CollectionBasename string
	OutputPath         string
	DocLengthsPath     string
}

// Run executes the reverse conversion.
func (c *CanonToCiff) Run(ctx context.Context) error {
	log := logger.WithComponent("canon2ciff")

	terms, err := readLines(c.CollectionBasename + canon.LexiconSuffix)
	if err != nil {
		return err
	}

	docsData, err := os.ReadFile(c.CollectionBasename + canon.DocsSuffix)
	if err != nil {
		return fmt.Errorf("reading docs stream: %w", err)
	}
	freqsData, err := os.ReadFile(c.CollectionBasename + canon.FreqsSuffix)
	if err != nil {
		return fmt.Errorf("reading freqs stream: %w", err)
	}

	docs := canon.NewCollection(docsData)
	docCount, err := docs.ReadUint32()
	if err != nil {
		return err
	}
	freqs := canon.NewCollection(freqsData)

	out, err := os.Create(c.OutputPath)
	if err != nil {
		return fmt.Errorf("creating postings stream %s: %w", c.OutputPath, err)
	}
	defer out.Close()
	writer := ciff.NewWriter(out)

	var postings int64
	for termID, term := range terms {
		if err := ctx.Err(); err != nil {
			return err
		}
		docSeq, err := nextSequence(docs, "docs", termID, len(terms))
		if err != nil {
			return err
		}
		freqSeq, err := nextSequence(freqs, "freqs", termID, len(terms))
		if err != nil {
			return err
		}
		if len(docSeq) != len(freqSeq) {
			return cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
				"term %q (id %d): %d doc ids but %d frequencies", term, termID, len(docSeq), len(freqSeq))
		}
		if err := writer.Write(deltaEncode(term, docSeq, freqSeq)); err != nil {
			return err
		}
		postings += int64(len(docSeq))
	}
	if err := expectExhausted(docs, "docs", len(terms)); err != nil {
		return err
	}
	if err := expectExhausted(freqs, "freqs", len(terms)); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing postings stream: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("syncing postings stream: %w", err)
	}

	if err := c.writeDocLengths(docCount); err != nil {
		return err
	}

	log.Info("postings stream written",
		"path", c.OutputPath,
		"terms", len(terms),
		"postings", postings,
		"docs", docCount,
	)
	return nil
}

// writeDocLengths converts the positional sizes stream back into "docid
// length" lines, assigning doc ids 0..doc_count-1.
func (c *CanonToCiff) writeDocLengths(docCount uint32) error {
	sizesData, err := os.ReadFile(c.CollectionBasename + canon.SizesSuffix)
	if err != nil {
		return fmt.Errorf("reading sizes stream: %w", err)
	}
	sizes := canon.NewCollection(sizesData)
	lengths, err := sizes.Next()
	if err != nil {
		return fmt.Errorf("decoding sizes stream: %w", err)
	}
	if uint32(len(lengths)) != docCount {
		return cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"sizes stream holds %d lengths but docs header declares %d documents", len(lengths), docCount)
	}

	f, err := os.Create(c.DocLengthsPath)
	if err != nil {
		return fmt.Errorf("creating document lengths %s: %w", c.DocLengthsPath, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for docID, length := range lengths {
		if _, err := fmt.Fprintf(w, "%d %d\n", docID, length); err != nil {
			return fmt.Errorf("writing document lengths: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing document lengths: %w", err)
	}
	return f.Sync()
}

// deltaEncode turns an absolute doc id sequence back into the delta form
// carried on the wire, recomputing df and cf from the sequences themselves.
func deltaEncode(term string, docSeq, freqSeq []uint32) *ciff.PostingsList {
	record := &ciff.PostingsList{
		Term:     term,
		DF:       int64(len(docSeq)),
		Postings: make([]ciff.Posting, len(docSeq)),
	}
	var previous uint32
	for i, docID := range docSeq {
		record.Postings[i] = ciff.Posting{
			DocID: int32(docID - previous),
			TF:    int32(freqSeq[i]),
		}
		record.CF += int64(freqSeq[i])
		previous = docID
	}
	return record
}

func nextSequence(collection *canon.Collection, stream string, termID, termCount int) ([]uint32, error) {
	seq, err := collection.Next()
	if err == io.EOF {
		return nil, cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"%s stream ended at term id %d, lexicon has %d terms", stream, termID, termCount)
	}
	return seq, err
}

func expectExhausted(collection *canon.Collection, stream string, termCount int) error {
	if _, err := collection.Next(); err != io.EOF {
		return cerrors.Newf(cerrors.ErrInvalidFormat, cerrors.ExitFailure,
			"%s stream holds more sequences than the %d lexicon terms", stream, termCount)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return lines, nil
}
