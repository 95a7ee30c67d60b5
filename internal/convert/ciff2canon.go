// Package convert ties the wire codec, the in-memory index structures, and
// the canonical encoder into the end-to-end pipelines behind the ciffbridge
// CLIs.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/indexforge/ciffbridge/internal/canon"
	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/internal/index"
	"github.com/indexforge/ciffbridge/pkg/logger"
	"github.com/indexforge/ciffbridge/pkg/metrics"
)

// CiffToCanon converts a postings stream plus a document length file into a
// canonical index under OutputBasename. The run is strictly two-phase:
// decode and accumulate everything, then encode in a single pass. Encoding
// cannot start earlier because the docs header needs the final document
// count and the sizes stream needs the fully ordered length sequence.
type CiffToCanon struct {
	PostingsPath   string
	DocLengthsPath string
	OutputBasename string
	SkipTermLex    bool

	MaxFrameSize int64
	BufferSize   int

	Metrics *metrics.Metrics // optional
}

// Run executes the conversion. On any error no canonical artifact is
// finalized.
func (c *CiffToCanon) Run(ctx context.Context) error {
	log := logger.WithComponent("ciff2canon")

	lens := index.NewDocLengths()
	doclenFile, err := os.Open(c.DocLengthsPath)
	if err != nil {
		return fmt.Errorf("opening document lengths %s: %w", c.DocLengthsPath, err)
	}
	if err := lens.ReadFrom(doclenFile); err != nil {
		doclenFile.Close()
		return err
	}
	doclenFile.Close()
	log.Info("document lengths loaded", "docs", lens.Len())

	decodeStart := time.Now()
	postingsFile, err := os.Open(c.PostingsPath)
	if err != nil {
		return fmt.Errorf("opening postings stream %s: %w", c.PostingsPath, err)
	}
	defer postingsFile.Close()

	maxFrame := c.MaxFrameSize
	if maxFrame <= 0 {
		maxFrame = ciff.DefaultMaxFrameSize
	}
	reader := ciff.NewReaderSize(postingsFile, maxFrame, c.BufferSize)
	accumulator := index.NewAccumulator()
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := accumulator.Add(record); err != nil {
			return err
		}
		if c.Metrics != nil {
			c.Metrics.RecordsDecoded.Inc()
			c.Metrics.PostingsDecoded.Add(float64(len(record.Postings)))
		}
	}
	if c.Metrics != nil {
		c.Metrics.BytesRead.Add(float64(reader.BytesRead()))
		c.Metrics.StageDuration.WithLabelValues("decode").Observe(time.Since(decodeStart).Seconds())
	}
	log.Info("postings decoded",
		"terms", accumulator.TermCount(),
		"postings", accumulator.Postings(),
		"bytes", reader.BytesRead(),
	)

	encodeStart := time.Now()
	encoder := canon.NewEncoder(c.OutputBasename, c.BufferSize)
	if err := encoder.Encode(ctx, accumulator, lens); err != nil {
		return err
	}
	if !c.SkipTermLex {
		if err := c.writeTermLex(accumulator); err != nil {
			return err
		}
	}
	if c.Metrics != nil {
		c.Metrics.StageDuration.WithLabelValues("encode").Observe(time.Since(encodeStart).Seconds())
		c.Metrics.TermsWritten.Add(float64(accumulator.TermCount()))
		c.Metrics.DocumentsWritten.Add(float64(lens.Len()))
	}
	log.Info("canonical index written",
		"basename", c.OutputBasename,
		"terms", accumulator.TermCount(),
		"docs", lens.Len(),
	)
	return nil
}

func (c *CiffToCanon) writeTermLex(accumulator *index.Accumulator) error {
	path := c.OutputBasename + canon.TermLexSuffix
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	vector := canon.PayloadVectorFromStrings(accumulator.Terms())
	if _, err := vector.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return os.Rename(path+".tmp", path)
}
