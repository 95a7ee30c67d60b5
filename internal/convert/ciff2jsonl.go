package convert

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/pkg/logger"
	"github.com/indexforge/ciffbridge/pkg/metrics"
)

// CiffToJSONL dumps a postings stream as one JSON object per line, with doc
// ids resolved to their absolute values for readability.
type CiffToJSONL struct {
	InputPath  string
	OutputPath string

	MaxFrameSize int64
	BufferSize   int

	Metrics *metrics.Metrics // optional
}

type jsonlRecord struct {
	Term     string      `json:"term"`
	DF       int64       `json:"df"`
	CF       int64       `json:"cf"`
	Postings [][2]uint32 `json:"postings"`
}

// Run executes the dump.
func (c *CiffToJSONL) Run(ctx context.Context) error {
	log := logger.WithComponent("ciff2jsonl")

	in, err := os.Open(c.InputPath)
	if err != nil {
		return fmt.Errorf("opening postings stream %s: %w", c.InputPath, err)
	}
	defer in.Close()

	out, err := os.Create(c.OutputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", c.OutputPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	maxFrame := c.MaxFrameSize
	if maxFrame <= 0 {
		maxFrame = ciff.DefaultMaxFrameSize
	}
	reader := ciff.NewReaderSize(in, maxFrame, c.BufferSize)
	encoder := json.NewEncoder(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line := jsonlRecord{
			Term:     record.Term,
			DF:       record.DF,
			CF:       record.CF,
			Postings: make([][2]uint32, len(record.Postings)),
		}
		var current uint32
		for i, posting := range record.Postings {
			current += uint32(posting.DocID)
			line.Postings[i] = [2]uint32{current, uint32(posting.TF)}
		}
		if err := encoder.Encode(&line); err != nil {
			return fmt.Errorf("encoding term %q: %w", record.Term, err)
		}
		if c.Metrics != nil {
			c.Metrics.RecordsDecoded.Inc()
			c.Metrics.PostingsDecoded.Add(float64(len(record.Postings)))
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", c.OutputPath, err)
	}

	log.Info("postings dumped", "path", c.OutputPath, "records", reader.Records())
	return nil
}
