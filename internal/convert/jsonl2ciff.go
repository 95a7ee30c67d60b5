package convert

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/indexforge/ciffbridge/internal/analyzer"
	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/internal/index"
	"github.com/indexforge/ciffbridge/pkg/logger"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// JSONLToCiff builds an interchange postings stream plus a document length
// file from a JSONL corpus of {"id": ..., "content": ...} documents. Terms
// are assigned ids in first-appearance order; doc lengths are token counts
// after analysis.
type JSONLToCiff struct {
	InputPath      string
	OutputPath     string
	DocLengthsPath string
}

type jsonlDocument struct {
	ID      uint32 `json:"id"`
	Content string `json:"content"`
}

// Run executes the corpus conversion.
func (c *JSONLToCiff) Run(ctx context.Context) error {
	log := logger.WithComponent("jsonl2ciff")

	in, err := os.Open(c.InputPath)
	if err != nil {
		return fmt.Errorf("opening corpus %s: %w", c.InputPath, err)
	}
	defer in.Close()

	var (
		terms   []string
		termIDs = make(map[string]int)
		tfs     []map[uint32]uint32
		lens    = index.NewDocLengths()
	)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc jsonlDocument
		if err := json.Unmarshal(line, &doc); err != nil {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"corpus line %d: %v", lineNo, err)
		}

		tokens := analyzer.Tokenize(doc.Content)
		lens.Set(doc.ID, uint32(len(tokens)))
		for _, token := range tokens {
			termID, seen := termIDs[token]
			if !seen {
				termID = len(terms)
				termIDs[token] = termID
				terms = append(terms, token)
				tfs = append(tfs, make(map[uint32]uint32))
			}
			tfs[termID][doc.ID]++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}
	log.Info("corpus analyzed", "docs", lens.Len(), "terms", len(terms))

	out, err := os.Create(c.OutputPath)
	if err != nil {
		return fmt.Errorf("creating postings stream %s: %w", c.OutputPath, err)
	}
	defer out.Close()
	writer := ciff.NewWriter(out)
	for termID, term := range terms {
		if err := writer.Write(buildPostingsList(term, tfs[termID])); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing postings stream: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("syncing postings stream: %w", err)
	}

	doclenFile, err := os.Create(c.DocLengthsPath)
	if err != nil {
		return fmt.Errorf("creating document lengths %s: %w", c.DocLengthsPath, err)
	}
	defer doclenFile.Close()
	if err := lens.WriteText(doclenFile); err != nil {
		return err
	}
	if err := doclenFile.Sync(); err != nil {
		return fmt.Errorf("syncing document lengths: %w", err)
	}

	log.Info("postings stream written",
		"path", c.OutputPath,
		"terms", len(terms),
		"docs", lens.Len(),
	)
	return nil
}

// buildPostingsList delta-encodes one term's frequencies into a wire record,
// walking doc ids in ascending order.
func buildPostingsList(term string, tf map[uint32]uint32) *ciff.PostingsList {
	docIDs := make([]uint32, 0, len(tf))
	for docID := range tf {
		docIDs = append(docIDs, docID)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	record := &ciff.PostingsList{
		Term:     term,
		DF:       int64(len(docIDs)),
		Postings: make([]ciff.Posting, len(docIDs)),
	}
	var previous uint32
	for i, docID := range docIDs {
		record.Postings[i] = ciff.Posting{
			DocID: int32(docID - previous),
			TF:    int32(tf[docID]),
		}
		record.CF += int64(tf[docID])
		previous = docID
	}
	return record
}
