// Package benchmark contains Go benchmarks for the stream decoder, the
// accumulator, and the analyzer, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/indexforge/ciffbridge/internal/analyzer"
	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/internal/index"
)

func syntheticStream(b *testing.B, terms, postingsPerTerm int) []byte {
	b.Helper()
	var buf bytes.Buffer
	w := ciff.NewWriter(&buf)
	for t := 0; t < terms; t++ {
		record := &ciff.PostingsList{
			Term:     fmt.Sprintf("term-%06d", t),
			DF:       int64(postingsPerTerm),
			Postings: make([]ciff.Posting, postingsPerTerm),
		}
		for p := 0; p < postingsPerTerm; p++ {
			record.Postings[p] = ciff.Posting{DocID: int32(p%13 + 1), TF: int32(p%5 + 1)}
			record.CF += int64(p%5 + 1)
		}
		if err := w.Write(record); err != nil {
			b.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		b.Fatalf("flush: %v", err)
	}
	return buf.Bytes()
}

// BenchmarkStreamDecode measures frame decode throughput over a synthetic
// 1000-term stream.
func BenchmarkStreamDecode(b *testing.B) {
	stream := syntheticStream(b, 1000, 64)
	b.SetBytes(int64(len(stream)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reader := ciff.NewReader(bytes.NewReader(stream))
		for {
			if _, err := reader.Next(); err == io.EOF {
				break
			} else if err != nil {
				b.Fatalf("next: %v", err)
			}
		}
	}
}

// BenchmarkAccumulatorAdd measures per-record delta decoding and index
// growth.
func BenchmarkAccumulatorAdd(b *testing.B) {
	record := &ciff.PostingsList{
		Term:     "bench",
		DF:       128,
		Postings: make([]ciff.Posting, 128),
	}
	for i := range record.Postings {
		record.Postings[i] = ciff.Posting{DocID: int32(i%11 + 1), TF: 1}
	}

	accumulator := index.NewAccumulator()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := accumulator.Add(record); err != nil {
			b.Fatalf("add: %v", err)
		}
	}
}

// BenchmarkTokenize measures analyzer throughput on a short document.
func BenchmarkTokenize(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog, again and again, 42 times."
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokens := analyzer.Tokenize(text)
		_ = tokens
	}
}
