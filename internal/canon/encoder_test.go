package canon

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indexforge/ciffbridge/internal/ciff"
	"github.com/indexforge/ciffbridge/internal/index"
)

func u32bytes(values ...uint32) []byte {
	out := make([]byte, 0, 4*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

func buildIndex(t *testing.T, records ...*ciff.PostingsList) *index.Accumulator {
	t.Helper()
	a := index.NewAccumulator()
	for _, record := range records {
		if err := a.Add(record); err != nil {
			t.Fatalf("add %q: %v", record.Term, err)
		}
	}
	return a
}

func TestEncoderArtifactLayout(t *testing.T) {
	idx := buildIndex(t,
		&ciff.PostingsList{Term: "a", DF: 2, CF: 5, Postings: []ciff.Posting{
			{DocID: 3, TF: 1},
			{DocID: 2, TF: 4},
		}},
		&ciff.PostingsList{Term: "b", DF: 1, CF: 2, Postings: []ciff.Posting{
			{DocID: 1, TF: 2},
		}},
	)
	lens := index.NewDocLengths()
	lens.Set(1, 5)
	lens.Set(3, 9)
	lens.Set(5, 2)

	dir := t.TempDir()
	basename := filepath.Join(dir, "coll")
	if err := NewEncoder(basename, 0).Encode(context.Background(), idx, lens); err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		suffix string
		want   []byte
	}{
		// doc_count header, then per-term [count][ids].
		{DocsSuffix, append(u32bytes(3), append(u32bytes(2, 3, 5), u32bytes(1, 1)...)...)},
		{FreqsSuffix, append(u32bytes(2, 1, 4), u32bytes(1, 2)...)},
		// Ascending by doc id 1, 3, 5.
		{SizesSuffix, u32bytes(3, 5, 9, 2)},
		{LexiconSuffix, []byte("a\nb\n")},
	}
	for _, tt := range tests {
		got, err := os.ReadFile(basename + tt.suffix)
		if err != nil {
			t.Fatalf("reading %s: %v", tt.suffix, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.suffix, got, tt.want)
		}
	}
}

func TestEncoderEmitsEmptySlots(t *testing.T) {
	idx := buildIndex(t,
		&ciff.PostingsList{Term: "present", DF: 1, CF: 1, Postings: []ciff.Posting{{DocID: 0, TF: 1}}},
		&ciff.PostingsList{Term: "ghost", DF: 0},
		&ciff.PostingsList{Term: "trailing", DF: 1, CF: 1, Postings: []ciff.Posting{{DocID: 2, TF: 1}}},
	)
	lens := index.NewDocLengths()
	lens.Set(0, 1)
	lens.Set(2, 1)

	dir := t.TempDir()
	basename := filepath.Join(dir, "coll")
	if err := NewEncoder(basename, 0).Encode(context.Background(), idx, lens); err != nil {
		t.Fatalf("encode: %v", err)
	}

	docsData, err := os.ReadFile(basename + DocsSuffix)
	if err != nil {
		t.Fatalf("reading docs: %v", err)
	}
	docs := NewCollection(docsData)
	if _, err := docs.ReadUint32(); err != nil {
		t.Fatalf("header: %v", err)
	}
	var lengths []int
	for {
		seq, err := docs.Next()
		if err != nil {
			break
		}
		lengths = append(lengths, len(seq))
	}
	// The ghost slot must appear as a zero-length sequence, never be skipped.
	want := []int{1, 0, 1}
	if len(lengths) != len(want) {
		t.Fatalf("got %d sequences, want %d", len(lengths), len(want))
	}
	for i := range want {
		if lengths[i] != want[i] {
			t.Errorf("sequence %d has %d elements, want %d", i, lengths[i], want[i])
		}
	}
}

func TestEncoderPositionalAlignment(t *testing.T) {
	records := []*ciff.PostingsList{
		{Term: "x", DF: 0},
		{Term: "y", DF: 1, CF: 9, Postings: []ciff.Posting{{DocID: 4, TF: 9}}},
		{Term: "z", DF: 0},
	}
	idx := buildIndex(t, records...)
	lens := index.NewDocLengths()
	lens.Set(4, 7)

	dir := t.TempDir()
	basename := filepath.Join(dir, "coll")
	if err := NewEncoder(basename, 0).Encode(context.Background(), idx, lens); err != nil {
		t.Fatalf("encode: %v", err)
	}

	lexData, err := os.ReadFile(basename + LexiconSuffix)
	if err != nil {
		t.Fatalf("reading lexicon: %v", err)
	}
	lexLines := strings.Count(string(lexData), "\n")

	countSequences := func(suffix string, skipHeader bool) int {
		data, err := os.ReadFile(basename + suffix)
		if err != nil {
			t.Fatalf("reading %s: %v", suffix, err)
		}
		c := NewCollection(data)
		if skipHeader {
			if _, err := c.ReadUint32(); err != nil {
				t.Fatalf("%s header: %v", suffix, err)
			}
		}
		n := 0
		for {
			if _, err := c.Next(); err != nil {
				return n
			}
			n++
		}
	}

	docSeqs := countSequences(DocsSuffix, true)
	freqSeqs := countSequences(FreqsSuffix, false)
	if lexLines != len(records) || docSeqs != len(records) || freqSeqs != len(records) {
		t.Errorf("alignment broken: lexicon=%d docs=%d freqs=%d terms=%d",
			lexLines, docSeqs, freqSeqs, len(records))
	}
}

func TestEncoderLeavesNoArtifactsOnFailure(t *testing.T) {
	idx := buildIndex(t, &ciff.PostingsList{Term: "t", DF: 0})
	lens := index.NewDocLengths()

	dir := t.TempDir()
	// Point the encoder at a basename whose directory does not exist, so
	// file creation fails.
	basename := filepath.Join(dir, "missing", "coll")
	if err := NewEncoder(basename, 0).Encode(context.Background(), idx, lens); err == nil {
		t.Fatal("expected encode to fail")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover files, found %d", len(entries))
	}
}
