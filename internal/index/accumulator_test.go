package index

import (
	"strings"
	"testing"

	"github.com/indexforge/ciffbridge/internal/ciff"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

func TestAccumulatorDeltaDecoding(t *testing.T) {
	a := NewAccumulator()
	err := a.Add(&ciff.PostingsList{
		Term: "a",
		DF:   2,
		CF:   5,
		Postings: []ciff.Posting{
			{DocID: 3, TF: 1},
			{DocID: 2, TF: 4},
		},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	wantDocs := []uint32{3, 5}
	wantFreqs := []uint32{1, 4}
	gotDocs := a.Docs(0)
	gotFreqs := a.Freqs(0)
	for i := range wantDocs {
		if gotDocs[i] != wantDocs[i] {
			t.Errorf("docs[%d] = %d, want %d", i, gotDocs[i], wantDocs[i])
		}
		if gotFreqs[i] != wantFreqs[i] {
			t.Errorf("freqs[%d] = %d, want %d", i, gotFreqs[i], wantFreqs[i])
		}
	}
}

func TestAccumulatorTermIDAssignment(t *testing.T) {
	a := NewAccumulator()
	terms := []string{"zebra", "apple", "mango"}
	for _, term := range terms {
		if err := a.Add(&ciff.PostingsList{Term: term, DF: 0}); err != nil {
			t.Fatalf("add %q: %v", term, err)
		}
	}
	if a.TermCount() != len(terms) {
		t.Fatalf("term count = %d, want %d", a.TermCount(), len(terms))
	}
	// Arrival order, never lexicographic.
	for id, term := range terms {
		if a.Term(id) != term {
			t.Errorf("term id %d = %q, want %q", id, a.Term(id), term)
		}
	}
}

func TestAccumulatorMonotonicDocIDs(t *testing.T) {
	a := NewAccumulator()
	postings := make([]ciff.Posting, 100)
	for i := range postings {
		postings[i] = ciff.Posting{DocID: int32(i%7 + 1), TF: 1}
	}
	err := a.Add(&ciff.PostingsList{Term: "t", DF: int64(len(postings)), Postings: postings})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	docs := a.Docs(0)
	for i := 1; i < len(docs); i++ {
		if docs[i] <= docs[i-1] {
			t.Fatalf("docs[%d]=%d not greater than docs[%d]=%d", i, docs[i], i-1, docs[i-1])
		}
	}
}

func TestAccumulatorCountMismatch(t *testing.T) {
	a := NewAccumulator()
	err := a.Add(&ciff.PostingsList{
		Term: "broken",
		DF:   3,
		Postings: []ciff.Posting{
			{DocID: 1, TF: 1},
			{DocID: 1, TF: 1},
		},
	})
	if !cerrors.Is(err, cerrors.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Errorf("error should name the offending term, got %q", err.Error())
	}
	var mismatch *cerrors.CountMismatchError
	if !cerrors.As(err, &mismatch) {
		t.Fatalf("expected *CountMismatchError, got %T", err)
	}
	if mismatch.Declared != 3 || mismatch.Actual != 2 || mismatch.TermID != 0 {
		t.Errorf("mismatch detail = %+v", mismatch)
	}
}

func TestAccumulatorEmptyListIsLegal(t *testing.T) {
	a := NewAccumulator()
	if err := a.Add(&ciff.PostingsList{Term: "ghost", DF: 0}); err != nil {
		t.Fatalf("df=0 should be legal, got %v", err)
	}
	if len(a.Docs(0)) != 0 || len(a.Freqs(0)) != 0 {
		t.Errorf("expected empty slot for df=0 term")
	}
	if a.TermCount() != 1 {
		t.Errorf("empty term must still claim a term id")
	}
}

func TestAccumulatorRejectsNegativeValues(t *testing.T) {
	tests := []struct {
		name    string
		posting ciff.Posting
	}{
		{"negative delta", ciff.Posting{DocID: -1, TF: 1}},
		{"negative frequency", ciff.Posting{DocID: 1, TF: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccumulator()
			err := a.Add(&ciff.PostingsList{Term: "t", DF: 1, Postings: []ciff.Posting{tt.posting}})
			if !cerrors.Is(err, cerrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
