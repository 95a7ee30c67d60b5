// Package index holds the in-memory structures built during the decode
// phase: a dense term-id-keyed inverted index and the document length store.
// Both are built exactly once per run and consumed exactly once by the
// canonical encoder.
package index

import (
	"github.com/indexforge/ciffbridge/internal/ciff"
	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// Accumulator reconstructs absolute doc ids from delta-encoded postings
// lists and assigns term ids in strict arrival order. Term id i always maps
// to terms[i], docs[i], and freqs[i]; the three tables grow in lockstep so
// positional alignment holds by construction.
type Accumulator struct {
	terms    []string
	docs     [][]uint32
	freqs    [][]uint32
	postings int64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add folds one decoded postings list into the index. The declared document
// frequency must match the actual posting count; a mismatch poisons the
// whole run because every later term id would be misaligned. A list with
// df == 0 is legal and records an empty slot.
func (a *Accumulator) Add(record *ciff.PostingsList) error {
	if record.DF != int64(len(record.Postings)) {
		return &cerrors.CountMismatchError{
			Term:     record.Term,
			TermID:   len(a.terms),
			Declared: record.DF,
			Actual:   len(record.Postings),
		}
	}

	docs := make([]uint32, len(record.Postings))
	freqs := make([]uint32, len(record.Postings))
	var current uint32
	for i, posting := range record.Postings {
		if posting.DocID < 0 {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"term %q: negative docid delta %d at posting %d", record.Term, posting.DocID, i)
		}
		if posting.TF < 0 {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"term %q: negative frequency %d at posting %d", record.Term, posting.TF, i)
		}
		current += uint32(posting.DocID)
		docs[i] = current
		freqs[i] = uint32(posting.TF)
	}

	a.terms = append(a.terms, record.Term)
	a.docs = append(a.docs, docs)
	a.freqs = append(a.freqs, freqs)
	a.postings += int64(len(record.Postings))
	return nil
}

// TermCount returns the number of terms accumulated so far; it is also the
// next term id to be assigned.
func (a *Accumulator) TermCount() int {
	return len(a.terms)
}

// Term returns the term string for a term id.
func (a *Accumulator) Term(termID int) string {
	return a.terms[termID]
}

// Terms returns the lexicon in term id order. The slice is owned by the
// accumulator.
func (a *Accumulator) Terms() []string {
	return a.terms
}

// Docs returns the absolute, strictly increasing doc id sequence for a term
// id. The slice is owned by the accumulator.
func (a *Accumulator) Docs(termID int) []uint32 {
	return a.docs[termID]
}

// Freqs returns the term frequency sequence for a term id, parallel to
// Docs(termID).
func (a *Accumulator) Freqs(termID int) []uint32 {
	return a.freqs[termID]
}

// Postings returns the total number of postings across all terms.
func (a *Accumulator) Postings() int64 {
	return a.postings
}
