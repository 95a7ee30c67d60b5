package index

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

// DocLengths associates doc ids with document lengths. Input order is
// arbitrary; the roaring bitmap keeps the id set, so serialization can walk
// it in ascending doc id order without a sort pass. Duplicate doc ids are
// resolved last-write-wins.
type DocLengths struct {
	ids     *roaring.Bitmap
	lengths map[uint32]uint32
}

// NewDocLengths returns an empty store.
func NewDocLengths() *DocLengths {
	return &DocLengths{
		ids:     roaring.New(),
		lengths: make(map[uint32]uint32),
	}
}

// Set records the length for a doc id, overwriting any earlier value.
func (d *DocLengths) Set(docID, length uint32) {
	d.ids.Add(docID)
	d.lengths[docID] = length
}

// Get returns the length recorded for a doc id.
func (d *DocLengths) Get(docID uint32) (uint32, bool) {
	length, ok := d.lengths[docID]
	return length, ok
}

// Len returns the number of distinct doc ids.
func (d *DocLengths) Len() int {
	return int(d.ids.GetCardinality())
}

// Ascending returns all lengths ordered by ascending doc id.
func (d *DocLengths) Ascending() []uint32 {
	lengths := make([]uint32, 0, d.Len())
	it := d.ids.Iterator()
	for it.HasNext() {
		lengths = append(lengths, d.lengths[it.Next()])
	}
	return lengths
}

// ReadFrom ingests whitespace-delimited "docid length" lines until EOF.
// Blank lines are ignored; anything else that fails to parse as a pair of
// unsigned 32-bit integers is fatal.
func (d *DocLengths) ReadFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"document length line %d: expected \"docid length\", got %q", lineNo, line)
		}
		docID, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"document length line %d: bad docid %q: %v", lineNo, fields[0], err)
		}
		length, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return cerrors.Newf(cerrors.ErrInvalidInput, cerrors.ExitBadInput,
				"document length line %d: bad length %q: %v", lineNo, fields[1], err)
		}
		d.Set(uint32(docID), uint32(length))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading document lengths: %w", err)
	}
	return nil
}

// WriteText emits "docid length" lines in ascending doc id order, the same
// format ReadFrom accepts.
func (d *DocLengths) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	it := d.ids.Iterator()
	for it.HasNext() {
		docID := it.Next()
		if _, err := fmt.Fprintf(bw, "%d %d\n", docID, d.lengths[docID]); err != nil {
			return fmt.Errorf("writing document lengths: %w", err)
		}
	}
	return bw.Flush()
}
