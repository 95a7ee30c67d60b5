package canon

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

func TestPayloadVectorElements(t *testing.T) {
	terms := []string{"aardvark", "cat", "dog", "gnu", "mouse", "zebra"}
	vector := PayloadVectorFromStrings(terms)

	slice, err := NewPayloadSlice(vector.Bytes())
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if slice.Count() != len(terms) {
		t.Fatalf("count = %d, want %d", slice.Count(), len(terms))
	}
	for i, term := range terms {
		got, ok := slice.At(i)
		if !ok {
			t.Fatalf("At(%d) out of range", i)
		}
		if string(got) != term {
			t.Errorf("At(%d) = %q, want %q", i, got, term)
		}
	}
	if _, ok := slice.At(len(terms)); ok {
		t.Error("At past the end should report out of range")
	}
	if _, ok := slice.At(-1); ok {
		t.Error("At(-1) should report out of range")
	}
}

func TestPayloadVectorEmpty(t *testing.T) {
	slice, err := NewPayloadSlice(PayloadVectorFromStrings(nil).Bytes())
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if slice.Count() != 0 {
		t.Errorf("count = %d, want 0", slice.Count())
	}
}

func TestPayloadSliceRejectsCorruptFraming(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{1, 2, 3}},
		{"declared count too large", binary.LittleEndian.AppendUint64(
			binary.LittleEndian.AppendUint64(nil, 100), 0)},
		{"payload shorter than offsets", func() []byte {
			data := PayloadVectorFromStrings([]string{"abc"}).Bytes()
			return data[:len(data)-1]
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPayloadSlice(tt.data); !cerrors.Is(err, cerrors.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestBuildLexicon(t *testing.T) {
	var out bytes.Buffer
	if err := BuildLexicon(strings.NewReader("alpha\nbeta\ngamma\n"), &out); err != nil {
		t.Fatalf("build: %v", err)
	}
	slice, err := NewPayloadSlice(out.Bytes())
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if slice.Count() != len(want) {
		t.Fatalf("count = %d, want %d", slice.Count(), len(want))
	}
	for i, term := range want {
		got, _ := slice.At(i)
		if string(got) != term {
			t.Errorf("At(%d) = %q, want %q", i, got, term)
		}
	}
}
