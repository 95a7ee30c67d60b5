// Package ciff implements the wire codec for the interchange postings
// format: a raw concatenation of [uvarint length][protobuf payload] frames,
// one per-term postings list each, with no outer envelope.
//
// The schema matches the common index format postings list:
//
//	message PostingsList { string term = 1; int64 df = 2; int64 cf = 3; repeated Posting postings = 4; }
//	message Posting      { int32 docid = 1; int32 tf = 2; }
//
// Doc ids are delta-encoded within each list: every docid is an offset from
// the previous posting's absolute docid, starting from zero.
package ciff

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// PostingsList field numbers.
const (
	fieldTerm     = 1
	fieldDF       = 2
	fieldCF       = 3
	fieldPostings = 4
)

// Posting field numbers.
const (
	fieldDocID = 1
	fieldTF    = 2
)

// Posting is one (docid delta, term frequency) pair within a postings list.
type Posting struct {
	DocID int32
	TF    int32
}

// PostingsList is a single per-term postings record. DF declares the number
// of postings and must match len(Postings); CF is the collection frequency.
type PostingsList struct {
	Term     string
	DF       int64
	CF       int64
	Postings []Posting
}

func (p *Posting) append(b []byte) []byte {
	b = protowire.AppendTag(b, fieldDocID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(p.DocID)))
	b = protowire.AppendTag(b, fieldTF, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(p.TF)))
	return b
}

func (p *Posting) unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == fieldDocID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			p.DocID = int32(v)
			data = data[n:]
		case num == fieldTF && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			p.TF = int32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

// Append marshals the postings list and appends the encoded bytes to b.
func (p *PostingsList) Append(b []byte) []byte {
	b = protowire.AppendTag(b, fieldTerm, protowire.BytesType)
	b = protowire.AppendString(b, p.Term)
	b = protowire.AppendTag(b, fieldDF, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.DF))
	b = protowire.AppendTag(b, fieldCF, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.CF))
	for i := range p.Postings {
		b = protowire.AppendTag(b, fieldPostings, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(postingSize(&p.Postings[i])))
		b = p.Postings[i].append(b)
	}
	return b
}

// Marshal returns the protobuf encoding of the postings list.
func (p *PostingsList) Marshal() []byte {
	return p.Append(nil)
}

// Unmarshal decodes a postings list from its protobuf payload, replacing any
// previous contents. Unknown fields are skipped.
func (p *PostingsList) Unmarshal(data []byte) error {
	*p = PostingsList{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("postings list tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldTerm && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("term field: %w", protowire.ParseError(n))
			}
			p.Term = string(v)
			data = data[n:]
		case num == fieldDF && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("df field: %w", protowire.ParseError(n))
			}
			p.DF = int64(v)
			data = data[n:]
		case num == fieldCF && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("cf field: %w", protowire.ParseError(n))
			}
			p.CF = int64(v)
			data = data[n:]
		case num == fieldPostings && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("postings field: %w", protowire.ParseError(n))
			}
			var posting Posting
			if err := posting.unmarshal(v); err != nil {
				return fmt.Errorf("posting %d: %w", len(p.Postings), err)
			}
			p.Postings = append(p.Postings, posting)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}

func postingSize(p *Posting) int {
	return protowire.SizeTag(fieldDocID) + protowire.SizeVarint(uint64(int64(p.DocID))) +
		protowire.SizeTag(fieldTF) + protowire.SizeVarint(uint64(int64(p.TF)))
}
