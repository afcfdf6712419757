package clusterx

import (
	"io"
	"strconv"
)

// Sequence is one input record
type Sequence struct {
	ID  string
	Seq []byte
}

// Source yields sequences in input order and returns io.EOF once exhausted.
// Any other error is fatal for the run consuming it.
type Source interface {
	Next() (*Sequence, error)
}

// SliceSource serves sequences from memory
type SliceSource struct {
	items []*Sequence
	pos   int
}

// NewSliceSource returns a source over seqs, ids are their 1-based positions
func NewSliceSource(seqs ...string) *SliceSource {
	items := make([]*Sequence, 0, len(seqs))
	for i, s := range seqs {
		items = append(items, &Sequence{ID: strconv.Itoa(i + 1), Seq: []byte(s)})
	}
	return &SliceSource{items: items}
}

func (s *SliceSource) Next() (*Sequence, error) {
	if s.pos >= len(s.items) {
		return nil, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}
