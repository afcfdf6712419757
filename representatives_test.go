package clusterx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNearest(t *testing.T) {
	testcases := []struct {
		name      string
		distances []uint
		maxDiv    uint
		index     int
		ok        bool
	}{
		{name: "empty", distances: nil, maxDiv: 100, ok: false},
		{name: "within", distances: []uint{6, 2, 4}, maxDiv: 1, index: 1, ok: true},
		{name: "tie keeps earliest", distances: []uint{4, 2, 2}, maxDiv: 1, index: 1, ok: true},
		{name: "above", distances: []uint{6, 4}, maxDiv: 1, ok: false},
		{name: "floor division", distances: []uint{3}, maxDiv: 1, index: 0, ok: true},
		{name: "exact zero", distances: []uint{0, 0}, maxDiv: 0, index: 0, ok: true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			index, ok := Nearest(tc.distances, tc.maxDiv)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.index, index)
			}
		})
	}
}

func TestRepresentativeSetAssign(t *testing.T) {
	reps := NewRepresentativeSet()
	steps := []struct {
		seq     string
		index   int
		created bool
	}{
		{seq: "AAAA", index: 0, created: true},
		{seq: "TTTT", index: 1, created: true},
		{seq: "AATT", index: 0, created: false}, // equally close to both
		{seq: "TTTA", index: 1, created: false},
		{seq: "GGGG", index: 2, created: true},
	}
	for _, s := range steps {
		index, created, err := reps.Assign(encode(t, DefaultAlphabet, s.seq), 2)
		require.Nil(t, err)
		require.Equalf(t, s.index, index, "index of %v", s.seq)
		require.Equalf(t, s.created, created, "created for %v", s.seq)
		require.Equal(t, reps.Len(), len(reps.Distances()))
	}
	require.Equal(t, "TTTT", DefaultAlphabet.DecodeString(reps.At(1)))
}

func TestRepresentativeSetFirstAlwaysCreated(t *testing.T) {
	reps := NewRepresentativeSet()
	index, created, err := reps.Assign(encode(t, DefaultAlphabet, "ATGC"), 0)
	require.Nil(t, err)
	require.True(t, created)
	require.Equal(t, 0, index)
}
