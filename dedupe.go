package clusterx

import (
	"github.com/projectdiscovery/clusterx/internal/dedupe"
	"github.com/projectdiscovery/gologger"
)

// MaxInMemoryDedupeSize (default : 100 MB)
var MaxInMemoryDedupeSize int64 = 100 * 1024 * 1024

type DedupeBackend interface {
	// Has reports whether key was already added
	Has(key string) bool
	// Upsert add/update key to backend/database
	Upsert(key string) error
	// Len returns number of stored keys
	Len() int
	// Cleanup cleans any residuals after deduping
	Cleanup()
}

// SeenSet records every encoded vector of a run so exact repeats
// can be skipped
type SeenSet struct {
	backend DedupeBackend
}

// NewSeenSet returns a seen set for an input of roughly byteLen bytes.
// Inputs larger than MaxInMemoryDedupeSize, or disk=true, use a temporary
// on-disk store instead of a map.
// Note: If byteLen is not correct/specified clusterx may consume lot of memory
func NewSeenSet(byteLen int64, disk bool) (*SeenSet, error) {
	if !disk && byteLen <= MaxInMemoryDedupeSize {
		return &SeenSet{backend: dedupe.NewMapBackend()}, nil
	}
	gologger.Verbose().Msgf("Using disk backed dedupe store")
	backend, err := dedupe.NewHybridBackend()
	if err != nil {
		return nil, err
	}
	return &SeenSet{backend: backend}, nil
}

// Insert adds v and reports whether it was not seen before
func (s *SeenSet) Insert(v *Vector) (bool, error) {
	key := v.Key()
	if s.backend.Has(key) {
		return false, nil
	}
	if err := s.backend.Upsert(key); err != nil {
		return false, err
	}
	return true, nil
}

// Len returns the number of distinct vectors seen
func (s *SeenSet) Len() int {
	return s.backend.Len()
}

// Cleanup releases the backend
func (s *SeenSet) Cleanup() {
	s.backend.Cleanup()
}
