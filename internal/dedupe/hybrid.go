package dedupe

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/hmap/store/hybrid"
	errorutil "github.com/projectdiscovery/utils/errors"
)

var present = []byte{1}

// HybridBackend keeps keys in a temporary leveldb store that is
// removed on Cleanup
type HybridBackend struct {
	storage *hybrid.HybridMap
	count   int
}

func NewHybridBackend() (*HybridBackend, error) {
	db, err := hybrid.New(hybrid.DefaultDiskOptions)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("failed to create temp dir for clusterx dedupe")
	}
	return &HybridBackend{storage: db}, nil
}

func (h *HybridBackend) Has(elem string) bool {
	_, ok := h.storage.Get(elem)
	return ok
}

func (h *HybridBackend) Upsert(elem string) error {
	if err := h.storage.Set(elem, present); err != nil {
		return errorutil.NewWithErr(err).Msgf("dedupe: leveldb: failed to write key")
	}
	h.count++
	return nil
}

func (h *HybridBackend) Len() int {
	return h.count
}

func (h *HybridBackend) Cleanup() {
	if err := h.storage.Close(); err != nil {
		gologger.Warning().Msgf("dedupe: leveldb: cleanup failed: %v", err)
	}
}
