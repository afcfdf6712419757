package dedupe

import "runtime/debug"

type MapBackend struct {
	storage map[string]struct{}
}

func NewMapBackend() *MapBackend {
	return &MapBackend{storage: map[string]struct{}{}}
}

func (m *MapBackend) Has(elem string) bool {
	_, ok := m.storage[elem]
	return ok
}

func (m *MapBackend) Upsert(elem string) error {
	m.storage[elem] = struct{}{}
	return nil
}

func (m *MapBackend) Len() int {
	return len(m.storage)
}

func (m *MapBackend) Cleanup() {
	m.storage = nil
	// By default GC doesnot release buffered/allocated memory
	// since there always is possibilitly of needing it again/immediately
	// and releases memory in chunks
	// debug.FreeOSMemory forces GC to release allocated memory at once
	debug.FreeOSMemory()
}
