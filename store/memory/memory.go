// Package memory provides an in-process store.RunStore.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/pilgrim-ai/pilgrim/store"
)

// MemoryRunStore keeps records in a map. Records are copied on the way in
// and out, so callers cannot modify stored data.
type MemoryRunStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryRunStore creates an empty store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{records: make(map[string][]byte)}
}

// Save implements store.RunStore.
func (s *MemoryRunStore) Save(_ context.Context, record *store.RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = data
	return nil
}

// Load implements store.RunStore.
func (s *MemoryRunStore) Load(_ context.Context, id string) (*store.RunRecord, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return decode(data)
}

// List implements store.RunStore.
func (s *MemoryRunStore) List(_ context.Context) ([]*store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*store.RunRecord, 0, len(s.records))
	for _, data := range s.records {
		r, err := decode(data)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

// Delete implements store.RunStore.
func (s *MemoryRunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Close implements store.RunStore.
func (s *MemoryRunStore) Close() error {
	return nil
}

func decode(data []byte) (*store.RunRecord, error) {
	var r store.RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &r, nil
}
