package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
)

type store struct {
	mu      sync.Mutex
	last    uint64
	records []*run.Record
}

// New returns a new in memory run.Store
func New() run.Store {
	return &store{}
}

// Save implements run.Store.Save
func (s *store) Save(_ context.Context, data *run.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++

	if item := s.find(data.RunId, data.Phase); item != nil {
		item.Signature = data.Signature
		item.State = data.State
		item.Error = data.Error

		item.CopyTo(data)

		return nil
	}

	data.Id = s.last
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}

	cloned := data.Clone()
	s.records = append(s.records, &cloned)

	return nil
}

// Get implements run.Store.Get
func (s *store) Get(_ context.Context, runId string, phase common.Phase) (*run.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(runId, phase)
	if item == nil {
		return nil, run.ErrRunNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByRun implements run.Store.GetAllByRun
func (s *store) GetAllByRun(_ context.Context, runId string) ([]*run.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.findByRun(runId)
	if len(items) == 0 {
		return nil, run.ErrRunNotFound
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Phase < items[j].Phase
	})

	res := make([]*run.Record, len(items))
	for i, item := range items {
		cloned := item.Clone()
		res[i] = &cloned
	}
	return res, nil
}

func (s *store) find(runId string, phase common.Phase) *run.Record {
	for _, item := range s.records {
		if item.RunId == runId && item.Phase == phase {
			return item
		}
	}
	return nil
}

func (s *store) findByRun(runId string) []*run.Record {
	var res []*run.Record
	for _, item := range s.records {
		if item.RunId == runId {
			res = append(res, item)
		}
	}
	return res
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
	s.records = nil
}
