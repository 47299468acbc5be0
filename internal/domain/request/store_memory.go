package request

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development and tests. Reads return
// copies, so callers cannot mutate stored records.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]Request
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: map[string]Request{}, now: time.Now}
}

func (m *MemoryStore) Create(ctx context.Context, req Request) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = m.now()
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (m *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]Request, error) {
	return m.list(func(r Request) bool { return r.OwnerID == ownerID }), nil
}

func (m *MemoryStore) ListAll(ctx context.Context) ([]Request, error) {
	return m.list(func(Request) bool { return true }), nil
}

func (m *MemoryStore) list(keep func(Request) bool) []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Request, 0, len(m.requests))
	for _, req := range m.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sortNewestFirst(out)
	return out
}

func (m *MemoryStore) Update(ctx context.Context, id string, patch Patch) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if patch.Payload != nil {
		req.Payload = patch.Payload
	}
	if patch.Status != nil {
		req.Status = *patch.Status
	}
	if patch.AdminComment != nil {
		req.AdminComment = *patch.AdminComment
	}
	m.requests[id] = req
	return req, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

func sortNewestFirst(requests []Request) {
	slices.SortStableFunc(requests, func(a, b Request) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
