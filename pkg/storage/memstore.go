package storage

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
)

var (
	_ Store = (*MemStore)(nil)
)

type MemStore struct {
	mu    sync.RWMutex
	tipMu sync.RWMutex

	objects map[cid.Cid][]byte
	tips    map[string]cid.Cid
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[cid.Cid][]byte),
		tips:    make(map[string]cid.Cid),
	}
}

func (m *MemStore) Put(_ context.Context, d []byte) (cid.Cid, error) {
	id, err := Sum(d)
	if err != nil {
		return cid.Undef, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[id]; !ok {
		m.objects[id] = append([]byte(nil), d...)
	}

	return id, nil
}

func (m *MemStore) Get(_ context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.objects[id]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), d...), nil
}

func (m *MemStore) Has(_ context.Context, id cid.Cid) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[id]
	return ok, nil
}

// Len returns the number of distinct objects held
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}

func (m *MemStore) GetTip(_ context.Context, chainID string) (cid.Cid, error) {
	m.tipMu.RLock()
	defer m.tipMu.RUnlock()

	tip, ok := m.tips[chainID]
	if !ok {
		return cid.Undef, ErrNotFound
	}

	return tip, nil
}

func (m *MemStore) SetTip(_ context.Context, chainID string, tip cid.Cid) error {
	if !tip.Defined() {
		return ErrInvalidCID
	}

	m.tipMu.Lock()
	defer m.tipMu.Unlock()

	m.tips[chainID] = tip

	return nil
}

func (m *MemStore) Close() error {
	return nil
}
