package repository

import (
	"context"
	"sync"

	"github.com/nikolayk812/cart-demo/internal/domain"
)

// Memory is an in-process repository. It stores the encoded snapshot so
// callers never share a backing array with it.
type Memory struct {
	mu   sync.RWMutex
	data []byte

	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return domain.Cart{Items: []domain.Product{}}, nil
	}

	return decodeCart(m.data)
}

func (m *Memory) Save(_ context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data
	m.saves++

	return nil
}

// Saves reports how many snapshots have been written.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}
