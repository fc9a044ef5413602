package export

import (
	"context"
	"fmt"
	"sync"

	"centime/internal/core"
)

// Memory is an in-process Sink used in tests and local development.
type Memory struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ Sink = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{} }

// Append stores the batch and returns a synthetic reference.
func (m *Memory) Append(_ context.Context, txns []core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, txns...)
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (m *Memory) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
