package snapshot

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

// MemoryStore keeps rows in process memory. Used when persistence is off.
type MemoryStore struct {
	mu     sync.Mutex
	policy Policy
	schema []string
	rows   []model.Row
}

func NewMemoryStore(policy Policy) *MemoryStore { return &MemoryStore{policy: policy} }

func (m *MemoryStore) Append(row model.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := reconcile(m.schema, row, m.policy)
	if err != nil {
		return err
	}
	if m.schema == nil {
		m.schema = out.Names()
	}
	m.rows = append(m.rows, out)
	return nil
}

func (m *MemoryStore) LoadLatest() (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return nil, ErrNotFound
	}
	return m.rows[len(m.rows)-1].Known(), nil
}

func (m *MemoryStore) History() ([]model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

func (m *MemoryStore) Schema() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.schema)
}

func (m *MemoryStore) Close() error { return nil }
