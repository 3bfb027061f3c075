package product

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catalogo/service/internal/storage"
)

var errConnLost = errors.New("connection lost")

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu     sync.Mutex
	rows   map[int64]Product
	nextID int64

	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]Product{}, nextID: 1}
}

func (m *memStore) put(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	if p.ID >= m.nextID {
		m.nextID = p.ID + 1
	}
}

func (m *memStore) row(id int64) (Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	return p, ok
}

func (m *memStore) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = m.nextID
	m.nextID++
	m.rows[p.ID] = *p
	return nil
}

func (m *memStore) List(context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memStore) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rows[p.ID]; !ok {
		return ErrNotFound
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

// spyImages wraps a LocalStorage, counting calls and optionally failing deletes.
type spyImages struct {
	*storage.LocalStorage
	mu        sync.Mutex
	calls     int
	deleteErr error
}

func newSpyImages(t *testing.T) *spyImages {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return &spyImages{LocalStorage: local}
}

func (s *spyImages) touch() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *spyImages) Exists(ctx context.Context, name string) (bool, error) {
	s.touch()
	return s.LocalStorage.Exists(ctx, name)
}

func (s *spyImages) Delete(ctx context.Context, name string) error {
	s.touch()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.LocalStorage.Delete(ctx, name)
}

func (s *spyImages) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// seed stores an image directly, bypassing the call counter.
func (s *spyImages) seed(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, s.LocalStorage.Save(context.Background(), name, strings.NewReader("img"), 3, "image/png"))
}

func (s *spyImages) has(t *testing.T, name string) bool {
	t.Helper()
	ok, err := s.LocalStorage.Exists(context.Background(), name)
	require.NoError(t, err)
	return ok
}

func strPtr(s string) *string {
	return &s
}
