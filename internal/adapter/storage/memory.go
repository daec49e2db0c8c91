package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// MemoryStore implements the store-node ports in memory. It is used by
// tests and local development; the version check behaves like the MySQL
// conditional write.
type MemoryStore struct {
	mu       sync.Mutex
	stocks   map[string]domain.StockRecord
	changes  []domain.ChangeLogEntry
	idems    map[string]domain.IdempotencyRecord
	products map[string]domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stocks:   make(map[string]domain.StockRecord),
		idems:    make(map[string]domain.IdempotencyRecord),
		products: make(map[string]domain.Product),
	}
}

func (m *MemoryStore) GetStock(ctx context.Context, productID string) (*domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.stocks[productID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) CreateStock(ctx context.Context, rec domain.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stocks[rec.ProductID]; ok {
		return nil
	}
	m.stocks[rec.ProductID] = rec
	return nil
}

func (m *MemoryStore) UpdateStock(ctx context.Context, rec domain.StockRecord, change domain.ChangeLogEntry, idem *domain.IdempotencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.stocks[rec.ProductID]
	if !ok || cur.Version != rec.Version {
		return port.ErrVersionConflict
	}

	rec.Version++
	m.stocks[rec.ProductID] = rec
	m.changes = append(m.changes, change)
	if idem != nil {
		m.idems[idem.Key] = *idem
	}
	return nil
}

func (m *MemoryStore) ListChanges(ctx context.Context) ([]domain.ChangeLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ChangeLogEntry, len(m.changes))
	copy(out, m.changes)
	return out, nil
}

func (m *MemoryStore) ClearChanges(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.changes = nil
	return nil
}

func (m *MemoryStore) GetIdempotency(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.idems[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[p.ID] = p
	return nil
}

// MemoryCentral implements the central-node stock port in memory. WithinTx
// stages writes on a shadow copy and swaps it in only when the callback
// succeeds, matching the all-or-nothing batch merge.
type MemoryCentral struct {
	mu       sync.Mutex
	stocks   map[string]domain.CentralStockRecord
	products map[string]domain.Product
}

func NewMemoryCentral() *MemoryCentral {
	return &MemoryCentral{
		stocks:   make(map[string]domain.CentralStockRecord),
		products: make(map[string]domain.Product),
	}
}

func (m *MemoryCentral) GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.stocks[productID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryCentral) WithinTx(ctx context.Context, fn func(tx port.CentralStockTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	shadow := make(map[string]domain.CentralStockRecord, len(m.stocks))
	for k, v := range m.stocks {
		shadow[k] = v
	}

	if err := fn(&memoryCentralTx{stocks: shadow}); err != nil {
		return err
	}
	m.stocks = shadow
	return nil
}

func (m *MemoryCentral) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryCentral) CreateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[p.ID] = p
	return nil
}

type memoryCentralTx struct {
	stocks map[string]domain.CentralStockRecord
}

func (t *memoryCentralTx) GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error) {
	rec, ok := t.stocks[productID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t *memoryCentralTx) UpsertStock(ctx context.Context, rec domain.CentralStockRecord) error {
	t.stocks[rec.ProductID] = rec
	return nil
}

// MemorySnapshotCache is a map-backed SnapshotCache for tests.
type MemorySnapshotCache struct {
	mu    sync.Mutex
	snaps map[string]domain.StockSnapshot
}

func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{snaps: make(map[string]domain.StockSnapshot)}
}

func (m *MemorySnapshotCache) GetSnapshot(ctx context.Context, productID string) (*domain.StockSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.snaps[productID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *MemorySnapshotCache) SetSnapshot(ctx context.Context, snap domain.StockSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snaps[snap.ProductID] = snap
	return nil
}
