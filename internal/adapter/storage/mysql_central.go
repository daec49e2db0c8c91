package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// CentralMySQL is the central node's durable storage for the reconciled
// stock view and the product catalog.
type CentralMySQL struct {
	db *sql.DB
}

func NewCentralMySQL(db *sql.DB) *CentralMySQL {
	return &CentralMySQL{db: db}
}

func (m *CentralMySQL) GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error) {
	return scanCentralStock(m.db.QueryRowContext(ctx, `
		SELECT product_id, quantity, updated_at
		FROM stock WHERE product_id = ?`, productID))
}

// WithinTx runs fn inside a single transaction so a whole merge batch
// commits or rolls back as one unit.
func (m *CentralMySQL) WithinTx(ctx context.Context, fn func(tx port.CentralStockTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&centralMySQLTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *CentralMySQL) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listProducts(ctx, m.db)
}

func (m *CentralMySQL) CreateProduct(ctx context.Context, p domain.Product) error {
	return createProduct(ctx, m.db, p)
}

type centralMySQLTx struct {
	tx *sql.Tx
}

func (t *centralMySQLTx) GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error) {
	return scanCentralStock(t.tx.QueryRowContext(ctx, `
		SELECT product_id, quantity, updated_at
		FROM stock WHERE product_id = ? FOR UPDATE`, productID))
}

func (t *centralMySQLTx) UpsertStock(ctx context.Context, rec domain.CentralStockRecord) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO stock (product_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), updated_at = VALUES(updated_at)`,
		rec.ProductID, rec.Quantity, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func scanCentralStock(row *sql.Row) (*domain.CentralStockRecord, error) {
	var rec domain.CentralStockRecord
	err := row.Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return &rec, nil
}
