package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// StoreMySQL is the store node's durable storage: stock ledger, change
// outbox, idempotency requests and the product catalog in one database.
type StoreMySQL struct {
	db *sql.DB
}

func NewStoreMySQL(db *sql.DB) *StoreMySQL {
	return &StoreMySQL{db: db}
}

func (m *StoreMySQL) GetStock(ctx context.Context, productID string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := m.db.QueryRowContext(ctx, `
		SELECT product_id, on_hand, allocated, version, updated_at
		FROM stock WHERE product_id = ?`, productID,
	).Scan(&rec.ProductID, &rec.OnHand, &rec.Allocated, &rec.Version, &rec.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return &rec, nil
}

func (m *StoreMySQL) CreateStock(ctx context.Context, rec domain.StockRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock (product_id, on_hand, allocated, version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE product_id = product_id`,
		rec.ProductID, rec.OnHand, rec.Allocated, rec.Version, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// UpdateStock performs the conditional version write. The stock update, the
// change log append and the optional idempotency insert commit together or
// not at all; zero affected rows on the update means a concurrent writer won
// and nothing is written.
func (m *StoreMySQL) UpdateStock(ctx context.Context, rec domain.StockRecord, change domain.ChangeLogEntry, idem *domain.IdempotencyRecord) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE stock
		SET on_hand = ?, allocated = ?, updated_at = ?, version = version + 1
		WHERE product_id = ? AND version = ?`,
		rec.OnHand, rec.Allocated, rec.UpdatedAt, rec.ProductID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO change_log (id, product_id, updated_at)
		VALUES (?, ?, ?)`,
		change.ID.String(), change.ProductID, change.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert change log: %w", err)
	}

	if idem != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO idempotency_request (id, idempotency_key, request_hash, created_at)
			VALUES (?, ?, ?, ?)`,
			idem.ID.String(), idem.Key, idem.RequestHash, idem.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert idempotency request: %w", err)
		}
	}

	return tx.Commit()
}

func (m *StoreMySQL) ListChanges(ctx context.Context) ([]domain.ChangeLogEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, product_id, updated_at FROM change_log`)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChangeLogEntry
	for rows.Next() {
		var id string
		var e domain.ChangeLogEntry
		if err := rows.Scan(&id, &e.ProductID, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse change log id: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return entries, nil
}

func (m *StoreMySQL) ClearChanges(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM change_log`); err != nil {
		return fmt.Errorf("clear change log: %w", err)
	}
	return nil
}

func (m *StoreMySQL) GetIdempotency(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	var id string
	var rec domain.IdempotencyRecord
	err := m.db.QueryRowContext(ctx, `
		SELECT id, idempotency_key, request_hash, created_at
		FROM idempotency_request WHERE idempotency_key = ?`, key,
	).Scan(&id, &rec.Key, &rec.RequestHash, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query idempotency request: %w", err)
	}
	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse idempotency id: %w", err)
	}
	return &rec, nil
}

func (m *StoreMySQL) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listProducts(ctx, m.db)
}

func (m *StoreMySQL) CreateProduct(ctx context.Context, p domain.Product) error {
	return createProduct(ctx, m.db, p)
}

func listProducts(ctx context.Context, db *sql.DB) ([]domain.Product, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, price, updated_at FROM product ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func createProduct(ctx context.Context, db *sql.DB, p domain.Product) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO product (id, name, price, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), price = VALUES(price), updated_at = VALUES(updated_at)`,
		p.ID, p.Name, p.Price, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}
