package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/oficina/internal/model"
)

const stockItemColumns = `id, code, description, brand, quantity, unit_cost, unit, image_mime, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockItem(row rowScanner) (*model.StockItem, error) {
	item := &model.StockItem{}
	var imageMime sql.NullString
	if err := row.Scan(&item.ID, &item.Code, &item.Description, &item.Brand, &item.CurrentQuantity,
		&item.UnitCost, &item.Unit, &imageMime, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func duplicateCode(code string) error {
	return &model.ConflictError{Message: fmt.Sprintf("Já existe um item com o código %s.", code)}
}

// CreateStockItem inserts a new stock item. A duplicate code (case-insensitive)
// yields a *model.ConflictError.
func CreateStockItem(ctx context.Context, db *sql.DB, item model.StockItem) (*model.StockItem, error) {
	item.Code = strings.TrimSpace(item.Code)
	if item.Unit == "" {
		item.Unit = model.DefaultUnit
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO stock_items (code, description, brand, quantity, unit_cost, unit)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Code, item.Description, item.Brand, item.CurrentQuantity, item.UnitCost, item.Unit,
	)
	if isUniqueViolation(err) {
		return nil, duplicateCode(item.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("creating stock item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting stock item id: %w", err)
	}

	return GetStockItem(ctx, db, id)
}

// GetStockItem returns a stock item by ID, or nil if it does not exist.
func GetStockItem(ctx context.Context, db *sql.DB, id int64) (*model.StockItem, error) {
	item, err := scanStockItem(db.QueryRowContext(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting stock item: %w", err)
	}
	return item, nil
}

// ListStockItems returns every stock item ordered by code.
func ListStockItems(ctx context.Context, db *sql.DB) ([]model.StockItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items ORDER BY code COLLATE NOCASE`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stock items: %w", err)
	}
	defer rows.Close()

	var items []model.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateStockItem overwrites the editable fields of a stock item. A missing
// id yields a *model.NotFoundError.
func UpdateStockItem(ctx context.Context, db *sql.DB, id int64, item model.StockItem) (*model.StockItem, error) {
	item.Code = strings.TrimSpace(item.Code)
	if item.Unit == "" {
		item.Unit = model.DefaultUnit
	}

	result, err := db.ExecContext(ctx,
		`UPDATE stock_items
		 SET code = ?, description = ?, brand = ?, quantity = ?, unit_cost = ?, unit = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Code, item.Description, item.Brand, item.CurrentQuantity, item.UnitCost, item.Unit, id,
	)
	if isUniqueViolation(err) {
		return nil, duplicateCode(item.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("updating stock item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking updated rows: %w", err)
	}
	if n == 0 {
		return nil, &model.NotFoundError{Resource: "stock item", ID: id}
	}

	return GetStockItem(ctx, db, id)
}

// DeleteStockItem permanently removes a stock item. Items used by a service
// order cannot be removed and yield a *model.ConflictError naming the order.
func DeleteStockItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var orderID int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT o.id, o.status
		 FROM service_order_items i
		 JOIN service_orders o ON o.id = i.order_id
		 WHERE i.stock_item_id = ?
		 ORDER BY o.status = 'ABERTA' DESC, o.id
		 LIMIT 1`, id,
	).Scan(&orderID, &status)
	switch {
	case err == nil:
		if status == model.ServiceOrderOpen {
			return &model.ConflictError{Message: fmt.Sprintf("Item vinculado à OS #%d, que ainda está aberta.", orderID)}
		}
		return &model.ConflictError{Message: fmt.Sprintf("Item vinculado ao histórico da OS #%d.", orderID)}
	case err != sql.ErrNoRows:
		return fmt.Errorf("checking service order references: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM stock_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return &model.NotFoundError{Resource: "stock item", ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stock item deletion: %w", err)
	}
	return nil
}

// SetStockItemImage sets a stock item's photo.
func SetStockItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stock_items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting stock item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &model.NotFoundError{Resource: "stock item", ID: id}
	}
	return nil
}

// GetStockItemImage returns a stock item's photo and MIME type.
func GetStockItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM stock_items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting stock item image: %w", err)
	}
	return image, mime.String, nil
}
