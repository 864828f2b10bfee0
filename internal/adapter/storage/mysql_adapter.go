package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

const itemColumns = `id, name, brand, barcode, category, sub_category, tire_size,
	price_cents, quantity, min_stock, description, is_active, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.Brand, &it.Barcode, &it.Category,
		&it.SubCategory, &it.TireSize, &it.PriceCents, &it.Quantity,
		&it.MinStock, &it.Description, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE is_active = 1
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE id = ? AND is_active = 1`, id)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return it, nil
}

func (m *MySQLAdapter) GetItemByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE barcode = ? AND is_active = 1`, barcode)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item by barcode: %w", err)
	}
	return it, nil
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	taken, err := m.barcodeTaken(ctx, item.Barcode, "")
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrBarcodeTaken
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO inventory (id, name, brand, barcode, category, sub_category,
			tire_size, price_cents, quantity, min_stock, description, is_active,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		item.ID, item.Name, item.Brand, item.Barcode, item.Category,
		item.SubCategory, item.TireSize, item.PriceCents, item.Quantity,
		item.MinStock, item.Description, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	taken, err := m.barcodeTaken(ctx, item.Barcode, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrBarcodeTaken
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET name = ?, brand = ?, barcode = ?, category = ?, sub_category = ?,
			tire_size = ?, price_cents = ?, quantity = ?, min_stock = ?,
			description = ?, updated_at = NOW()
		WHERE id = ? AND is_active = 1`,
		item.Name, item.Brand, item.Barcode, item.Category, item.SubCategory,
		item.TireSize, item.PriceCents, item.Quantity, item.MinStock,
		item.Description, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *MySQLAdapter) DeactivateItem(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory SET is_active = 0, updated_at = NOW()
		WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustQuantity applies a signed delta with the non-negative guard in the
// WHERE clause, so a racing decrement can never drive quantity below zero.
func (m *MySQLAdapter) AdjustQuantity(ctx context.Context, id string, delta int) (int, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity + ?, updated_at = NOW()
		WHERE id = ? AND is_active = 1 AND quantity + ? >= 0`,
		delta, id, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("adjust quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		available, err := m.currentQuantity(ctx, id)
		if err != nil {
			return 0, err
		}
		return 0, &domain.InsufficientStockError{ItemID: id, Available: available, Requested: -delta}
	}

	return m.currentQuantity(ctx, id)
}

// CreateSale writes the sale row, its item snapshots, and the matching stock
// decrements in one transaction. Any conditional decrement touching zero rows
// aborts the whole transaction, so a persisted sale always has its stock
// accounted for.
func (m *MySQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, bill_number, customer_name, customer_phone,
			repair_fee_cents, repair_description, total_cents, cashier, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.BillNumber, sale.CustomerName, sale.CustomerPhone,
		sale.RepairFeeCents, sale.RepairDescription, sale.TotalCents,
		sale.Cashier, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, it := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, inventory_id, item_name,
				item_price_cents, quantity, subtotal_cents)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sale.ID, it.ItemID, it.Name, it.PriceCents, it.Quantity, it.SubtotalCents(),
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE inventory
			SET quantity = quantity - ?, updated_at = NOW()
			WHERE id = ? AND is_active = 1 AND quantity >= ?`,
			it.Quantity, it.ItemID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			available, qerr := m.currentQuantity(ctx, it.ItemID)
			if qerr != nil {
				available = 0
			}
			return &domain.InsufficientStockError{ItemID: it.ItemID, Available: available, Requested: it.Quantity}
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListSales(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	query := `
		SELECT id, bill_number, customer_name, customer_phone, repair_fee_cents,
			repair_description, total_cents, cashier, created_at
		FROM sales`
	var args []any
	var where []string
	if !from.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, to)
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	index := make(map[string]int)
	for rows.Next() {
		var s domain.Sale
		err := rows.Scan(&s.ID, &s.BillNumber, &s.CustomerName, &s.CustomerPhone,
			&s.RepairFeeCents, &s.RepairDescription, &s.TotalCents, &s.Cashier, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}

	itemRows, err := m.db.QueryContext(ctx, `
		SELECT si.sale_id, si.inventory_id, si.item_name, si.item_price_cents, si.quantity
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id`+salesWhere(from, to)+`
		ORDER BY si.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query sale items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID string
		var it domain.SaleItem
		if err := itemRows.Scan(&saleID, &it.ItemID, &it.Name, &it.PriceCents, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, it)
		}
	}
	return sales, itemRows.Err()
}

func salesWhere(from, to time.Time) string {
	clause := ""
	if !from.IsZero() {
		clause += " AND s.created_at >= ?"
	}
	if !to.IsZero() {
		clause += " AND s.created_at <= ?"
	}
	if clause == "" {
		return ""
	}
	return " WHERE " + clause[len(" AND "):]
}

func (m *MySQLAdapter) GetSettings(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := m.db.QueryRowContext(ctx, `
		SELECT shop_name, admin_password, currency FROM settings WHERE id = 1`,
	).Scan(&s.ShopName, &s.AdminPassword, &s.Currency)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return s, nil
}

func (m *MySQLAdapter) UpdateSettings(ctx context.Context, s domain.Settings) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO settings (id, shop_name, admin_password, currency)
		VALUES (1, ?, ?, ?)
		ON DUPLICATE KEY UPDATE shop_name = VALUES(shop_name),
			admin_password = VALUES(admin_password), currency = VALUES(currency)`,
		s.ShopName, s.AdminPassword, s.Currency,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) barcodeTaken(ctx context.Context, barcode, excludeID string) (bool, error) {
	var id string
	err := m.db.QueryRowContext(ctx, `
		SELECT id FROM inventory WHERE barcode = ? AND is_active = 1 LIMIT 1`, barcode,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check barcode: %w", err)
	}
	return id != excludeID, nil
}

func (m *MySQLAdapter) currentQuantity(ctx context.Context, id string) (int, error) {
	var qty int
	err := m.db.QueryRowContext(ctx, `
		SELECT quantity FROM inventory WHERE id = ? AND is_active = 1`, id,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query quantity: %w", err)
	}
	return qty, nil
}
