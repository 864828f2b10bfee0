package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/tirehouse?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func seedItem(t *testing.T, db *sql.DB, adapter *MySQLAdapter, qty int) domain.Item {
	t.Helper()

	now := time.Now().Truncate(time.Millisecond)
	item := domain.Item{
		ID:         uuid.New().String(),
		Name:       "test tire",
		Brand:      "TestBrand",
		Barcode:    "test-" + uuid.New().String(),
		Category:   "tires",
		PriceCents: 100_00,
		Quantity:   qty,
		MinStock:   5,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := adapter.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("seed item failed: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM inventory WHERE id = ?`, item.ID)
	})
	return item
}

func cleanupSale(db *sql.DB, saleID string) {
	db.Exec(`DELETE FROM sale_items WHERE sale_id = ?`, saleID)
	db.Exec(`DELETE FROM sales WHERE id = ?`, saleID)
}

func testSale(item domain.Item, qty int) domain.Sale {
	sale := domain.Sale{
		ID:           uuid.New().String(),
		BillNumber:   "BILL-test-" + uuid.New().String(),
		CustomerName: domain.DefaultCustomerName,
		Cashier:      domain.DefaultCashier,
		CreatedAt:    time.Now().Truncate(time.Millisecond),
		Items: []domain.SaleItem{
			{ItemID: item.ID, Name: item.Name, PriceCents: item.PriceCents, Quantity: qty},
		},
	}
	sale.TotalCents = sale.ComputeTotal()
	return sale
}

func TestCreateSale_DecrementsStock(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 3)

	sale := testSale(item, 2)
	defer cleanupSale(db, sale.ID)

	if err := adapter.CreateSale(ctx, sale); err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales WHERE id = ?`, sale.ID).Scan(&count)
	if count != 1 {
		t.Error("sale not found in database")
	}
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sale_items WHERE sale_id = ?`, sale.ID).Scan(&count)
	if count != 1 {
		t.Error("sale items not found in database")
	}

	var stock int
	db.QueryRowContext(ctx, `SELECT quantity FROM inventory WHERE id = ?`, item.ID).Scan(&stock)
	if stock != 1 {
		t.Errorf("expected stock 1, got %d", stock)
	}
}

func TestCreateSale_InsufficientStockAbortsEverything(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 1)

	sale := testSale(item, 2)
	defer cleanupSale(db, sale.ID)

	err := adapter.CreateSale(ctx, sale)
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}
	if ise.Available != 1 || ise.Requested != 2 {
		t.Errorf("unexpected error detail: %+v", ise)
	}

	// Nothing committed: no sale row, no items, stock untouched.
	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales WHERE id = ?`, sale.ID).Scan(&count)
	if count != 0 {
		t.Error("sale row leaked from aborted transaction")
	}
	var stock int
	db.QueryRowContext(ctx, `SELECT quantity FROM inventory WHERE id = ?`, item.ID).Scan(&stock)
	if stock != 1 {
		t.Errorf("stock changed by aborted sale: %d", stock)
	}
}

func TestAdjustQuantity(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 5)

	newQty, err := adapter.AdjustQuantity(ctx, item.ID, 3)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if newQty != 8 {
		t.Errorf("expected 8, got %d", newQty)
	}

	newQty, err = adapter.AdjustQuantity(ctx, item.ID, -8)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if newQty != 0 {
		t.Errorf("expected 0, got %d", newQty)
	}

	_, err = adapter.AdjustQuantity(ctx, item.ID, -1)
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}

	_, err = adapter.AdjustQuantity(ctx, uuid.New().String(), -1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetItemByBarcode(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 5)

	found, err := adapter.GetItemByBarcode(ctx, item.Barcode)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found.ID != item.ID {
		t.Errorf("expected %s, got %s", item.ID, found.ID)
	}

	if _, err := adapter.GetItemByBarcode(ctx, "no-such-barcode"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestDeactivateItem_SoftDelete(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 5)

	if err := adapter.DeactivateItem(ctx, item.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := adapter.GetItem(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for inactive item, got: %v", err)
	}

	// The row is history, not gone.
	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory WHERE id = ?`, item.ID).Scan(&count)
	if count != 1 {
		t.Error("soft delete removed the row")
	}

	// Barcode is reusable once the holder is inactive.
	clone := item
	clone.ID = uuid.New().String()
	if err := adapter.CreateItem(ctx, clone); err != nil {
		t.Errorf("barcode of inactive item should be reusable: %v", err)
	}
	db.Exec(`DELETE FROM inventory WHERE id = ?`, clone.ID)
}

func TestCreateItem_BarcodeTaken(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 5)

	clone := item
	clone.ID = uuid.New().String()
	err := adapter.CreateItem(ctx, clone)
	if !errors.Is(err, domain.ErrBarcodeTaken) {
		t.Errorf("expected ErrBarcodeTaken, got: %v", err)
		db.Exec(`DELETE FROM inventory WHERE id = ?`, clone.ID)
	}
}

func TestListSales_Range(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	item := seedItem(t, db, adapter, 10)

	sale := testSale(item, 1)
	defer cleanupSale(db, sale.ID)
	if err := adapter.CreateSale(ctx, sale); err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	from := sale.CreatedAt.Add(-time.Minute)
	to := sale.CreatedAt.Add(time.Minute)
	sales, err := adapter.ListSales(ctx, from, to)
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}

	var found *domain.Sale
	for i := range sales {
		if sales[i].ID == sale.ID {
			found = &sales[i]
		}
	}
	if found == nil {
		t.Fatal("created sale not in range")
	}
	if len(found.Items) != 1 || found.Items[0].ItemID != item.ID {
		t.Errorf("sale items not loaded: %+v", found.Items)
	}

	// A range in the far past excludes it.
	past, err := adapter.ListSales(ctx, sale.CreatedAt.Add(-2*time.Hour), sale.CreatedAt.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}
	for _, s := range past {
		if s.ID == sale.ID {
			t.Error("sale leaked into a range that excludes it")
		}
	}
}

func TestSettings_Upsert(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	want := domain.Settings{ShopName: "Test Tire House", AdminPassword: "secret", Currency: "LKR"}
	if err := adapter.UpdateSettings(ctx, want); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	got, err := adapter.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	want.ShopName = "Renamed Tire House"
	if err := adapter.UpdateSettings(ctx, want); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	got, _ = adapter.GetSettings(ctx)
	if got.ShopName != "Renamed Tire House" {
		t.Errorf("upsert did not overwrite: %+v", got)
	}
}
