// Manual harness: fires concurrent checkouts at one item with fewer units
// than requests and verifies exactly initialStock of them win.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/tirehouse-pos/internal/adapter/storage"
	"github.com/rl1809/tirehouse-pos/internal/config"
	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	inventoryService := service.NewInventoryService(mysqlAdapter, redisAdapter)
	checkoutService := service.NewCheckoutService(mysqlAdapter, redisAdapter)

	item, err := inventoryService.Create(ctx, domain.Item{
		Name:       "stress tire " + uuid.New().String()[:8],
		Brand:      "TestBrand",
		Barcode:    "stress-" + uuid.New().String(),
		Category:   "tires",
		PriceCents: 100_00,
		Quantity:   initialStock,
	})
	if err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}
	log.Printf("seeded item %s with stock %d", item.ID, initialStock)

	var successCount, conflictCount, errorCount atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cart := domain.NewCart()
			if err := cart.AddLine(*item, 1); err != nil {
				errorCount.Add(1)
				return
			}

			_, err := checkoutService.Checkout(ctx, cart, service.CustomerInfo{
				RequestID: uuid.New().String(),
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case domain.IsInsufficientStock(err):
				conflictCount.Add(1)
			default:
				log.Printf("unexpected checkout error: %v", err)
				errorCount.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	finalQty, err := inventoryService.Get(ctx, item.ID)
	if err != nil {
		log.Fatalf("failed to read back item: %v", err)
	}

	fmt.Printf("requests:   %d\n", totalRequests)
	fmt.Printf("successes:  %d (want %d)\n", successCount.Load(), initialStock)
	fmt.Printf("conflicts:  %d\n", conflictCount.Load())
	fmt.Printf("errors:     %d\n", errorCount.Load())
	fmt.Printf("final stock: %d (want 0)\n", finalQty.Quantity)
	fmt.Printf("elapsed:    %s\n", elapsed)

	if successCount.Load() != initialStock || finalQty.Quantity != 0 {
		log.Fatal("FAIL: stock accounting is off")
	}
	log.Println("OK")
}
