//go:build ignore

// check_db connects with the configured database settings and reports the
// database name, applied migration version and product count.
//
// Usage: go run scripts/check_db.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pharma-plus/internal/config"
	"pharma-plus/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, config.NewLogger(cfg.Logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s (%s)\n", dbName, database.State(ctx, pool))

	var version int64
	if err := pool.QueryRow(ctx, "SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version").Scan(&version); err != nil {
		fmt.Println("Schema not migrated yet")
		return
	}

	var products int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&products); err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Schema version %d, %d products\n", version, products)
}
