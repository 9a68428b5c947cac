package integration

import (
	"context"
	"testing"
	"time"

	"pharma-plus/internal/config"
	"pharma-plus/internal/database"
	"pharma-plus/internal/model"
	"pharma-plus/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a migrated PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts test product data into the database. Every product
// has a legacy id; the first two use the legacy alias fields only.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) []model.Product {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewProductRepository(pool, zerolog.Nop())

	str := func(s string) *string { return &s }
	id := func(n int64) *int64 { return &n }

	products := []model.Product{
		{LegacyID: id(1), Name: "Paracetamol 500mg", Price: 59, Img: str("/images/para.jpg"), Cat: str("Pain Relief"), Featured: true},
		{LegacyID: id(2), Name: "Vitamin C 500mg", Price: 249, Img: str("/images/vitc.jpg"), Cat: str("Vitamins"), Featured: true},
		{LegacyID: id(3), Name: "Multivitamin Daily", Price: 199, Image: str("https://cdn.example.com/multi.jpg"), Category: str("Vitamins")},
		{LegacyID: id(4), Name: "Digital Thermometer", Price: 399, Category: str("Devices"), Tag: str("fever")},
		{LegacyID: id(5), Name: "Antacid Tablets", Price: 49, Category: str("Digestion")},
	}

	for i := range products {
		products[i].Uses = []string{}
		if err := repo.Create(ctx, &products[i]); err != nil {
			t.Fatalf("failed to seed product %s: %v", products[i].Name, err)
		}
		// Distinct creation times keep the default ordering deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	return products
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE products, users"); err != nil {
		t.Logf("failed to clean tables: %v", err)
	}
}
