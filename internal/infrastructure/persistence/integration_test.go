//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/domain/order"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/charro/storefront/internal/infrastructure/migration"
	"github.com/charro/storefront/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
)

// newPostgresDatabase starts a PostgreSQL container and applies the embedded migrations
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	db, err := NewDatabaseFromDialector(gormpostgres.Open(dsn), log)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, log)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestPostgres_CheckoutFlow(t *testing.T) {
	db := newPostgresDatabase(t)
	ctx := context.Background()

	users := NewGormUserRepository(db.DB)
	products := NewGormProductRepository(db.DB)
	orders := NewGormOrderRepository(db.DB)

	u, err := identity.NewUser("Ana Perez", "ana@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))

	p, err := catalog.NewProduct("", "Men Chill Crew Neck", decimal.NewFromInt(75), catalog.ProductTypeShirts, catalog.GenderMen)
	require.NoError(t, err)
	require.NoError(t, p.SetSizes([]catalog.Size{catalog.SizeM}))
	require.NoError(t, p.SetStock(2))
	p.SetTags([]string{"sweatshirt"})
	require.NoError(t, products.Save(ctx, p))

	found, err := products.Search(ctx, "Sweat", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	lines := []cart.LineItem{{ProductID: p.ID, Slug: p.Slug, Title: p.Title, Size: catalog.SizeM, Price: p.Price, Quantity: 2}}
	address := cart.ShippingAddress{FirstName: "Ana", LastName: "Perez", Address: "Calle 1", Zip: "28001", City: "Madrid", Country: "ES", Phone: "600"}
	o, err := order.NewOrder(u.ID, lines, address, decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, o))

	stored, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "172.5", stored.Total.String())

	require.NoError(t, stored.MarkPaid("tx-1"))
	require.NoError(t, orders.Update(ctx, stored))

	paid, err := orders.CountPaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paid)

	low, err := products.CountLowStock(ctx, catalog.DefaultLowStockThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(1), low)

	_, err = users.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
