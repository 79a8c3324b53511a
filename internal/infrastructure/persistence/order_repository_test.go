package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/order"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() cart.ShippingAddress {
	return cart.ShippingAddress{
		FirstName: "Ana",
		LastName:  "Perez",
		Address:   "Calle 1",
		Zip:       "28001",
		City:      "Madrid",
		Country:   "ES",
		Phone:     "600000000",
	}
}

func newTestOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	lines := []cart.LineItem{
		{ProductID: uuid.New(), Slug: "tee", Title: "Tee", Size: catalog.SizeM, Price: decimal.NewFromInt(10), Quantity: 2},
		{ProductID: uuid.New(), Slug: "cap", Title: "Cap", Size: catalog.SizeS, Price: decimal.RequireFromString("5.5"), Quantity: 1},
	}
	o, err := order.NewOrder(userID, lines, testAddress(), decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, uuid.New())
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.UserID, found.UserID)
	assert.Len(t, found.Items, 2)
	assert.Equal(t, 3, found.NumberOfItems)
	assert.Equal(t, "Madrid", found.ShippingAddress.City)
	assert.True(t, o.Total.Equal(found.Total))
	assert.False(t, found.IsPaid)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_UpdatePaymentAndCounts(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	userID := uuid.New()
	paid := newTestOrder(t, userID)
	unpaid := newTestOrder(t, userID)
	other := newTestOrder(t, uuid.New())
	for _, o := range []*order.Order{paid, unpaid, other} {
		require.NoError(t, repo.Create(ctx, o))
	}

	require.NoError(t, paid.MarkPaid("tx-123"))
	require.NoError(t, repo.Update(ctx, paid))

	found, err := repo.FindByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)
	assert.Equal(t, "tx-123", found.TransactionID)
	assert.NotNil(t, found.PaidAt)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	paidCount, err := repo.CountPaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paidCount)

	mine, n, err := repo.FindAll(ctx, order.OrderFilter{Filter: shared.DefaultFilter(), UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Len(t, o.Items, 2)
	}

	isPaid := false
	open, n, err := repo.FindAll(ctx, order.OrderFilter{Filter: shared.DefaultFilter(), IsPaid: &isPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, open, 2)
}

func TestGormOrderRepository_Update_RejectsStaleCopy(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	o := newTestOrder(t, uuid.New())
	require.NoError(t, repo.Create(ctx, o))

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, first.MarkPaid("tx-A"))
	require.NoError(t, second.MarkPaid("tx-B"))

	require.NoError(t, repo.Update(ctx, first))
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "tx-A", stored.TransactionID)
	assert.Equal(t, first.Version, stored.Version)
}

func TestGormOrderRepository_Update_MissingOrder(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormOrderRepository(db.DB)

	o := newTestOrder(t, uuid.New())
	require.NoError(t, o.MarkPaid("tx-1"))

	err := repo.Update(context.Background(), o)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_CountPaid_Query(t *testing.T) {
	gormDB, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE is_paid = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
