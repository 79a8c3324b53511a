package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mapStorage struct {
	mu      sync.Mutex
	values  map[string]string
	setErr  error
	failKey string
	writes  []string
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: map[string]string{}}
}

func (m *mapStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if key == m.failKey {
		return errors.New("disk full")
	}
	m.writes = append(m.writes, key)
	m.values[key] = value
	return nil
}

func (m *mapStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type remoteErr struct{ msg string }

func (e *remoteErr) Error() string         { return "remote: " + e.msg }
func (e *remoteErr) RemoteMessage() string { return e.msg }

var (
	teeID   = uuid.MustParse("0b5f6f0c-0000-4000-8000-000000000001")
	taxRate = decimal.RequireFromString("0.15")
)

func tee(size catalog.Size, qty int) cart.LineItem {
	return cart.LineItem{
		ProductID: teeID,
		Slug:      "men_chill_crew_neck",
		Title:     "Men Chill Crew Neck",
		Size:      size,
		Price:     decimal.RequireFromString("10.00"),
		Quantity:  qty,
	}
}

func validAddress() cart.ShippingAddress {
	return cart.ShippingAddress{
		FirstName: "Ana", LastName: "Perez", Address: "Calle 1",
		Zip: "28001", City: "Madrid", Country: "ES", Phone: "600000000",
	}
}

func newTestSession(t *testing.T) (*Session, *mapStorage, *MockOrderGateway) {
	t.Helper()
	storage := newMapStorage()
	gateway := new(MockOrderGateway)
	s := NewSession(storage, gateway, taxRate, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Load(context.Background()))
	return s, storage, gateway
}

func TestSession_LoadEmpty(t *testing.T) {
	s, _, _ := newTestSession(t)
	st := s.State()
	assert.True(t, st.Loaded)
	assert.Empty(t, st.Lines)
	assert.False(t, st.HasAddress())
	assert.Equal(t, 0, st.Summary.NumberOfItems)
}

func TestSession_LoadRehydrates(t *testing.T) {
	storage := newMapStorage()
	data, err := json.Marshal([]cart.LineItem{tee(catalog.SizeM, 2)})
	require.NoError(t, err)
	storage.values[KeyCart] = string(data)
	storage.values[KeyFirstName] = "Ana"
	storage.values[KeyCity] = "Madrid"

	s := NewSession(storage, new(MockOrderGateway), taxRate)
	require.NoError(t, s.Load(context.Background()))

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 2, st.Lines[0].Quantity)
	assert.Equal(t, "20", st.Summary.SubTotal.String())
	assert.Equal(t, "3", st.Summary.Tax.String())
	require.True(t, st.HasAddress())
	assert.Equal(t, "Madrid", st.ShippingAddress.City)
	assert.Equal(t, "", st.ShippingAddress.Phone)
}

func TestSession_LoadCorruptCartFallsBackToEmpty(t *testing.T) {
	storage := newMapStorage()
	storage.values[KeyCart] = "{not json"

	s := NewSession(storage, new(MockOrderGateway), taxRate, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Load(context.Background()))

	st := s.State()
	assert.True(t, st.Loaded)
	assert.Empty(t, st.Lines)
}

func TestSession_LoadRepairsStoredLines(t *testing.T) {
	storage := newMapStorage()
	data, err := json.Marshal([]cart.LineItem{
		tee(catalog.SizeM, 1),
		tee(catalog.SizeM, 2),
		tee(catalog.SizeL, 0),
		tee(catalog.SizeS, -1),
	})
	require.NoError(t, err)
	storage.values[KeyCart] = string(data)

	s := NewSession(storage, new(MockOrderGateway), taxRate, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, s.Load(context.Background()))

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, catalog.SizeM, st.Lines[0].Size)
	assert.Equal(t, 3, st.Lines[0].Quantity)
	assert.Equal(t, 3, st.Summary.NumberOfItems)
	assert.Equal(t, "30", st.Summary.SubTotal.String())
}

func TestSession_AddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("new product appends a line", func(t *testing.T) {
		s, storage, _ := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))

		st := s.State()
		require.Len(t, st.Lines, 1)
		assert.Equal(t, 1, st.Summary.NumberOfItems)

		var stored []cart.LineItem
		require.NoError(t, json.Unmarshal([]byte(storage.values[KeyCart]), &stored))
		assert.Len(t, stored, 1)
	})

	t.Run("same product and size accumulates", func(t *testing.T) {
		s, _, _ := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 2)))

		st := s.State()
		require.Len(t, st.Lines, 1)
		assert.Equal(t, 3, st.Lines[0].Quantity)
		assert.Equal(t, "30", st.Summary.SubTotal.String())
		assert.True(t, st.Summary.Total.Equal(st.Summary.SubTotal.Add(st.Summary.Tax)))
	})

	t.Run("same product other size appends", func(t *testing.T) {
		s, _, _ := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeL, 1)))
		assert.Len(t, s.State().Lines, 2)
	})

	t.Run("rejects zero quantity and unknown size", func(t *testing.T) {
		s, _, _ := newTestSession(t)
		assert.Error(t, s.AddProduct(ctx, tee(catalog.SizeM, 0)))
		assert.Error(t, s.AddProduct(ctx, tee(catalog.Size("XXXXL"), 1)))
		assert.Empty(t, s.State().Lines)
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		s, storage, _ := newTestSession(t)
		storage.setErr = errors.New("disk full")
		assert.ErrorContains(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)), "disk full")
	})
}

func TestSession_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))
	require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeL, 1)))

	require.NoError(t, s.UpdateQuantity(ctx, tee(catalog.SizeL, 5)))
	st := s.State()
	assert.Equal(t, 6, st.Summary.NumberOfItems)

	require.NoError(t, s.RemoveProduct(ctx, tee(catalog.SizeM, 1)))
	st = s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, catalog.SizeL, st.Lines[0].Size)
	assert.Equal(t, 5, st.Summary.NumberOfItems)

	require.NoError(t, s.RemoveProduct(ctx, tee(catalog.SizeL, 1)))
	st = s.State()
	assert.Empty(t, st.Lines)
	assert.True(t, st.Summary.Tax.IsZero())
}

func TestSession_UpdateAddressPersistsFields(t *testing.T) {
	ctx := context.Background()
	s, storage, _ := newTestSession(t)

	require.NoError(t, s.UpdateAddress(ctx, validAddress()))
	assert.Equal(t, "Ana", storage.values[KeyFirstName])
	assert.Equal(t, "", storage.values[KeyAddress2])
	assert.Equal(t, "600000000", storage.values[KeyPhone])
	assert.True(t, s.State().HasAddress())

	bad := validAddress()
	bad.City = ""
	assert.Error(t, s.UpdateAddress(ctx, bad))
	assert.Equal(t, "Madrid", s.State().ShippingAddress.City)
}

func TestSession_UpdateAddressWritesFirstNameLast(t *testing.T) {
	ctx := context.Background()
	s, storage, _ := newTestSession(t)

	require.NoError(t, s.UpdateAddress(ctx, validAddress()))
	require.Len(t, storage.writes, 8)
	assert.Equal(t, KeyFirstName, storage.writes[7])
}

func TestSession_UpdateAddressFailureLeavesAddressUnset(t *testing.T) {
	ctx := context.Background()
	s, storage, gateway := newTestSession(t)
	require.NoError(t, s.UpdateAddress(ctx, validAddress()))

	moved := validAddress()
	moved.FirstName = "Eva"
	moved.City = "Sevilla"
	moved.Phone = "700000000"
	storage.failKey = KeyPhone
	require.Error(t, s.UpdateAddress(ctx, moved))

	reloaded := NewSession(storage, gateway, taxRate)
	require.NoError(t, reloaded.Load(ctx))
	assert.False(t, reloaded.State().HasAddress())

	_, err := reloaded.CreateOrder(ctx)
	assert.ErrorIs(t, err, ErrNoShippingAddress)
	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestSession_StateIsACopy(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)
	require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))

	st := s.State()
	st.Lines[0].Quantity = 99
	assert.Equal(t, 1, s.State().Lines[0].Quantity)
}

func TestSession_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("fails without address before calling the gateway", func(t *testing.T) {
		s, _, gateway := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))

		_, err := s.CreateOrder(ctx)
		assert.ErrorIs(t, err, ErrNoShippingAddress)
		gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("success clears the cart and keeps the address", func(t *testing.T) {
		s, storage, gateway := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 2)))
		require.NoError(t, s.UpdateAddress(ctx, validAddress()))

		gateway.On("CreateOrder", ctx, mock.MatchedBy(func(req OrderRequest) bool {
			return len(req.OrderItems) == 1 &&
				req.NumberOfItems == 2 &&
				req.Total.Equal(decimal.RequireFromString("23")) &&
				!req.IsPaid &&
				req.ShippingAddress.City == "Madrid"
		})).Return("order-42", nil).Once()

		res, err := s.CreateOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, OrderResult{HasError: false, Message: "order-42"}, res)

		st := s.State()
		assert.Empty(t, st.Lines)
		assert.Equal(t, 0, st.Summary.NumberOfItems)
		assert.True(t, st.HasAddress())
		assert.Equal(t, "[]", storage.values[KeyCart])
		gateway.AssertExpectations(t)
	})

	t.Run("remote failure surfaces the server message", func(t *testing.T) {
		s, _, gateway := newTestSession(t)
		require.NoError(t, s.AddProduct(ctx, tee(catalog.SizeM, 1)))
		require.NoError(t, s.UpdateAddress(ctx, validAddress()))

		gateway.On("CreateOrder", ctx, mock.Anything).Return("", &remoteErr{msg: "Total does not match"}).Once()

		res, err := s.CreateOrder(ctx)
		require.NoError(t, err)
		assert.True(t, res.HasError)
		assert.Equal(t, "Total does not match", res.Message)
		assert.Len(t, s.State().Lines, 1)
	})

	t.Run("unreadable failure uses the fallback message", func(t *testing.T) {
		s, _, gateway := newTestSession(t)
		require.NoError(t, s.UpdateAddress(ctx, validAddress()))

		gateway.On("CreateOrder", ctx, mock.Anything).Return("", errors.New("connection refused")).Once()

		res, err := s.CreateOrder(ctx)
		require.NoError(t, err)
		assert.True(t, res.HasError)
		assert.Equal(t, FallbackErrorMessage, res.Message)
	})
}

func TestSession_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddProduct(ctx, tee(catalog.SizeM, 1))
		}()
	}
	wg.Wait()

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 50, st.Lines[0].Quantity)
	assert.Equal(t, 50, st.Summary.NumberOfItems)
}
