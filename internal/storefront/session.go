package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Persisted keys
const (
	KeyCart      = "cart"
	KeyFirstName = "firstName"
	KeyLastName  = "lastName"
	KeyAddress   = "address"
	KeyAddress2  = "address2"
	KeyZip       = "zip"
	KeyCity      = "city"
	KeyCountry   = "country"
	KeyPhone     = "phone"
)

// FallbackErrorMessage is reported when an order fails without a readable server message
const FallbackErrorMessage = "Unhandled error, please contact the administrator"

// ErrNoShippingAddress is returned by CreateOrder before any network call
var ErrNoShippingAddress = errors.New("no shipping address set")

// OrderResult reports the outcome of an order submission.
// On success Message holds the new order id.
type OrderResult struct {
	HasError bool   `json:"has_error"`
	Message  string `json:"message"`
}

// Session is one shopper's cart. All mutations are serialised.
type Session struct {
	mu      sync.Mutex
	state   cart.State
	storage Storage
	gateway OrderGateway
	taxRate decimal.Decimal
	logger  *zap.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates an empty, unloaded session
func NewSession(storage Storage, gateway OrderGateway, taxRate decimal.Decimal, opts ...Option) *Session {
	s := &Session{
		state:   cart.NewState(),
		storage: storage,
		gateway: gateway,
		taxRate: taxRate,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load rehydrates the cart and address from storage.
// A corrupt cart value loads as an empty cart.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := []cart.LineItem{}
	raw, ok, err := s.storage.Get(ctx, KeyCart)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			s.logger.Warn("Discarding unreadable stored cart", zap.Error(err))
			lines = []cart.LineItem{}
		}
	}
	normalized := cart.NormalizeLines(lines)
	if len(normalized) != len(lines) {
		s.logger.Warn("Repaired stored cart", zap.Int("stored_lines", len(lines)), zap.Int("lines", len(normalized)))
	}
	lines = normalized
	s.dispatch(cart.LoadCart{Lines: lines})
	s.dispatch(cart.UpdateSummary{Summary: cart.ComputeSummary(s.state.Lines, s.taxRate)})

	addr, found, err := s.loadAddress(ctx)
	if err != nil {
		return err
	}
	if found {
		s.dispatch(cart.LoadAddress{Address: addr})
	}
	return nil
}

// AddProduct merges item into the cart
func (s *Session) AddProduct(ctx context.Context, item cart.LineItem) error {
	if item.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !item.Size.IsValid() {
		return shared.NewDomainError("INVALID_SIZE", "A valid size must be selected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatch(cart.UpdateLines{Lines: cart.AddLine(s.state.Lines, item)})
	return s.linesChanged(ctx)
}

// UpdateQuantity sets the quantity of the item's (product, size) line
func (s *Session) UpdateQuantity(ctx context.Context, item cart.LineItem) error {
	if item.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatch(cart.ChangeQuantity{Item: item})
	return s.linesChanged(ctx)
}

// RemoveProduct drops the item's (product, size) line
func (s *Session) RemoveProduct(ctx context.Context, item cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatch(cart.RemoveItem{Item: item})
	return s.linesChanged(ctx)
}

// UpdateAddress stores the shipping address, one key per field
func (s *Session) UpdateAddress(ctx context.Context, addr cart.ShippingAddress) error {
	if err := addr.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// firstName marks a stored address; clear it first and write it last
	if err := s.storage.Delete(ctx, KeyFirstName); err != nil {
		return fmt.Errorf("failed to clear %s: %w", KeyFirstName, err)
	}
	for _, f := range addressFields(addr) {
		if err := s.storage.Set(ctx, f.key, f.value); err != nil {
			return fmt.Errorf("failed to store %s: %w", f.key, err)
		}
	}
	s.dispatch(cart.UpdateAddress{Address: addr})
	return nil
}

// State returns a copy of the current state
func (s *Session) State() cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CreateOrder submits the cart. Server-side failures come back as an
// OrderResult with HasError set; the returned error is reserved for
// ErrNoShippingAddress and local storage failures.
func (s *Session) CreateOrder(ctx context.Context) (OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasAddress() {
		return OrderResult{}, ErrNoShippingAddress
	}

	req := OrderRequest{
		OrderItems:      s.state.Clone().Lines,
		ShippingAddress: *s.state.ShippingAddress,
		NumberOfItems:   s.state.Summary.NumberOfItems,
		SubTotal:        s.state.Summary.SubTotal,
		Tax:             s.state.Summary.Tax,
		Total:           s.state.Summary.Total,
		IsPaid:          false,
	}

	id, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		msg := remoteMessage(err)
		s.logger.Warn("Order submission failed", zap.String("message", msg), zap.Error(err))
		return OrderResult{HasError: true, Message: msg}, nil
	}

	s.dispatch(cart.OrderCompleted{})
	if err := s.persistLines(ctx); err != nil {
		return OrderResult{HasError: false, Message: id}, err
	}
	s.logger.Info("Order created", zap.String("order_id", id))
	return OrderResult{HasError: false, Message: id}, nil
}

func (s *Session) dispatch(action cart.Action) {
	s.state = cart.Reduce(s.state, action)
	s.logger.Debug("Cart action", zap.String("action", cart.ActionName(action)), zap.Int("lines", len(s.state.Lines)))
}

// linesChanged persists the cart and recomputes the summary. Caller holds mu.
func (s *Session) linesChanged(ctx context.Context) error {
	s.dispatch(cart.UpdateSummary{Summary: cart.ComputeSummary(s.state.Lines, s.taxRate)})
	return s.persistLines(ctx)
}

func (s *Session) persistLines(ctx context.Context) error {
	data, err := json.Marshal(s.state.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, KeyCart, string(data)); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

// loadAddress reads the address keys. An address counts as stored only when
// the firstName key is present.
func (s *Session) loadAddress(ctx context.Context) (cart.ShippingAddress, bool, error) {
	values := make(map[string]string, 8)
	found := false
	for _, key := range []string{KeyFirstName, KeyLastName, KeyAddress, KeyAddress2, KeyZip, KeyCity, KeyCountry, KeyPhone} {
		v, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return cart.ShippingAddress{}, false, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if key == KeyFirstName {
			found = ok
		}
		values[key] = v
	}
	if !found {
		return cart.ShippingAddress{}, false, nil
	}

	return cart.ShippingAddress{
		FirstName: values[KeyFirstName],
		LastName:  values[KeyLastName],
		Address:   values[KeyAddress],
		Address2:  values[KeyAddress2],
		Zip:       values[KeyZip],
		City:      values[KeyCity],
		Country:   values[KeyCountry],
		Phone:     values[KeyPhone],
	}, true, nil
}

type addressField struct {
	key   string
	value string
}

// addressFields lists the address keys in write order, firstName last
func addressFields(a cart.ShippingAddress) []addressField {
	return []addressField{
		{KeyLastName, a.LastName},
		{KeyAddress, a.Address},
		{KeyAddress2, a.Address2},
		{KeyZip, a.Zip},
		{KeyCity, a.City},
		{KeyCountry, a.Country},
		{KeyPhone, a.Phone},
		{KeyFirstName, a.FirstName},
	}
}

func remoteMessage(err error) string {
	var remote RemoteError
	if errors.As(err, &remote) && remote.RemoteMessage() != "" {
		return remote.RemoteMessage()
	}
	return FallbackErrorMessage
}
