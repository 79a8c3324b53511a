package cart

// State is the full client-side cart
type State struct {
	Loaded          bool
	Lines           []LineItem
	Summary         Summary
	ShippingAddress *ShippingAddress
}

// NewState returns an empty, not yet loaded cart
func NewState() State {
	return State{Lines: []LineItem{}}
}

// HasAddress reports whether a shipping address is set
func (s State) HasAddress() bool {
	return s.ShippingAddress != nil
}

// Action is a state transition handled by Reduce
type Action interface {
	actionName() string
}

// LoadCart replaces the whole cart when rehydrating from storage
type LoadCart struct{ Lines []LineItem }

// UpdateLines replaces the lines after an add
type UpdateLines struct{ Lines []LineItem }

// ChangeQuantity sets the quantity of one line
type ChangeQuantity struct{ Item LineItem }

// RemoveItem drops one line
type RemoveItem struct{ Item LineItem }

// LoadAddress sets the address read from storage
type LoadAddress struct{ Address ShippingAddress }

// UpdateAddress sets an address entered by the shopper
type UpdateAddress struct{ Address ShippingAddress }

// UpdateSummary stores a freshly computed summary
type UpdateSummary struct{ Summary Summary }

// OrderCompleted empties the cart after checkout
type OrderCompleted struct{}

func (LoadCart) actionName() string       { return "[Cart] - LoadCart from storage" }
func (UpdateLines) actionName() string    { return "[Cart] - Update products in cart" }
func (ChangeQuantity) actionName() string { return "[Cart] - Change product quantity" }
func (RemoveItem) actionName() string     { return "[Cart] - Remove product in cart" }
func (LoadAddress) actionName() string    { return "[Cart] - Load address from storage" }
func (UpdateAddress) actionName() string  { return "[Cart] - Update address" }
func (UpdateSummary) actionName() string  { return "[Cart] - Update order summary" }
func (OrderCompleted) actionName() string { return "[Cart] - Order completed" }

// ActionName returns a readable label for logging
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	next := s
	next.Lines = cloneLines(s.Lines)
	if s.ShippingAddress != nil {
		addr := *s.ShippingAddress
		next.ShippingAddress = &addr
	}
	return next
}

// Reduce applies action to state and returns the next state.
// The input state is never modified.
func Reduce(state State, action Action) State {
	next := state.Clone()

	switch a := action.(type) {
	case LoadCart:
		next.Loaded = true
		next.Lines = cloneLines(a.Lines)
	case UpdateLines:
		next.Lines = cloneLines(a.Lines)
	case ChangeQuantity:
		next.Lines = UpdateQuantity(next.Lines, a.Item)
	case RemoveItem:
		next.Lines = RemoveLine(next.Lines, a.Item)
	case LoadAddress:
		addr := a.Address
		next.ShippingAddress = &addr
	case UpdateAddress:
		addr := a.Address
		next.ShippingAddress = &addr
	case UpdateSummary:
		next.Summary = a.Summary
	case OrderCompleted:
		next.Lines = []LineItem{}
		next.Summary = Summary{}
	}
	return next
}
