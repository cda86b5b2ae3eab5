package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"lunelle.GO/model/entity"
)

var (
	// ErrCartNotInitialized is returned by UpdateItem when no cart id exists yet.
	ErrCartNotInitialized = errors.New("cart not initialized")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)

// Gateway is the remote cart API.
type Gateway interface {
	CreateCart(ctx context.Context) (*entity.Cart, error)
	GetCart(ctx context.Context, cartID string) (*entity.Cart, bool)
	AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*entity.Cart, error)
	UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*entity.Cart, error)
}

type State int

const (
	StateNoID State = iota
	StateCreating
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "no-id"
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	State       State
	CartID      string
	Cart        *entity.Cart
	Loading     bool
	Err         error
	ItemCount   int
	CheckoutURL string
}

type Option func(*Session)

// WithSerializedMutations runs AddItem/UpdateItem one at a time per session.
// Without it concurrent mutations race and the last response applied wins.
func WithSerializedMutations() Option {
	return func(s *Session) { s.serialize = true }
}

// Session owns one shopper's cart: the stored cart id, the last cart record and
// the loading/error flags. Every successful call replaces the whole cart record.
type Session struct {
	gw  Gateway
	ids IDStore

	serialize bool
	mutations sync.Mutex
	initOnce  sync.Once
	initErr   error

	mu       sync.RWMutex
	state    State
	cartID   string
	cart     *entity.Cart
	inflight int
	err      error
}

func NewSession(gw Gateway, ids IDStore, opts ...Option) *Session {
	s := &Session{gw: gw, ids: ids}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init reads the stored cart id and fetches or creates the cart. It runs once;
// concurrent callers wait for the first one.
func (s *Session) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		id, err := s.ids.Load(ctx)
		if err != nil {
			log.Printf("cart: read stored cart id: %v", err)
		}
		s.mu.Lock()
		s.cartID = id
		s.mu.Unlock()
		s.initErr = s.fetch(ctx)
	})
	return s.initErr
}

// Refresh refetches the cart. Without a cart id it does nothing.
func (s *Session) Refresh(ctx context.Context) error {
	if s.CartID() == "" {
		return nil
	}
	return s.fetch(ctx)
}

// Recover retries after a failed create: it fetches by id or creates a new cart.
func (s *Session) Recover(ctx context.Context) error {
	if s.State() != StateError {
		return nil
	}
	return s.fetch(ctx)
}

// fetch loads the cart by id, replacing a missing remote cart with a new one.
func (s *Session) fetch(ctx context.Context) error {
	s.begin()
	id := s.CartID()
	if id != "" {
		if cart, ok := s.gw.GetCart(ctx, id); ok {
			return s.finish(cart, nil)
		}
		log.Printf("cart: stored cart %s no longer exists, creating a new one", id)
	}
	_, err := s.create(ctx)
	if err != nil {
		return s.fail(err)
	}
	return s.finish(nil, nil)
}

// create makes a new remote cart, persists its id and makes it current.
func (s *Session) create(ctx context.Context) (*entity.Cart, error) {
	s.mu.Lock()
	s.state = StateCreating
	s.mu.Unlock()

	cart, err := s.gw.CreateCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: create: %w", err)
	}
	if err := s.ids.Save(ctx, cart.ID); err != nil {
		log.Printf("cart: persist cart id %s: %v", cart.ID, err)
	}
	s.mu.Lock()
	s.cartID = cart.ID
	s.cart = cart
	s.state = StateReady
	s.mu.Unlock()
	return cart, nil
}

// AddItem adds quantity of a variant. Without a cart id a cart is created and
// persisted first; if the add then fails the new empty cart is kept.
func (s *Session) AddItem(ctx context.Context, variantID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("cart: add item: %w: %d", ErrInvalidQuantity, quantity)
	}
	if variantID == "" {
		return errors.New("cart: add item: variant id is required")
	}
	if s.serialize {
		s.mutations.Lock()
		defer s.mutations.Unlock()
	}

	s.begin()
	id := s.CartID()
	if id == "" {
		created, err := s.create(ctx)
		if err != nil {
			return s.fail(err)
		}
		id = created.ID
	}
	cart, err := s.gw.AddToCart(ctx, id, variantID, quantity)
	if err != nil {
		return s.finish(nil, fmt.Errorf("cart: add item: %w", err))
	}
	return s.finish(cart, nil)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (s *Session) UpdateItem(ctx context.Context, lineID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("cart: update item: %w: %d", ErrInvalidQuantity, quantity)
	}
	id := s.CartID()
	if id == "" {
		return ErrCartNotInitialized
	}
	if s.serialize {
		s.mutations.Lock()
		defer s.mutations.Unlock()
	}

	s.begin()
	cart, err := s.gw.UpdateCartLine(ctx, id, lineID, quantity)
	if err != nil {
		return s.finish(nil, fmt.Errorf("cart: update item: %w", err))
	}
	return s.finish(cart, nil)
}

// RemoveItem drops a line.
func (s *Session) RemoveItem(ctx context.Context, lineID string) error {
	return s.UpdateItem(ctx, lineID, 0)
}

func (s *Session) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = nil
	s.mu.Unlock()
}

// finish ends a call. A failed mutation keeps the previous cart record.
func (s *Session) finish(cart *entity.Cart, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = err
		return err
	}
	if cart != nil {
		s.cart = cart
		s.cartID = cart.ID
		s.state = StateReady
	}
	return nil
}

// fail ends a call whose cart could not be created at all.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.err = err
	s.state = StateError
	return err
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		State:   s.state,
		CartID:  s.cartID,
		Cart:    s.cart,
		Loading: s.inflight > 0,
		Err:     s.err,
	}
	if s.cart != nil {
		snap.ItemCount = s.cart.TotalQuantity
		snap.CheckoutURL = s.cart.CheckoutURL
	}
	return snap
}

func (s *Session) CartID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartID
}

func (s *Session) Cart() *entity.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ItemCount is the cart's total quantity, 0 without a cart.
func (s *Session) ItemCount() int {
	return s.Snapshot().ItemCount
}

func (s *Session) CheckoutURL() string {
	return s.Snapshot().CheckoutURL
}
