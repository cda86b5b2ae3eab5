package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lunelle.GO/service/cart"
	"lunelle.GO/service/shopify"
	"lunelle.GO/service/shopify/shopifytest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type memStore struct {
	mu    sync.Mutex
	id    string
	saves int
	err   error
}

func (m *memStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *memStore) Save(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.id = id
	return nil
}

func (m *memStore) stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func newFake(t *testing.T) *shopifytest.Server {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.Product("sun-ring", "Rings", "35.00", false),
		shopifytest.SizedProduct("silk-dress", "Dresses", "120.00", []string{"S", "M"}, []string{"Rose"}, "M/Rose"),
	)
	return fake
}

const moonRing = "gid://shopify/ProductVariant/moon-ring"

func TestSession_InitWithoutStoredIDCreatesCart(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{}
	s := cart.NewSession(fake.Client(), ids)

	require.NoError(t, s.Init(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, cart.StateReady, snap.State)
	require.NotNil(t, snap.Cart)
	assert.True(t, snap.Cart.IsEmpty())
	assert.Equal(t, snap.CartID, ids.stored())
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 1, fake.Calls("cartCreate"))
	assert.Equal(t, 0, fake.Calls("getCart"))
}

func TestSession_InitRunsOnce(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Init(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fake.Calls("cartCreate"))
}

func TestSession_StoredIDIsFetched(t *testing.T) {
	fake := newFake(t)
	existing, err := fake.Client().CreateCart(context.Background())
	require.NoError(t, err)
	ids := &memStore{id: existing.ID}

	s := cart.NewSession(fake.Client(), ids)
	require.NoError(t, s.Init(context.Background()))

	assert.Equal(t, existing.ID, s.CartID())
	assert.Equal(t, 1, fake.Calls("getCart"))
	assert.Equal(t, 1, fake.Calls("cartCreate"))
	assert.Zero(t, ids.saves)
}

func TestSession_StaleIDIsReplacedSilently(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{id: "gid://shopify/Cart/expired"}
	s := cart.NewSession(fake.Client(), ids)

	require.NoError(t, s.Init(context.Background()))

	assert.Equal(t, cart.StateReady, s.State())
	assert.NoError(t, s.Err())
	assert.NotEqual(t, "gid://shopify/Cart/expired", s.CartID())
	assert.Equal(t, s.CartID(), ids.stored())
	_, ok := fake.Cart(s.CartID())
	assert.True(t, ok)
}

func TestSession_AddThenRemoveRoundTrip(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AddItem(ctx, moonRing, 2))
	c := s.Cart()
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.TotalQuantity)
	assert.Equal(t, 2, s.ItemCount())
	assert.Equal(t, "$100.00", c.Cost.Total.Format())
	lineID := c.Lines[0].ID

	require.NoError(t, s.UpdateItem(ctx, lineID, 0))
	c = s.Cart()
	assert.Nil(t, c.Line(lineID))
	assert.Equal(t, 0, c.TotalQuantity)
	assert.Equal(t, 0, s.ItemCount())
}

func TestSession_RemoveItem(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, moonRing, 1))
	require.NoError(t, s.RemoveItem(ctx, s.Cart().Lines[0].ID))
	assert.True(t, s.Cart().IsEmpty())
}

func TestSession_UserErrorsLeaveCartUnchanged(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.AddItem(ctx, moonRing, 1))
	before := s.Cart()

	fake.UserErrorNext("cartLinesAdd", "Quantity exceeds available stock")
	err := s.AddItem(ctx, moonRing, 3)
	require.Error(t, err)
	assert.True(t, shopify.IsGatewayError(err))
	assert.Contains(t, err.Error(), "Quantity exceeds available stock")

	snap := s.Snapshot()
	assert.Same(t, before, snap.Cart)
	assert.Equal(t, 1, snap.ItemCount)
	assert.Equal(t, err, snap.Err)
	assert.Equal(t, cart.StateReady, snap.State)
	assert.False(t, snap.Loading)

	fake.UserErrorNext("cartLinesUpdate", "Line is locked")
	require.Error(t, s.UpdateItem(ctx, before.Lines[0].ID, 5))
	assert.Same(t, before, s.Cart())
}

func TestSession_SoldOutVariantIsRejected(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	err := s.AddItem(ctx, "gid://shopify/ProductVariant/silk-dress-m-rose", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already sold out")
	assert.True(t, s.Cart().IsEmpty())
}

func TestSession_SuccessClearsPreviousError(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.Error(t, s.AddItem(ctx, "gid://shopify/ProductVariant/missing", 1))
	require.Error(t, s.Err())
	require.NoError(t, s.AddItem(ctx, moonRing, 1))
	assert.NoError(t, s.Err())
}

func TestSession_UpdateWithoutIDFailsFast(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})

	err := s.UpdateItem(context.Background(), "gid://shopify/CartLine/l1", 1)
	require.ErrorIs(t, err, cart.ErrCartNotInitialized)
	assert.Equal(t, 0, fake.Calls("cartLinesUpdate"))
	assert.Equal(t, 0, fake.Calls("cartCreate"))
}

func TestSession_InvalidQuantityNeverHitsNetwork(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	require.ErrorIs(t, s.AddItem(ctx, moonRing, 0), cart.ErrInvalidQuantity)
	require.ErrorIs(t, s.UpdateItem(ctx, "gid://shopify/CartLine/l1", -1), cart.ErrInvalidQuantity)
	require.Error(t, s.AddItem(ctx, "", 1))
	assert.Equal(t, 0, fake.Calls("cartLinesAdd"))
	assert.Equal(t, 0, fake.Calls("cartLinesUpdate"))
	assert.NoError(t, s.Err())
}

func TestSession_AddWithoutIDCreatesFirst(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{}
	s := cart.NewSession(fake.Client(), ids)

	require.NoError(t, s.AddItem(context.Background(), moonRing, 1))
	assert.Equal(t, 1, fake.Calls("cartCreate"))
	assert.Equal(t, s.CartID(), ids.stored())
	assert.Equal(t, 1, s.ItemCount())
}

func TestSession_CreateThenFailedAddKeepsNewCart(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{}
	s := cart.NewSession(fake.Client(), ids)

	err := s.AddItem(context.Background(), "gid://shopify/ProductVariant/missing", 1)
	require.Error(t, err)

	assert.NotEmpty(t, ids.stored())
	assert.Equal(t, ids.stored(), s.CartID())
	assert.Equal(t, 1, fake.CartCount())
	assert.Equal(t, cart.StateReady, s.State())
	assert.True(t, s.Cart().IsEmpty())
}

func TestSession_CreateFailureEntersErrorState(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{}
	s := cart.NewSession(fake.Client(), ids)
	ctx := context.Background()

	fake.FailNext("cartCreate", "Throttled")
	err := s.Init(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Throttled")

	snap := s.Snapshot()
	assert.Equal(t, cart.StateError, snap.State)
	assert.Nil(t, snap.Cart)
	assert.Empty(t, snap.CartID)
	assert.False(t, snap.Loading)
	assert.Empty(t, ids.stored())

	require.NoError(t, s.Recover(ctx))
	assert.Equal(t, cart.StateReady, s.State())
	assert.Equal(t, s.CartID(), ids.stored())
}

func TestSession_PersistFailureIsNotFatal(t *testing.T) {
	fake := newFake(t)
	ids := &memStore{err: errors.New("disk full")}
	s := cart.NewSession(fake.Client(), ids)

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, cart.StateReady, s.State())
	assert.NotEmpty(t, s.CartID())
	assert.Equal(t, 1, ids.saves)
}

func TestSession_RefreshPicksUpRemoteChanges(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	_, err := fake.Client().AddToCart(ctx, s.CartID(), moonRing, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, s.ItemCount())

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, 4, s.ItemCount())
}

func TestSession_RefreshWithoutIDDoesNothing(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 0, fake.Calls("getCart"))
	assert.Equal(t, 0, fake.Calls("cartCreate"))
	assert.Equal(t, cart.StateNoID, s.State())
}

func TestSession_SerializedMutations(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{}, cart.WithSerializedMutations())
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	release := fake.Hold("cartLinesAdd")
	errs := make(chan error, 2)
	go func() { errs <- s.AddItem(ctx, moonRing, 1) }()
	require.Eventually(t, func() bool { return fake.Calls("cartLinesAdd") == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Snapshot().Loading)

	go func() { errs <- s.AddItem(ctx, moonRing, 1) }()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, fake.Calls("cartLinesAdd"), "second mutation must wait for the first")

	release()
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Equal(t, 2, fake.Calls("cartLinesAdd"))
	assert.Equal(t, 2, s.ItemCount())
	assert.False(t, s.Snapshot().Loading)
}

func TestSession_ConcurrentMutationsWithoutSerialization(t *testing.T) {
	fake := newFake(t)
	s := cart.NewSession(fake.Client(), &memStore{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	release := fake.Hold("cartLinesAdd")
	errs := make(chan error, 2)
	go func() { errs <- s.AddItem(ctx, moonRing, 1) }()
	require.Eventually(t, func() bool { return fake.Calls("cartLinesAdd") == 1 }, time.Second, 5*time.Millisecond)
	go func() { errs <- s.AddItem(ctx, moonRing, 1) }()
	require.Eventually(t, func() bool { return fake.Calls("cartLinesAdd") == 2 }, time.Second, 5*time.Millisecond)

	release()
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	remote, ok := fake.Cart(s.CartID())
	require.True(t, ok)
	assert.Equal(t, 2, remote.TotalQuantity)
	assert.False(t, s.Snapshot().Loading)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "no-id", cart.StateNoID.String())
	assert.Equal(t, "creating", cart.StateCreating.String())
	assert.Equal(t, "ready", cart.StateReady.String())
	assert.Equal(t, "error", cart.StateError.String())
}
