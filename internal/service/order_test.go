package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/events"
)

// fakeCartStore is an in-memory service.CartStore.
type fakeCartStore struct {
	carts map[uuid.UUID]*Cart
	lines map[uuid.UUID][]CartLine
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		carts: make(map[uuid.UUID]*Cart),
		lines: make(map[uuid.UUID][]CartLine),
	}
}

func (f *fakeCartStore) addCart(converted bool, lines ...CartLine) uuid.UUID {
	id := uuid.New()
	f.carts[id] = &Cart{ID: id, Token: id.String(), Converted: converted}
	f.lines[id] = lines
	return id
}

func (f *fakeCartStore) GetCartByToken(_ context.Context, token string) (*Cart, error) {
	for _, c := range f.carts {
		if c.Token == token {
			return c, nil
		}
	}
	return nil, domain.NotFound("cart.get", "cart", token)
}

func (f *fakeCartStore) GetCartByID(_ context.Context, cartID uuid.UUID) (*Cart, error) {
	c, ok := f.carts[cartID]
	if !ok {
		return nil, domain.NotFound("cart.get", "cart", cartID.String())
	}
	return c, nil
}

func (f *fakeCartStore) CreateCart(_ context.Context, token string) (*Cart, error) {
	id := uuid.New()
	c := &Cart{ID: id, Token: token}
	f.carts[id] = c
	return c, nil
}

func (f *fakeCartStore) AddCartLine(_ context.Context, cartID uuid.UUID, line CartLine) (*CartLine, error) {
	if _, ok := f.carts[cartID]; !ok {
		return nil, domain.NotFound("cart.add_line", "cart", cartID.String())
	}
	line.ID = uuid.New()
	f.lines[cartID] = append(f.lines[cartID], line)
	return &line, nil
}

func (f *fakeCartStore) UpdateCartLineQuantity(_ context.Context, cartID, lineID uuid.UUID, quantity int32) error {
	for i, l := range f.lines[cartID] {
		if l.ID == lineID {
			f.lines[cartID][i].Quantity = quantity
			return nil
		}
	}
	return domain.NotFound("cart.update_quantity", "cart line", lineID.String())
}

func (f *fakeCartStore) RemoveCartLine(_ context.Context, cartID, lineID uuid.UUID) error {
	lines := f.lines[cartID]
	for i, l := range lines {
		if l.ID == lineID {
			f.lines[cartID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("cart.remove_line", "cart line", lineID.String())
}

func (f *fakeCartStore) GetCartLines(_ context.Context, cartID uuid.UUID) ([]CartLine, error) {
	return f.lines[cartID], nil
}

func (f *fakeCartStore) ClearCart(_ context.Context, cartID uuid.UUID) error {
	f.lines[cartID] = nil
	return nil
}

// fakeOrderStore is an in-memory service.OrderStore.
type fakeOrderStore struct {
	carts  *fakeCartStore
	orders map[uuid.UUID]*domain.Order
}

func newFakeOrderStore(carts *fakeCartStore) *fakeOrderStore {
	return &fakeOrderStore{carts: carts, orders: make(map[uuid.UUID]*domain.Order)}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order *domain.Order, cartID uuid.UUID) (*domain.Order, error) {
	if f.carts != nil {
		cart, ok := f.carts.carts[cartID]
		if !ok {
			return nil, domain.NotFound("order.create", "cart", cartID.String())
		}
		if cart.Converted {
			return nil, domain.ErrCartAlreadyConverted
		}
		cart.Converted = true
	}
	o := *order
	o.ID = uuid.New()
	f.orders[o.ID] = &o
	return &o, nil
}

func (f *fakeOrderStore) GetOrder(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) ListOrders(_ context.Context, filter OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if filter.CustomerID != uuid.Nil && o.CustomerID != filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, o.Type) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func containsStatus(haystack []domain.OrderStatus, needle domain.OrderStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsType(haystack []domain.OrderType, needle domain.OrderType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrderStore) UpdateOrderPaymentStatus(_ context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	confirmations int
	results       []bool
}

func (f *fakeNotifier) SendOrderConfirmation(context.Context, *domain.Order) error {
	f.confirmations++
	return nil
}

func (f *fakeNotifier) SendPaymentResult(_ context.Context, _ *domain.Order, approved bool, _ string) error {
	f.results = append(f.results, approved)
	return nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func newOrderFixture(t *testing.T) (*fakeCartStore, *fakeOrderStore, *fakeNotifier, domain.OrderService) {
	t.Helper()
	carts := newFakeCartStore()
	store := newFakeOrderStore(carts)
	notifier := &fakeNotifier{}
	svc := NewOrderService(store, carts, events.Noop{}, notifier, 300, testLogger())
	return carts, store, notifier, svc
}

func twoLines() []CartLine {
	return []CartLine{
		{ID: uuid.New(), DishID: uuid.New(), DishName: "Burger Combo", Quantity: 2, UnitPriceCents: 1000},
		{ID: uuid.New(), DishID: uuid.New(), DishName: "Pasta", Quantity: 1, UnitPriceCents: 950},
	}
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	carts, _, notifier, svc := newOrderFixture(t)
	cartID := carts.addCart(false, twoLines()...)
	customerID := uuid.New()

	order, err := svc.PlaceOrder(context.Background(), domain.PlaceOrderParams{
		CartID:        cartID,
		CustomerID:    customerID,
		CustomerEmail: "eva@example.com",
		Type:          domain.OrderTypePickup,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, domain.Cents(2950), order.SubtotalCents)
	assert.Equal(t, domain.Cents(0), order.DeliveryFeeCents)
	assert.Equal(t, domain.Cents(2950), order.TotalCents)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, domain.Cents(2000), order.Lines[0].LineTotalCents)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, 1, notifier.confirmations)
}

func TestPlaceOrderDeliveryFee(t *testing.T) {
	carts, _, _, svc := newOrderFixture(t)
	cartID := carts.addCart(false, twoLines()...)

	order, err := svc.PlaceOrder(context.Background(), domain.PlaceOrderParams{
		CartID:          cartID,
		CustomerID:      uuid.New(),
		Type:            domain.OrderTypeDelivery,
		DeliveryAddress: "12 Via Roma",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(300), order.DeliveryFeeCents)
	assert.Equal(t, domain.Cents(3250), order.TotalCents)
}

func TestPlaceOrderFulfillmentValidation(t *testing.T) {
	carts, _, _, svc := newOrderFixture(t)
	cartID := carts.addCart(false, twoLines()...)

	tests := []struct {
		name    string
		params  domain.PlaceOrderParams
		wantErr error
	}{
		{
			name:    "dine-in needs table",
			params:  domain.PlaceOrderParams{CartID: cartID, Type: domain.OrderTypeDineIn},
			wantErr: domain.ErrMissingTableNumber,
		},
		{
			name:    "delivery needs address",
			params:  domain.PlaceOrderParams{CartID: cartID, Type: domain.OrderTypeDelivery},
			wantErr: domain.ErrMissingAddress,
		},
		{
			name:    "unknown type rejected",
			params:  domain.PlaceOrderParams{CartID: cartID, Type: domain.OrderType("drive_through")},
			wantErr: ErrInvalidOrderType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	carts, _, _, svc := newOrderFixture(t)
	cartID := carts.addCart(false)

	_, err := svc.PlaceOrder(context.Background(), domain.PlaceOrderParams{
		CartID: cartID,
		Type:   domain.OrderTypePickup,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderIdempotentPerCart(t *testing.T) {
	carts, _, _, svc := newOrderFixture(t)
	cartID := carts.addCart(false, twoLines()...)
	params := domain.PlaceOrderParams{CartID: cartID, CustomerID: uuid.New(), Type: domain.OrderTypePickup}

	_, err := svc.PlaceOrder(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), params)
	assert.ErrorIs(t, err, ErrCartAlreadyConverted)
}

func TestTransitionHappyPath(t *testing.T) {
	carts, store, _, svc := newOrderFixture(t)
	cartID := carts.addCart(false, twoLines()...)
	order, err := svc.PlaceOrder(context.Background(), domain.PlaceOrderParams{
		CartID: cartID, CustomerID: uuid.New(), Type: domain.OrderTypePickup,
	})
	require.NoError(t, err)

	waiter := domain.Principal{UserID: uuid.New(), Role: domain.RoleWaiter}

	updated, err := svc.Transition(context.Background(), order.ID, domain.OrderStatusAccepted, waiter)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, updated.Status)
	assert.Equal(t, domain.OrderStatusAccepted, store.orders[order.ID].Status)
}

func TestTransitionCustomerOwnership(t *testing.T) {
	carts, _, _, svc := newOrderFixture(t)
	owner := uuid.New()
	cartID := carts.addCart(false, twoLines()...)
	order, err := svc.PlaceOrder(context.Background(), domain.PlaceOrderParams{
		CartID: cartID, CustomerID: owner, Type: domain.OrderTypePickup,
	})
	require.NoError(t, err)

	stranger := domain.Principal{UserID: uuid.New(), Role: domain.RoleCustomer}
	_, err = svc.Transition(context.Background(), order.ID, domain.OrderStatusCancelled, stranger)
	assert.ErrorIs(t, err, domain.ErrNotOrderOwner)

	ownerPrincipal := domain.Principal{UserID: owner, Role: domain.RoleCustomer}
	updated, err := svc.Transition(context.Background(), order.ID, domain.OrderStatusCancelled, ownerPrincipal)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)
}

// staleReadStore simulates a concurrent transition landing between the read
// and the optimistic update: reads always report placed while the real row
// has moved on.
type staleReadStore struct {
	*fakeOrderStore
}

func (s *staleReadStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, err := s.fakeOrderStore.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatusPlaced
	return o, nil
}

func TestTransitionConcurrentLoser(t *testing.T) {
	carts := newFakeCartStore()
	store := newFakeOrderStore(carts)
	svc := NewOrderService(&staleReadStore{store}, carts, events.Noop{}, &fakeNotifier{}, 300, testLogger())

	id := uuid.New()
	store.orders[id] = &domain.Order{ID: id, Status: domain.OrderStatusAccepted}

	waiter := domain.Principal{UserID: uuid.New(), Role: domain.RoleWaiter}
	_, err := svc.Transition(context.Background(), id, domain.OrderStatusAccepted, waiter)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestListForDeliveryFilters(t *testing.T) {
	_, store, _, svc := newOrderFixture(t)
	put := func(orderType domain.OrderType, status domain.OrderStatus) {
		id := uuid.New()
		store.orders[id] = &domain.Order{ID: id, Type: orderType, Status: status}
	}
	put(domain.OrderTypeDelivery, domain.OrderStatusReady)
	put(domain.OrderTypeDelivery, domain.OrderStatusOutForDelivery)
	put(domain.OrderTypeDelivery, domain.OrderStatusPlaced)
	put(domain.OrderTypePickup, domain.OrderStatusReady)

	orders, err := svc.ListForDelivery(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, domain.OrderTypeDelivery, o.Type)
	}
}
