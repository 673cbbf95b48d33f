package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories/memory"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/queue"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

type fakeGateway struct {
	url   string
	err   error
	calls int
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, _ *models.Order, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type checkoutFixture struct {
	checkout *services.CheckoutService
	products *memory.ProductRepository
	users    *memory.UserRepository
	orders   *memory.OrderRepository
	gateway  *fakeGateway

	userID string
	sent   []queue.Job
	mu     sync.Mutex
}

func testAddress() models.Address {
	return models.Address{
		FirstName: "Ari", LastName: "Voss", Email: "ari@example.com",
		Street: "12 Gate St", City: "Halifax", Province: "NS",
		Country: "Canada", PostalCode: "B3H 1A1", Phone: "9025550101",
	}
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		products: memory.NewProductRepository(),
		users:    memory.NewUserRepository(),
		orders:   memory.NewOrderRepository(),
		gateway:  &fakeGateway{url: "https://checkout.stripe.test/s/abc"},
	}

	user := models.User{
		Name: "Ari", Email: "ari@example.com", Password: "x",
		CartData: models.CartData{"whatever": {models.VariantStandard: 1}},
	}
	require.NoError(t, f.users.Create(context.Background(), &user))
	f.userID = user.ID.Hex()

	f.checkout = services.NewCheckoutService(f.orders, f.products, f.users, f.gateway)
	f.checkout.SetEnqueue(func(job queue.Job) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sent = append(f.sent, job)
		return nil
	})
	return f
}

// addProduct seeds a card with the given Standard-variant stock.
func (f *checkoutFixture) addProduct(t *testing.T, name string, price float64, standard int) models.Product {
	t.Helper()
	p := models.Product{
		Name: name, Price: price,
		Image:    []string{name + "-std.png", name + "-runed.png"},
		Category: "Bronze", SubCategory: "Dragon",
		Rarities: models.Rarities{Standard: standard},
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *checkoutFixture) placeStripeOrder(t *testing.T, items []services.LineItemRequest, amount float64) models.Order {
	t.Helper()
	_, err := f.checkout.PlaceOrderStripe(context.Background(), f.userID, items, amount, testAddress(), "https://shop.test")
	require.NoError(t, err)
	orders, err := f.orders.FindByUser(context.Background(), f.userID)
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	return orders[0]
}

func (f *checkoutFixture) stock(t *testing.T, id, variant string) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Rarities.Of(variant)
}

func (f *checkoutFixture) cart(t *testing.T) models.CartData {
	t.Helper()
	u, err := f.users.FindByID(context.Background(), f.userID)
	require.NoError(t, err)
	return u.CartData
}

// ─── Placement ────────────────────────────────────────────────────────────────

func TestPlaceOrderCOD(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 5)
	ctx := context.Background()

	order, err := f.checkout.PlaceOrder(ctx, f.userID,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}},
		20.00, testAddress())
	require.NoError(t, err)

	assert.Equal(t, models.StatusOrderPlaced, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.False(t, order.Payment)
	assert.Equal(t, 3, f.stock(t, p.ID.Hex(), models.VariantStandard), "COD takes stock up front")
	assert.Empty(t, f.cart(t), "COD clears the cart")
}

func TestPlaceOrderCODInsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 1)

	_, err := f.checkout.PlaceOrder(context.Background(), f.userID,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}},
		20.00, testAddress())
	assert.ErrorIs(t, err, services.ErrOutOfStock)
	assert.Equal(t, 1, f.stock(t, p.ID.Hex(), models.VariantStandard))

	orders, _ := f.orders.FindByUser(context.Background(), f.userID)
	assert.Empty(t, orders, "no order record on a failed COD placement")
}

func TestPlaceOrderStripeLeavesStockAndCart(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 5)

	url, err := f.checkout.PlaceOrderStripe(context.Background(), f.userID,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}},
		20.00, testAddress(), "https://shop.test")
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/s/abc", url)
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, 5, f.stock(t, p.ID.Hex(), models.VariantStandard), "stock waits for settlement")
	assert.NotEmpty(t, f.cart(t), "cart waits for settlement")

	orders, err := f.orders.FindByUser(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.False(t, orders[0].Payment)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.PlaceOrder(context.Background(), f.userID,
		[]services.LineItemRequest{{ProductID: "000000000000000000000000", Variant: models.VariantStandard, Quantity: 1}},
		10.00, testAddress())
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestPlaceOrderEmpty(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.checkout.PlaceOrder(context.Background(), f.userID, nil, 0, testAddress())
	assert.ErrorIs(t, err, services.ErrEmptyOrder)
}

// ─── Settlement: success path ─────────────────────────────────────────────────

func TestVerifyStripeSuccess(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 2)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}}, 20.00)
	ctx := context.Background()

	require.NoError(t, f.checkout.VerifyStripe(ctx, order.ID.Hex(), true, f.userID))

	settled, err := f.orders.FindByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.True(t, settled.Payment, "order flagged paid")
	assert.Equal(t, 0, f.stock(t, p.ID.Hex(), models.VariantStandard), "stock decremented")
	assert.Empty(t, f.cart(t), "cart cleared")

	require.Len(t, f.sent, 1, "exactly one confirmation email")
	email, ok := f.sent[0].(*jobs.PurchaseEmailJob)
	require.True(t, ok)
	assert.Equal(t, "ari@example.com", email.To)
	assert.Equal(t, []string{"Emberwing"}, email.Names)
	assert.Equal(t, []string{"Emberwing-std.png"}, email.Images, "email carries the variant's image")
}

func TestVerifyStripeIdempotent(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 2)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}}, 20.00)
	ctx := context.Background()

	require.NoError(t, f.checkout.VerifyStripe(ctx, order.ID.Hex(), true, f.userID))
	require.NoError(t, f.checkout.VerifyStripe(ctx, order.ID.Hex(), true, f.userID), "repeat verify succeeds")

	assert.Equal(t, 0, f.stock(t, p.ID.Hex(), models.VariantStandard), "stock decremented once, not twice")
	assert.Len(t, f.sent, 1, "no second email")
}

// Two simultaneous verifications of the SAME order: both pass the unpaid
// read together, so only the conditional paid flip keeps the loser from
// charging stock a second time.
func TestVerifyStripeConcurrentSameOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 4)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}}, 20.00)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.checkout.VerifyStripe(ctx, order.ID.Hex(), true, f.userID))
		}()
	}
	wg.Wait()

	settled, err := f.orders.FindByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.True(t, settled.Payment)
	assert.Equal(t, 2, f.stock(t, p.ID.Hex(), models.VariantStandard),
		"one decrement lands, the loser's is handed back")
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Len(t, f.sent, 1, "exactly one confirmation email")
}

// ─── Settlement: failure paths ────────────────────────────────────────────────

func TestVerifyStripeCancelDeletesOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 2)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}}, 20.00)
	ctx := context.Background()

	require.NoError(t, f.checkout.VerifyStripe(ctx, order.ID.Hex(), false, f.userID))

	_, err := f.orders.FindByID(ctx, order.ID.Hex())
	assert.Error(t, err, "cancelled order is deleted")
	assert.Equal(t, 2, f.stock(t, p.ID.Hex(), models.VariantStandard), "stock intact")
	assert.NotEmpty(t, f.cart(t), "cart intact")
	assert.Empty(t, f.sent, "no email")
}

func TestVerifyStripeUnknownOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	err := f.checkout.VerifyStripe(context.Background(), "000000000000000000000000", true, f.userID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestVerifyStripeOutOfStock(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 2)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 2}}, 20.00)
	ctx := context.Background()

	// Someone else bought the last copies between checkout and return.
	require.NoError(t, f.products.DecrementStock(ctx, p.ID.Hex(), models.VariantStandard, 1))

	err := f.checkout.VerifyStripe(ctx, order.ID.Hex(), true, f.userID)
	assert.ErrorIs(t, err, services.ErrOutOfStock)

	unsettled, findErr := f.orders.FindByID(ctx, order.ID.Hex())
	require.NoError(t, findErr)
	assert.False(t, unsettled.Payment, "order stays unpaid")
	assert.Equal(t, 1, f.stock(t, p.ID.Hex(), models.VariantStandard), "remaining stock untouched")
	assert.Empty(t, f.sent)
}

func TestVerifyStripeCompensatesPartialDecrement(t *testing.T) {
	f := newCheckoutFixture(t)
	first := f.addProduct(t, "Emberwing", 10.00, 5)
	second := f.addProduct(t, "Warden", 20.00, 0) // already sold out
	order := f.placeStripeOrder(t, []services.LineItemRequest{
		{ProductID: first.ID.Hex(), Variant: models.VariantStandard, Quantity: 2},
		{ProductID: second.ID.Hex(), Variant: models.VariantStandard, Quantity: 1},
	}, 40.00)

	err := f.checkout.VerifyStripe(context.Background(), order.ID.Hex(), true, f.userID)
	assert.ErrorIs(t, err, services.ErrOutOfStock)

	assert.Equal(t, 5, f.stock(t, first.ID.Hex(), models.VariantStandard),
		"first item's decrement is put back")
}

// ─── Concurrency ──────────────────────────────────────────────────────────────

// Racing settlements against the same variant must never drive its count
// negative: with stock 5 and ten one-copy orders, exactly five settle.
func TestConcurrentSettlementsNeverOversell(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 5)
	ctx := context.Background()

	orderIDs := make([]string, 10)
	for i := range orderIDs {
		order := models.Order{
			UserID:        f.userID,
			Items:         []models.OrderItem{{ProductID: p.ID.Hex(), Name: "Emberwing", Price: 10.00, Rarity: models.VariantStandard, Quantity: 1}},
			Amount:        10.00,
			Address:       testAddress(),
			PaymentMethod: models.PaymentStripe,
		}
		require.NoError(t, f.orders.Create(ctx, &order))
		orderIDs[i] = order.ID.Hex()
	}

	var wg sync.WaitGroup
	var paid, conflicts int32
	var mu sync.Mutex
	for _, id := range orderIDs {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.checkout.VerifyStripe(ctx, id, true, f.userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				paid++
			case errors.Is(err, services.ErrOutOfStock):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, paid)
	assert.EqualValues(t, 5, conflicts)
	assert.Equal(t, 0, f.stock(t, p.ID.Hex(), models.VariantStandard), "never negative, never leftover")
}

// ─── Admin surface ────────────────────────────────────────────────────────────

func TestUpdateStatus(t *testing.T) {
	f := newCheckoutFixture(t)
	p := f.addProduct(t, "Emberwing", 10.00, 2)
	order := f.placeStripeOrder(t,
		[]services.LineItemRequest{{ProductID: p.ID.Hex(), Variant: models.VariantStandard, Quantity: 1}}, 10.00)
	ctx := context.Background()

	require.NoError(t, f.checkout.UpdateStatus(ctx, order.ID.Hex(), models.StatusDelivered))
	got, err := f.orders.FindByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)

	assert.Error(t, f.checkout.UpdateStatus(ctx, order.ID.Hex(), "Shipped"), "unknown status rejected")
}
