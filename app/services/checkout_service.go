package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/pkg/collection"
	"github.com/lumenera/backend/pkg/event"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/metrics"
	"github.com/lumenera/backend/pkg/queue"
)

var (
	// ErrEmptyOrder rejects checkout with no line items.
	ErrEmptyOrder = errors.New("services: order has no items")

	// ErrProductNotFound means a requested line item no longer exists in
	// the catalog.
	ErrProductNotFound = errors.New("services: product not found")

	// ErrOrderNotFound means the referenced order record does not exist.
	ErrOrderNotFound = errors.New("services: order not found")

	// ErrOutOfStock means a line item's variant cannot cover the requested
	// quantity. Any decrements already applied have been compensated.
	ErrOutOfStock = errors.New("services: out of stock")
)

// Events fired on the process-local bus.
const (
	EventOrderPlaced = "order.placed"
	EventOrderPaid   = "order.paid"
)

// LineItemRequest is one (product, variant, quantity) the client wants to buy.
type LineItemRequest struct {
	ProductID string `json:"_id"`
	Variant   string `json:"rarity"`
	Quantity  int    `json:"quantity"`
}

// PaymentGateway creates hosted checkout sessions. Satisfied by
// payment.Client; tests substitute a fake.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, order *models.Order, origin string) (string, error)
}

// CheckoutService owns order placement and settlement verification.
type CheckoutService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	gateway  PaymentGateway

	// enqueue defaults to queue.Dispatch; tests capture jobs through it.
	enqueue func(queue.Job) error
}

func NewCheckoutService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	gateway PaymentGateway,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		products: products,
		users:    users,
		gateway:  gateway,
		enqueue:  queue.Dispatch,
	}
}

// SetEnqueue overrides the job dispatcher. Used by tests.
func (s *CheckoutService) SetEnqueue(fn func(queue.Job) error) { s.enqueue = fn }

// buildLineItems resolves each request against the catalog and freezes
// name, price and images into order line items. No stock is touched here.
func (s *CheckoutService) buildLineItems(ctx context.Context, items []LineItemRequest) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	out := make([]models.OrderItem, 0, len(items))
	for _, req := range items {
		if req.Quantity <= 0 {
			continue
		}
		if !models.IsValidVariant(req.Variant) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, req.Variant)
		}
		product, err := s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, req.ProductID)
			}
			return nil, err
		}
		out = append(out, models.OrderItem{
			ProductID: req.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Rarity:    req.Variant,
			Quantity:  req.Quantity,
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyOrder
	}
	return out, nil
}

// checkAmount recomputes the items total and logs when the client-supplied
// amount disagrees. The stored amount is left as supplied.
func checkAmount(order *models.Order) {
	var total float64
	for _, item := range order.Items {
		total += item.Price * float64(item.Quantity)
	}
	if math.Abs(total-order.Amount) > 0.005 {
		logger.Warn("order amount mismatch",
			"order_id", order.ID.Hex(),
			"supplied", order.Amount,
			"computed", total)
	}
}

// decrementAll takes stock for every line item. On a mid-list failure the
// earlier decrements are put back before returning, so a rejected settlement
// never leaks inventory.
func (s *CheckoutService) decrementAll(ctx context.Context, items []models.OrderItem) error {
	for i, item := range items {
		err := s.products.DecrementStock(ctx, item.ProductID, item.Rarity, item.Quantity)
		if err == nil {
			continue
		}
		s.restock(ctx, items[:i])
		if errors.Is(err, repositories.ErrInsufficientStock) {
			metrics.StockConflicts.Inc()
			return fmt.Errorf("%w: %s %s", ErrOutOfStock, item.ProductID, item.Rarity)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		return err
	}
	return nil
}

// restock puts back the stock taken for items. Failures are logged, not
// returned; a missed increment is an inventory correction, not a reason
// to fail the caller.
func (s *CheckoutService) restock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Rarity, item.Quantity); err != nil {
			logger.WithCtx(ctx).Error("stock compensation failed",
				"product_id", item.ProductID,
				"variant", item.Rarity,
				"error", err)
		}
	}
}

// PlaceOrder places a cash-on-delivery order: stock is taken up front and
// the cart cleared immediately.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, items []LineItemRequest, amount float64, address models.Address) (models.Order, error) {
	lineItems, err := s.buildLineItems(ctx, items)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.decrementAll(ctx, lineItems); err != nil {
		return models.Order{}, err
	}
	order := models.Order{
		UserID:        userID,
		Items:         lineItems,
		Amount:        amount,
		Address:       address,
		PaymentMethod: models.PaymentCOD,
		Payment:       false,
	}
	checkAmount(&order)
	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, err
	}
	if err := s.users.UpdateCart(ctx, userID, models.CartData{}); err != nil {
		logger.Error("cart clear failed after COD order", "user_id", userID, "error", err)
	}
	metrics.OrdersPlaced.WithLabelValues(models.PaymentCOD).Inc()
	event.FireAsync(EventOrderPlaced, order)
	return order, nil
}

// PlaceOrderStripe records an unpaid order and opens a hosted checkout
// session. Stock is not touched until settlement is verified. On a gateway
// failure the unpaid order record stays behind for the reconciler.
func (s *CheckoutService) PlaceOrderStripe(ctx context.Context, userID string, items []LineItemRequest, amount float64, address models.Address, origin string) (string, error) {
	lineItems, err := s.buildLineItems(ctx, items)
	if err != nil {
		return "", err
	}
	order := models.Order{
		UserID:        userID,
		Items:         lineItems,
		Amount:        amount,
		Address:       address,
		PaymentMethod: models.PaymentStripe,
		Payment:       false,
	}
	checkAmount(&order)
	if err := s.orders.Create(ctx, &order); err != nil {
		return "", err
	}
	sessionURL, err := s.gateway.CreateCheckoutSession(ctx, &order, origin)
	if err != nil {
		return "", err
	}
	metrics.OrdersPlaced.WithLabelValues(models.PaymentStripe).Inc()
	event.FireAsync(EventOrderPlaced, order)
	return sessionURL, nil
}

// VerifyStripe settles a hosted-checkout return.
//
// success=true: take stock for every line item (compensating on a mid-list
// shortage), flag the order paid, clear the user's cart, and queue the
// confirmation email. A second call on an already-paid order is a no-op
// success. success=false: the order record is deleted outright.
func (s *CheckoutService) VerifyStripe(ctx context.Context, orderID string, success bool, userID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !success {
		if err := s.orders.Delete(ctx, orderID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		metrics.SettlementsVerified.WithLabelValues("cancelled").Inc()
		return nil
	}

	if order.Payment {
		metrics.SettlementsVerified.WithLabelValues("already_paid").Inc()
		return nil
	}

	if err := s.decrementAll(ctx, order.Items); err != nil {
		if errors.Is(err, ErrOutOfStock) {
			metrics.SettlementsVerified.WithLabelValues("stock_conflict").Inc()
		}
		return err
	}

	// The conditional flip is the idempotency key: when two settlements of
	// the same order race past the read above, only one lands it, and the
	// loser hands its decrements back.
	settled, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		s.restock(ctx, order.Items)
		return err
	}
	if !settled {
		s.restock(ctx, order.Items)
		metrics.SettlementsVerified.WithLabelValues("already_paid").Inc()
		return nil
	}
	order.Payment = true

	if err := s.users.UpdateCart(ctx, userID, models.CartData{}); err != nil {
		logger.Error("cart clear failed after settlement", "user_id", userID, "error", err)
	}

	s.sendPurchaseEmail(order)
	metrics.SettlementsVerified.WithLabelValues("paid").Inc()
	event.FireAsync(EventOrderPaid, order)
	return nil
}

// sendPurchaseEmail queues the confirmation. Email trouble is logged, never
// propagated: the payment has already settled.
func (s *CheckoutService) sendPurchaseEmail(order models.Order) {
	if order.Address.Email == "" {
		return
	}
	names := collection.Pluck(order.Items, func(i models.OrderItem) string { return i.Name })
	images := collection.Map(order.Items, func(i models.OrderItem) string {
		return models.ImageForVariant(i.Image, i.Rarity)
	})
	job := &jobs.PurchaseEmailJob{To: order.Address.Email, Names: names, Images: images}
	if err := s.enqueue(job); err != nil {
		logger.Error("purchase email enqueue failed", "order_id", order.ID.Hex(), "error", err)
	}
}

// UserOrders returns the user's order history, newest first.
func (s *CheckoutService) UserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

// AllOrders returns every order for the admin panel.
func (s *CheckoutService) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// UpdateStatus moves an order to any of the admin statuses.
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("services: invalid status %q", status)
	}
	err := s.orders.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}
