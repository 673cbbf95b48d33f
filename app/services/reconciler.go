package services

import (
	"context"
	"time"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/pkg/logger"
)

// abandonedAfter is how long an unpaid gateway order may linger before the
// sweeper removes it. Stock was never taken for these, so deletion is safe.
const abandonedAfter = 24 * time.Hour

// Reconciler cleans up Stripe orders whose shopper never came back from the
// hosted checkout page. Scheduled hourly by the server.
type Reconciler struct {
	orders repositories.OrderRepository
	maxAge time.Duration
}

func NewReconciler(orders repositories.OrderRepository) *Reconciler {
	return &Reconciler{orders: orders, maxAge: abandonedAfter}
}

// Sweep deletes unpaid Stripe orders older than the cutoff and returns how
// many were removed.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.maxAge)
	orders, err := r.orders.FindUnpaidBefore(ctx, models.PaymentStripe, cutoff)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, order := range orders {
		if err := r.orders.Delete(ctx, order.ID.Hex()); err != nil {
			logger.Error("abandoned order delete failed", "order_id", order.ID.Hex(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("abandoned orders swept", "count", removed)
	}
	return removed, nil
}
