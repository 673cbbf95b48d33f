// Package payment wraps the Stripe hosted-checkout flow.
//
// A single Client is constructed at boot with the secret key and injected
// into the checkout service — no package-level gateway state:
//
//	broker := payment.New(config.StripeSecretKey())
//	url, err := broker.CreateCheckoutSession(ctx, order, origin)
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/lumenera/backend/app/models"
)

// Currency is the store's settlement currency, in whose minor unit (cents)
// all Stripe amounts are expressed.
const Currency = "cad"

// ServiceFeeRate is the fixed checkout surcharge applied on top of the order
// amount. It is not stored per product.
const ServiceFeeRate = 0.15

// ErrGateway wraps any failure talking to Stripe. The unpaid order record is
// left in place for the reconciler.
var ErrGateway = errors.New("payment: gateway error")

// Client creates hosted checkout sessions for orders.
type Client struct {
	sc *client.API
}

// New builds a payment client for the given secret key.
func New(secretKey string) *Client {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Client{sc: sc}
}

// UnitAmountCents converts a decimal price to the currency's minor unit,
// rounding half-up.
func UnitAmountCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ServiceFeeCents computes the 15% service fee on the order amount in cents,
// rounded half-up on the cent (23.4375 → 2344).
func ServiceFeeCents(amount float64) int64 {
	return int64(math.Round(amount * ServiceFeeRate * 100))
}

// SuccessURL and CancelURL carry the order id so the settlement verifier can
// recover context without server-side session state.
func SuccessURL(origin, orderID string) string {
	return fmt.Sprintf("%s/verify?success=true&orderId=%s", origin, orderID)
}

func CancelURL(origin, orderID string) string {
	return fmt.Sprintf("%s/verify?success=false&orderId=%s", origin, orderID)
}

// CreateCheckoutSession creates a Stripe checkout session for the order and
// returns the redirect URL. One synthetic line item carries the service fee.
func (c *Client) CreateCheckoutSession(ctx context.Context, order *models.Order, origin string) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(UnitAmountCents(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(Currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String("Service Fee"),
			},
			UnitAmount: stripe.Int64(ServiceFeeCents(order.Amount)),
		},
		Quantity: stripe.Int64(1),
	})

	orderID := order.ID.Hex()
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(SuccessURL(origin, orderID)),
		CancelURL:          stripe.String(CancelURL(origin, orderID)),
	}

	session, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return session.URL, nil
}
