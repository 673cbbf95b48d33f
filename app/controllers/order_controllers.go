package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/auth"
	"github.com/lumenera/backend/pkg/bind"
	"github.com/lumenera/backend/pkg/payment"
	"github.com/lumenera/backend/pkg/response"
	"github.com/lumenera/backend/pkg/validate"
)

// OrderController serves order placement, settlement verification and the
// admin order surface.
type OrderController struct {
	checkout *services.CheckoutService
}

func NewOrderController(checkout *services.CheckoutService) *OrderController {
	return &OrderController{checkout: checkout}
}

// placeOrderBody is shared by the COD and Stripe placement endpoints.
type placeOrderBody struct {
	Items   []services.LineItemRequest `json:"items"`
	Amount  float64                    `json:"amount"`
	Address models.Address             `json:"address"`
}

// decodePlaceOrder binds the body and validates the shipping address.
// Struct validation is shallow, so the nested address is checked explicitly.
func decodePlaceOrder(w http.ResponseWriter, r *http.Request) (placeOrderBody, bool) {
	var body placeOrderBody
	if _, err := bind.JSON(r, &body); err != nil {
		response.Fail(w, "Invalid request body")
		return body, false
	}
	if errs := validate.Struct(body.Address); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return body, false
	}
	return body, true
}

func failOrder(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyOrder):
		response.Fail(w, "Order has no items")
	case errors.Is(err, services.ErrProductNotFound):
		response.Fail(w, "Product not found")
	case errors.Is(err, services.ErrUnknownVariant):
		response.Fail(w, "Unknown rarity")
	case errors.Is(err, services.ErrOutOfStock):
		response.Fail(w, "Out of stock")
	case errors.Is(err, services.ErrOrderNotFound):
		response.Fail(w, "Order not found")
	case errors.Is(err, payment.ErrGateway):
		response.Fail(w, "Payment gateway error")
	default:
		response.Fail(w, err.Error())
	}
}

// Place handles cash-on-delivery checkout.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	body, ok := decodePlaceOrder(w, r)
	if !ok {
		return
	}
	_, err := c.checkout.PlaceOrder(r.Context(), auth.UserID(r.Context()), body.Items, body.Amount, body.Address)
	if err != nil {
		failOrder(w, err)
		return
	}
	response.Message(w, "Order Placed")
}

// PlaceStripe opens a hosted checkout session and returns its URL.
func (c *OrderController) PlaceStripe(w http.ResponseWriter, r *http.Request) {
	body, ok := decodePlaceOrder(w, r)
	if !ok {
		return
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = config.FrontendURL()
	}
	sessionURL, err := c.checkout.PlaceOrderStripe(r.Context(), auth.UserID(r.Context()), body.Items, body.Amount, body.Address, origin)
	if err != nil {
		failOrder(w, err)
		return
	}
	response.OK(w, response.M{"session_url": sessionURL})
}

// flexBool accepts JSON true/false and the strings "true"/"false": the
// storefront forwards the success flag straight from the query string.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	*b = flexBool(string(data) == "true")
	return nil
}

// VerifyStripe settles a hosted-checkout return.
func (c *OrderController) VerifyStripe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID string   `json:"orderId"`
		Success flexBool `json:"success"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	err := c.checkout.VerifyStripe(r.Context(), body.OrderID, bool(body.Success), auth.UserID(r.Context()))
	if err != nil {
		failOrder(w, err)
		return
	}
	if body.Success {
		response.Message(w, "Payment Successful")
		return
	}
	response.Message(w, "Payment Cancelled")
}

// UserOrders lists the calling user's orders.
func (c *OrderController) UserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.checkout.UserOrders(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"orders": orders})
}

// List returns every order. Admin only.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	orders, err := c.checkout.AllOrders(r.Context())
	if err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"orders": orders})
}

// UpdateStatus moves an order between the admin statuses.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	if err := c.checkout.UpdateStatus(r.Context(), body.OrderID, body.Status); err != nil {
		failOrder(w, err)
		return
	}
	response.Message(w, "Status Updated")
}
