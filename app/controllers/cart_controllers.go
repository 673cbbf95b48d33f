package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/auth"
	"github.com/lumenera/backend/pkg/response"
)

// CartController serves the per-user cart map.
type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := c.cart.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"cartData": cart})
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID  string `json:"itemId"`
		Variant string `json:"rarity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	cart, err := c.cart.Add(r.Context(), auth.UserID(r.Context()), body.ItemID, body.Variant)
	if err != nil {
		if errors.Is(err, services.ErrUnknownVariant) {
			response.Fail(w, "Unknown rarity")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"message": "Added To Cart", "cartData": cart})
}

func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID   string `json:"itemId"`
		Variant  string `json:"rarity"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	cart, err := c.cart.Update(r.Context(), auth.UserID(r.Context()), body.ItemID, body.Variant, body.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrUnknownVariant) {
			response.Fail(w, "Unknown rarity")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"message": "Cart Updated", "cartData": cart})
}
