package services

import (
	"context"
	"errors"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
)

// ErrUnknownVariant rejects cart writes for a variant outside the fixed four.
var ErrUnknownVariant = errors.New("services: unknown variant")

// CartService maintains each user's product → variant → quantity map.
type CartService struct {
	users repositories.UserRepository
}

func NewCartService(users repositories.UserRepository) *CartService {
	return &CartService{users: users}
}

// Get returns the user's cart. A user without one gets an empty map.
func (s *CartService) Get(ctx context.Context, userID string) (models.CartData, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CartData == nil {
		return models.CartData{}, nil
	}
	return user.CartData, nil
}

// Add increments the quantity for (itemID, variant) by one, creating the
// entries as needed.
func (s *CartService) Add(ctx context.Context, userID, itemID, variant string) (models.CartData, error) {
	if !models.IsValidVariant(variant) {
		return nil, ErrUnknownVariant
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart[itemID] == nil {
		cart[itemID] = map[string]int{}
	}
	cart[itemID][variant]++
	if err := s.users.UpdateCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Update sets the quantity for (itemID, variant). Quantity zero removes the
// variant entry, and the product entry when no variants remain. An empty
// itemID and variant clears the whole cart.
func (s *CartService) Update(ctx context.Context, userID, itemID, variant string, qty int) (models.CartData, error) {
	if itemID == "" && variant == "" {
		empty := models.CartData{}
		if err := s.users.UpdateCart(ctx, userID, empty); err != nil {
			return nil, err
		}
		return empty, nil
	}
	if !models.IsValidVariant(variant) {
		return nil, ErrUnknownVariant
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		if variants, ok := cart[itemID]; ok {
			delete(variants, variant)
			if len(variants) == 0 {
				delete(cart, itemID)
			}
		}
	} else {
		if cart[itemID] == nil {
			cart[itemID] = map[string]int{}
		}
		cart[itemID][variant] = qty
	}
	if err := s.users.UpdateCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear drops every entry from the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.users.UpdateCart(ctx, userID, models.CartData{})
}
