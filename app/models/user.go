package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartData maps product id → variant name → quantity. A variant entry with
// quantity zero must be removed, never stored; the cart service enforces it.
type CartData map[string]map[string]int

// Clone returns a deep copy so callers can mutate without aliasing the
// stored cart.
func (c CartData) Clone() CartData {
	out := make(CartData, len(c))
	for id, variants := range c {
		m := make(map[string]int, len(variants))
		for v, q := range variants {
			m[v] = q
		}
		out[id] = m
	}
	return out
}

// User is a shopper account. Password is a bcrypt hash and never serialised.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	CartData         CartData           `bson:"cartData" json:"cartData"`
	ResetToken       string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiry time.Time          `bson:"resetTokenExpiry,omitempty" json:"-"`
}
