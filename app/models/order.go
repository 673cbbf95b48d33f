package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Order lifecycle statuses the admin panel may set. Any status may follow
// any other; there is deliberately no transition graph.
const (
	StatusOrderPlaced = "Order Placed"
	StatusFinalizing  = "Finalizing"
	StatusDelivered   = "Delivered"
)

// Statuses lists the admin-settable order statuses.
var Statuses = []string{StatusOrderPlaced, StatusFinalizing, StatusDelivered}

// IsValidStatus reports whether s is one of the admin-settable statuses.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment methods.
const (
	PaymentCOD    = "COD"
	PaymentStripe = "Stripe"
)

// OrderItem is a frozen snapshot of one product+variant+quantity taken at
// checkout time. Product deletion never alters historical orders.
type OrderItem struct {
	ProductID string   `bson:"_id" json:"_id"`
	Name      string   `bson:"name" json:"name"`
	Price     float64  `bson:"price" json:"price"`
	Image     []string `bson:"image" json:"image"`
	Rarity    string   `bson:"rarity" json:"rarity"`
	Quantity  int      `bson:"quantity" json:"quantity"`
}

// Address is the structured delivery address collected at checkout.
type Address struct {
	FirstName  string `bson:"firstName" json:"firstName" validate:"required,max=100"`
	LastName   string `bson:"lastName" json:"lastName" validate:"required,max=100"`
	Email      string `bson:"email" json:"email" validate:"required,email"`
	Street     string `bson:"street" json:"street" validate:"required,max=200"`
	City       string `bson:"city" json:"city" validate:"required,max=100"`
	Province   string `bson:"province" json:"province" validate:"required,max=100"`
	Country    string `bson:"country" json:"country" validate:"required,max=100"`
	PostalCode string `bson:"postalCode" json:"postalCode" validate:"required,max=20"`
	Phone      string `bson:"phone" json:"phone" validate:"required,max=30"`
}

// Order is a placed order. Amount is set once at creation and not recomputed
// afterwards; see CheckoutService for the server-side mismatch warning.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        string             `bson:"userId" json:"userId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Amount        float64            `bson:"amount" json:"amount"`
	Address       Address            `bson:"address" json:"address"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	Payment       bool               `bson:"payment" json:"payment"`
	Date          int64              `bson:"date" json:"date"` // unix millis
}
