package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// The four fixed stock-keeping variants of every card.
const (
	VariantStandard = "Standard"
	VariantRuned    = "Runed"
	VariantSacred   = "Sacred"
	VariantCursed   = "Cursed"
)

// Variants lists the variant names in canonical order.
var Variants = []string{VariantStandard, VariantRuned, VariantSacred, VariantCursed}

// variantImageIndex maps a variant to its slot in the product image array.
// An explicit table rather than positional convention: a short image array
// yields "" instead of a silent wrong picture.
var variantImageIndex = map[string]int{
	VariantStandard: 0,
	VariantRuned:    1,
	VariantSacred:   2,
	VariantCursed:   3,
}

// IsValidVariant reports whether name is one of the four fixed variants.
func IsValidVariant(name string) bool {
	_, ok := variantImageIndex[name]
	return ok
}

// ImageForVariant returns the image URL for the given variant, or "" when the
// variant is unknown or the image array is too short.
func ImageForVariant(images []string, variant string) string {
	idx, ok := variantImageIndex[variant]
	if !ok || idx >= len(images) {
		return ""
	}
	return images[idx]
}

// Rarities holds the per-variant stock counts. All four keys are always
// present; creation defaults missing counts to zero.
type Rarities struct {
	Standard int `bson:"Standard" json:"Standard"`
	Runed    int `bson:"Runed" json:"Runed"`
	Sacred   int `bson:"Sacred" json:"Sacred"`
	Cursed   int `bson:"Cursed" json:"Cursed"`
}

// Of returns the stock count for the named variant.
func (r Rarities) Of(variant string) int {
	switch variant {
	case VariantStandard:
		return r.Standard
	case VariantRuned:
		return r.Runed
	case VariantSacred:
		return r.Sacred
	case VariantCursed:
		return r.Cursed
	}
	return 0
}

// Add adjusts the stock count for the named variant by delta.
func (r *Rarities) Add(variant string, delta int) {
	switch variant {
	case VariantStandard:
		r.Standard += delta
	case VariantRuned:
		r.Runed += delta
	case VariantSacred:
		r.Sacred += delta
	case VariantCursed:
		r.Cursed += delta
	}
}

// Product categories (tiers) and sub-categories (card types) as the admin
// panel offers them.
var (
	Categories    = []string{"Bronze", "Silver", "Gold"}
	SubCategories = []string{"Dragon", "Human", "Monster", "Item", "Spirit"}
)

// Product is a card in the catalog. Up to four hosted images; image slots
// line up with variants via variantImageIndex.
type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	Price            float64            `bson:"price" json:"price"`
	Image            []string           `bson:"image" json:"image"`
	Category         string             `bson:"category" json:"category"`
	SubCategory      string             `bson:"subCategory" json:"subCategory"`
	Rarities         Rarities           `bson:"rarities" json:"rarities"`
	Bestseller       bool               `bson:"bestseller" json:"bestseller"`
	LatestCollection bool               `bson:"latestCollection" json:"latestCollection"`
	Date             int64              `bson:"date" json:"date"` // unix millis
}
