package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumenera/backend/app/models"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts inserts a small starter catalog. It is a no-op when the
// collection already holds documents, so reruns are safe.
func SeedProducts(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("products")
	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	catalog := []models.Product{
		{
			Name:        "Emberwing Drake",
			Description: "A young drake wreathed in cooling embers. Burns brighter when provoked.",
			Price:       24.99,
			Category:    "Bronze",
			SubCategory: "Dragon",
			Rarities:    models.Rarities{Standard: 40, Runed: 12, Sacred: 4, Cursed: 2},
			Bestseller:  true,
			Date:        now,
		},
		{
			Name:             "Warden of the Hollow Gate",
			Description:      "Keeps the gate. Nobody remembers which side it guards.",
			Price:            59.99,
			Category:         "Silver",
			SubCategory:      "Spirit",
			Rarities:         models.Rarities{Standard: 20, Runed: 8, Sacred: 3, Cursed: 1},
			LatestCollection: true,
			Date:             now,
		},
		{
			Name:        "Crown of the First Dawn",
			Description: "Worn once, at the first sunrise. Still warm.",
			Price:       149.99,
			Category:    "Gold",
			SubCategory: "Item",
			Rarities:    models.Rarities{Standard: 6, Runed: 3, Sacred: 1},
			Bestseller:  true,
			Date:        now,
		},
	}

	docs := make([]interface{}, len(catalog))
	for i := range catalog {
		docs[i] = catalog[i]
	}
	_, err = col.InsertMany(ctx, docs)
	return err
}
