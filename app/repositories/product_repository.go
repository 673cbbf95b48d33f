package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/pkg/database"
)

// mongoProductRepository is the Mongo-backed ProductRepository.
type mongoProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository returns a ProductRepository over the products
// collection. Call after database.Connect.
func NewProductRepository() ProductRepository {
	return &mongoProductRepository{col: database.Collection("products")}
}

func (r *mongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Date == 0 {
		p.Date = time.Now().UnixMilli()
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return p, ErrNotFound
	}
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return p, ErrNotFound
	}
	return p, err
}

func (r *mongoProductRepository) All(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) CheckStock(ctx context.Context, id, variant string, qty int) (bool, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Rarities.Of(variant) >= qty, nil
}

// DecrementStock is a single conditional update: the filter requires the
// variant count to still cover qty, so concurrent settlements can never race
// the count below zero.
func (r *mongoProductRepository) DecrementStock(ctx context.Context, id, variant string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	field := "rarities." + variant
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, field: bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{field: -qty}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing product from a short count.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *mongoProductRepository) IncrementStock(ctx context.Context, id, variant string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"rarities." + variant: qty}},
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
