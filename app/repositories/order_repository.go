package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/pkg/database"
)

// mongoOrderRepository is the Mongo-backed OrderRepository.
type mongoOrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository returns an OrderRepository over the orders collection.
func NewOrderRepository() OrderRepository {
	return &mongoOrderRepository{col: database.Collection("orders")}
}

func (r *mongoOrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.Status == "" {
		o.Status = models.StatusOrderPlaced
	}
	if o.Date == 0 {
		o.Date = time.Now().UnixMilli()
	}
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return o, ErrNotFound
	}
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return o, ErrNotFound
	}
	return o, err
}

func (r *mongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoOrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid is a conditional update: the filter only matches while the
// order is still unpaid, so exactly one of any concurrent settlements
// observes true.
func (r *mongoOrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "payment": false},
		bson.M{"$set": bson.M{"payment": true}})
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	// No match: the order is either gone or already paid.
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
}

func (r *mongoOrderRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoOrderRepository) Delete(ctx context.Context, id string) error {
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

func (r *mongoOrderRepository) FindUnpaidBefore(ctx context.Context, method string, cutoff time.Time) ([]models.Order, error) {
	return r.find(ctx, bson.M{
		"payment":       false,
		"paymentMethod": method,
		"date":          bson.M{"$lt": cutoff.UnixMilli()},
	})
}
