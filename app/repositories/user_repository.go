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

// mongoUserRepository is the Mongo-backed UserRepository.
type mongoUserRepository struct {
	col *mongo.Collection
}

// NewUserRepository returns a UserRepository over the users collection.
func NewUserRepository() UserRepository {
	return &mongoUserRepository{col: database.Collection("users")}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CartData == nil {
		u.CartData = models.CartData{}
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return u, ErrNotFound
	}
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return u, ErrNotFound
	}
	return u, err
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return u, ErrNotFound
	}
	return u, err
}

func (r *mongoUserRepository) UpdateCart(ctx context.Context, id string, cart models.CartData) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"cartData": cart}})
}

func (r *mongoUserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"resetToken":       token,
		"resetTokenExpiry": expiry,
	}})
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{
		"resetToken":       token,
		"resetTokenExpiry": bson.M{"$gt": now},
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return u, ErrNotFound
	}
	return u, err
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password": hash},
		"$unset": bson.M{"resetToken": "", "resetTokenExpiry": ""},
	})
}

func (r *mongoUserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
