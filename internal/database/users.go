package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Users wraps the users collection. Lookups return (nil, nil) when no
// document matches; callers decide what absence means.
type Users struct {
	col *mongo.Collection
}

func (u *Users) Insert(ctx context.Context, user *User) (primitive.ObjectID, error) {
	res, err := u.col.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := res.InsertedID.(primitive.ObjectID)
	user.ID = id
	return id, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := u.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) Count(ctx context.Context) (int64, error) {
	return u.col.CountDocuments(ctx, bson.M{})
}
