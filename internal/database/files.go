package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Files struct {
	col *mongo.Collection
}

func (f *Files) Insert(ctx context.Context, file *File) (primitive.ObjectID, error) {
	res, err := f.col.InsertOne(ctx, file)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := res.InsertedID.(primitive.ObjectID)
	file.ID = id
	return id, nil
}

// GetByID looks a record up regardless of owner. Used when validating parent
// references.
func (f *Files) GetByID(ctx context.Context, id primitive.ObjectID) (*File, error) {
	var file File
	err := f.col.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// GetForUser scopes the lookup to an owner so absence and foreign ownership
// are indistinguishable.
func (f *Files) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*File, error) {
	var file File
	err := f.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListForUser pages through an owner's records under one parent, in natural
// insertion order.
func (f *Files) ListForUser(ctx context.Context, userID primitive.ObjectID, parent ParentRef, skip, limit int64) ([]File, error) {
	filter := bson.M{"userId": userID, "parentId": parent}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.M{"_id": 1})

	cur, err := f.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	files := []File{}
	if err := cur.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (f *Files) Count(ctx context.Context) (int64, error) {
	return f.col.CountDocuments(ctx, bson.M{})
}
