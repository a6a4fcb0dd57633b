package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps the mongo connection and exposes the two collections the
// service uses. One Client is created at process start and shared.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, dbName string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &Client{client: client, db: client.Database(dbName)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Users() *Users {
	return &Users{col: c.db.Collection("users")}
}

func (c *Client) Files() *Files {
	return &Files{col: c.db.Collection("files")}
}

func (c *Client) CountUsers(ctx context.Context) (int64, error) {
	return c.Users().Count(ctx)
}

func (c *Client) CountFiles(ctx context.Context) (int64, error) {
	return c.Files().Count(ctx)
}
