package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradezone/marketplace/internal/config"
)

type Connection struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewConnection(ctx context.Context, cfg config.MongoConfig) (*Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	conn := &Connection{
		client:     client,
		collection: collection,
	}
	if err := conn.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return conn, nil
}

func (c *Connection) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "purchased", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "checkout_in_progress", Value: 1}, {Key: "checkout_started_at", Value: 1}},
		},
	}

	_, err := c.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

func (c *Connection) Collection() *mongo.Collection {
	return c.collection
}

func (c *Connection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
