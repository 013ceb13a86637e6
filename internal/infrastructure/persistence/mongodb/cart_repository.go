package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
)

// CartRepository stores cart aggregates as whole documents. Writes replace
// the full document, so totals are always exactly what the aggregate
// computed from its line collection.
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(conn *Connection) *CartRepository {
	return &CartRepository{collection: conn.Collection()}
}

func (r *CartRepository) FindByID(ctx context.Context, id string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &c, nil
}

func (r *CartRepository) FindActiveByUserID(ctx context.Context, userID int64) (*cart.Cart, error) {
	filter := bson.M{"user_id": userID, "purchased": false}

	var c cart.Cart
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	return &c, nil
}

func (r *CartRepository) FindAll(ctx context.Context, filter ports.CartFilter, limit, offset int) ([]*cart.Cart, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Purchased != nil {
		query["purchased"] = *filter.Purchased
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count carts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list carts: %w", err)
	}
	defer cursor.Close(ctx)

	carts, err := decodeCarts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return carts, total, nil
}

func (r *CartRepository) FindPurchased(ctx context.Context) ([]*cart.Cart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"purchased": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased carts: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeCarts(ctx, cursor)
}

func (r *CartRepository) FindExpiredCheckouts(ctx context.Context, cutoff time.Time) ([]*cart.Cart, error) {
	filter := bson.M{
		"checkout_in_progress": true,
		"purchased":            false,
		"checkout_started_at":  bson.M{"$lt": cutoff},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired checkouts: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeCarts(ctx, cursor)
}

func (r *CartRepository) Insert(ctx context.Context, c *cart.Cart) error {
	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func decodeCarts(ctx context.Context, cursor *mongo.Cursor) ([]*cart.Cart, error) {
	carts := make([]*cart.Cart, 0)
	for cursor.Next(ctx) {
		var c cart.Cart
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
		carts = append(carts, &c)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return carts, nil
}
