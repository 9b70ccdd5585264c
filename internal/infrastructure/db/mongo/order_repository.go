package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lunchorder/order-system/internal/core/domain"
)

const collectionOrders = "orders"

// OrderRepository is the authoritative record of accepted orders. The partial
// unique index on (username, order_date) admits one active order per day.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// FindActive returns the non-canceled order username placed on day.
func (r *OrderRepository) FindActive(ctx context.Context, username, day string) (*domain.Order, error) {
	var o domain.Order
	err := r.col.FindOne(ctx, activeFilter(username, day)).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) Cancel(ctx context.Context, username, day string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, activeFilter(username, day), bson.M{
		"$set": bson.M{"canceled": true, "canceled_at": at},
	})
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// EnsureIndexes creates the one-active-order-per-day constraint.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}, {Key: "order_date", Value: 1}},
			Options: options.Index().
				SetName("one_active_order_per_day").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"canceled": false}),
		},
		{Keys: bson.D{{Key: "order_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func activeFilter(username, day string) bson.M {
	return bson.M{"username": username, "order_date": day, "canceled": false}
}
