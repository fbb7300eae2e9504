package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/orders-api/internal/core/domain"
)

const collectionOrderEvents = "order_events"

// OrderEventRepository implements ports.OrderEventRepository using MongoDB.
type OrderEventRepository struct {
	col *mongo.Collection
}

// NewOrderEventRepository creates a new OrderEventRepository.
func NewOrderEventRepository(db *mongo.Database) *OrderEventRepository {
	return &OrderEventRepository{col: db.Collection(collectionOrderEvents)}
}

type mongoOrderEvent struct {
	OrderID    string    `bson:"order_id"`
	Action     string    `bson:"action"`
	ActorID    string    `bson:"actor_id"`
	Decision   string    `bson:"decision"`
	Timestamp  time.Time `bson:"timestamp"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// Insert persists an audit event.
func (r *OrderEventRepository) Insert(ctx context.Context, event *domain.OrderEvent) error {
	doc := mongoOrderEvent{
		OrderID:    event.OrderID,
		Action:     string(event.Action),
		ActorID:    event.ActorID,
		Decision:   event.Decision,
		Timestamp:  event.Timestamp.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// ListByOrder returns the audit trail of one order, oldest first.
func (r *OrderEventRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoOrderEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode order events: %w", err)
	}

	events := make([]domain.OrderEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, domain.OrderEvent{
			OrderID:   d.OrderID,
			Action:    domain.OrderAction(d.Action),
			ActorID:   d.ActorID,
			Decision:  d.Decision,
			Timestamp: d.Timestamp,
		})
	}
	return events, nil
}

// EnsureIndexes creates the lookup index on the audit collection.
func (r *OrderEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
