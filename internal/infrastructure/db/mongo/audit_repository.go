package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

const collectionClientEvents = "client_events"

// auditDocument is the stored shape of a domain.AuditEvent.
type auditDocument struct {
	ClientID   string            `bson:"client_id"`
	EntityID   string            `bson:"entity_id"`
	Action     string            `bson:"action"`
	Actor      string            `bson:"actor"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Details    map[string]string `bson:"details,omitempty"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// AuditRepository implements ports.AuditLog on the client_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionClientEvents)}
}

var _ ports.AuditLog = (*AuditRepository)(nil)

// EnsureIndexes creates the index backing the per-client history query.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create client_events index: %w", err)
	}
	return nil
}

// Record appends an event to the audit trail.
func (r *AuditRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDocument{
		ClientID:   event.ClientID,
		EntityID:   event.EntityID,
		Action:     string(event.Action),
		Actor:      event.Actor,
		OccurredAt: event.OccurredAt.UTC(),
		Details:    event.Details,
		RecordedAt: time.Now().UTC(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// ListByClient returns the newest events of a client first.
func (r *AuditRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []auditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.AuditEvent{
			ClientID:   d.ClientID,
			EntityID:   d.EntityID,
			Action:     domain.AuditAction(d.Action),
			Actor:      d.Actor,
			OccurredAt: d.OccurredAt,
			Details:    d.Details,
		})
	}
	return out, nil
}
