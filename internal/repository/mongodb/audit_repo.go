package mongodb

import (
	"context"

	"trujobs-api/pkg/security"
)

// AuditRepository persists security events for later review.
type AuditRepository struct {
	store *Store
}

func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event security.AuditEvent) error {
	_, err := r.store.col(ColSecurityEvents).InsertOne(ctx, event)
	return wrapError(err)
}
