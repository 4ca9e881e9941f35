package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"trujobs-api/internal/domain"
)

type hrRepo struct {
	store *Store
}

func NewHRRepository(store *Store) domain.HRRepository {
	return &hrRepo{store: store}
}

func bindingMatch(provider, providerID string) bson.D {
	return bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "provider", Value: provider},
		{Key: "provider_id", Value: providerID},
	}}}
}

func (r *hrRepo) Create(ctx context.Context, hr *domain.HRAccount) error {
	if hr.ID.IsZero() {
		hr.ID = bson.NewObjectID()
	}
	if hr.Jobs == nil {
		hr.Jobs = []bson.ObjectID{}
	}
	if hr.Documents == nil {
		hr.Documents = []string{}
	}
	_, err := r.store.col(ColHRs).InsertOne(ctx, hr)
	return wrapError(err)
}

func (r *hrRepo) GetByID(ctx context.Context, id bson.ObjectID) (*domain.HRAccount, error) {
	return findOne[domain.HRAccount](ctx, r.store.col(ColHRs), byID(id))
}

func (r *hrRepo) GetByProvider(ctx context.Context, provider, providerID string) (*domain.HRAccount, error) {
	filter := bson.D{{Key: "oauth_providers", Value: bindingMatch(provider, providerID)}}
	return findOne[domain.HRAccount](ctx, r.store.col(ColHRs), filter)
}

// GetByEmail returns the oldest account carrying the email.
func (r *hrRepo) GetByEmail(ctx context.Context, email string) (*domain.HRAccount, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findOne[domain.HRAccount](ctx, r.store.col(ColHRs), bson.D{{Key: "email", Value: email}}, opts)
}

func (r *hrRepo) AddProvider(ctx context.Context, id bson.ObjectID, binding domain.OAuthProvider) (*domain.HRAccount, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "oauth_providers", Value: bson.D{{Key: "$not", Value: bindingMatch(binding.Provider, binding.ProviderID)}}},
	}
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "oauth_providers", Value: binding}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
	hr, err := findOneAndUpdate[domain.HRAccount](ctx, r.store.col(ColHRs), filter, update)
	if errors.Is(err, domain.ErrNotFound) {
		// either the binding is already there or the account is gone
		return r.GetByID(ctx, id)
	}
	return hr, err
}

func (r *hrRepo) ListByStatus(ctx context.Context, status domain.HRStatus) ([]domain.HRAccount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return findMany[domain.HRAccount](ctx, r.store.col(ColHRs), bson.D{{Key: "status", Value: status}}, opts)
}

func (r *hrRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, status domain.HRStatus) (*domain.HRAccount, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	return findOneAndUpdate[domain.HRAccount](ctx, r.store.col(ColHRs), byID(id), update)
}

func (r *hrRepo) TouchLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error {
	res, err := r.store.col(ColHRs).UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: bson.D{{Key: "last_login", Value: at}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *hrRepo) PullJob(ctx context.Context, id bson.ObjectID, jobID bson.ObjectID) error {
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "jobs", Value: jobID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
	_, err := r.store.col(ColHRs).UpdateOne(ctx, byID(id), update)
	return wrapError(err)
}

func (r *hrRepo) Summaries(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]domain.HRSummary, error) {
	out := make(map[bson.ObjectID]domain.HRSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	opts := options.Find().SetProjection(bson.D{
		{Key: "name", Value: 1},
		{Key: "company_name", Value: 1},
		{Key: "email", Value: 1},
	})
	summaries, err := findMany[domain.HRSummary](ctx, r.store.col(ColHRs), filter, opts)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}
