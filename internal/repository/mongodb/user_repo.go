package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"trujobs-api/internal/domain"
)

type userRepo struct {
	store *Store
}

func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepo{store: store}
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[domain.User](ctx, r.store.col(ColUsers), bson.D{}, opts)
}

func (r *userRepo) UpdateSubscriptionPlan(ctx context.Context, email, plan string) (*domain.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "subscription_plan", Value: plan},
		{Key: "coupon_code", Value: ""},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	return findOneAndUpdate[domain.User](ctx, r.store.col(ColUsers), bson.D{{Key: "email", Value: email}}, update)
}
