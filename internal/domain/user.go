package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a platform (candidate) account, managed by admins only from this service.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string        `bson:"email" json:"email"`
	Name             string        `bson:"name,omitempty" json:"name,omitempty"`
	SubscriptionPlan string        `bson:"subscription_plan,omitempty" json:"subscriptionPlan,omitempty"`
	CouponCode       string        `bson:"coupon_code" json:"couponCode"`
	CreatedAt        time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updatedAt"`
}

type UpdateSubscriptionInput struct {
	Email            string `json:"email" validate:"required,email"`
	SubscriptionPlan string `json:"subscriptionPlan" validate:"required,max=100"`
}

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	// UpdateSubscriptionPlan sets the plan, clears the coupon code and returns the updated user.
	UpdateSubscriptionPlan(ctx context.Context, email, plan string) (*User, error)
}

type AdminUsecase interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateSubscriptionPlan(ctx context.Context, input UpdateSubscriptionInput) (*User, error)
}
