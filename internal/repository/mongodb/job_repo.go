package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"trujobs-api/internal/domain"
)

type jobRepo struct {
	store *Store
}

func NewJobRepository(store *Store) domain.JobRepository {
	return &jobRepo{store: store}
}

// CreateForOwner inserts the job and adds its id to the owner's job list. With
// transactions enabled both writes commit together; otherwise the second write
// is an idempotent $addToSet that can be replayed.
func (r *jobRepo) CreateForOwner(ctx context.Context, job *domain.Job, owner bson.ObjectID) error {
	if job.ID.IsZero() {
		job.ID = bson.NewObjectID()
	}
	job.PostedBy = &owner

	write := func(ctx context.Context) error {
		if _, err := r.store.col(ColJobs).InsertOne(ctx, job); err != nil {
			return wrapError(err)
		}
		update := bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "jobs", Value: job.ID}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
		}
		res, err := r.store.col(ColHRs).UpdateOne(ctx, byID(owner), update)
		if err != nil {
			return fmt.Errorf("append job to owner: %w", wrapError(err))
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("append job to owner: %w", domain.ErrNotFound)
		}
		return nil
	}

	if !r.store.transactions {
		return write(ctx)
	}

	session, err := r.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, write(ctx)
	})
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	return findOne[domain.Job](ctx, r.store.col(ColJobs), byID(id))
}

func (r *jobRepo) IncrementViews(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}}
	return findOneAndUpdate[domain.Job](ctx, r.store.col(ColJobs), byID(id), update)
}

func (r *jobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	filter := listFilter(f)
	col := r.store.col(ColJobs)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	dir := 1
	if f.Sort.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: f.Sort.Field, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(f.Skip()).
		SetLimit(int64(f.Limit))

	jobs, err := findMany[domain.Job](ctx, col, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// listFilter expects a normalized filter.
func listFilter(f domain.JobFilter) bson.D {
	filter := bson.D{{Key: "status", Value: f.Status}}
	if f.Query != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: f.Query}}})
	}
	if f.Location != "" {
		filter = append(filter, bson.E{Key: "location", Value: bson.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}})
	}
	if f.IsRemote != nil {
		filter = append(filter, bson.E{Key: "is_remote", Value: *f.IsRemote})
	}
	if f.EmploymentType != "" {
		filter = append(filter, bson.E{Key: "employment_type", Value: f.EmploymentType})
	}
	return filter
}

func (r *jobRepo) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}, {Key: "_id", Value: 1}})
	return findMany[domain.Job](ctx, r.store.col(ColJobs), bson.D{{Key: "posted_by", Value: owner}}, opts)
}

func (r *jobRepo) Delete(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	var job domain.Job
	if err := r.store.col(ColJobs).FindOneAndDelete(ctx, byID(id)).Decode(&job); err != nil {
		return nil, wrapError(err)
	}
	return &job, nil
}
