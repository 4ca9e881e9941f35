package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"
)

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
	JobStatusPaused JobStatus = "paused"
)

// Listing bounds.
const (
	DefaultJobPage  = 1
	DefaultJobLimit = 20
	MaxJobLimit     = 100
)

type Job struct {
	ID               bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string         `bson:"title" json:"title"`
	Company          string         `bson:"company" json:"company"`
	JobDescriptionID string         `bson:"job_description_id,omitempty" json:"job_description_id,omitempty"`
	Location         string         `bson:"location,omitempty" json:"location,omitempty"`
	Role             string         `bson:"role,omitempty" json:"role,omitempty"`
	EmploymentType   EmploymentType `bson:"employment_type" json:"employmentType"`
	IsRemote         bool           `bson:"is_remote" json:"isRemote"`
	Salary           string         `bson:"salary,omitempty" json:"salary,omitempty"`
	Description      string         `bson:"description" json:"description"`
	PostedAt         time.Time      `bson:"posted_at" json:"postedAt"`
	ApplyURL         []string       `bson:"apply_url" json:"applyUrl"`
	PostedBy         *bson.ObjectID `bson:"posted_by,omitempty" json:"postedBy,omitempty"`
	Status           JobStatus      `bson:"status" json:"status"`
	Tags             []string       `bson:"tags" json:"tags"`
	Views            int64          `bson:"views" json:"views"`
	ApplicantsCount  int64          `bson:"applicants_count" json:"applicantsCount"`
	CreatedAt        time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updatedAt"`
}

// JobView is a job with its owner summary resolved.
type JobView struct {
	Job
	Owner *HRSummary `json:"postedBy,omitempty"`
}

type CreateJobInput struct {
	Title            string         `json:"title" validate:"required,max=200"`
	Company          string         `json:"company" validate:"required,max=200"`
	Description      string         `json:"description" validate:"required"`
	JobDescriptionID string         `json:"job_description_id"`
	Location         string         `json:"location"`
	Role             string         `json:"role"`
	EmploymentType   EmploymentType `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship temporary"`
	IsRemote         bool           `json:"isRemote"`
	Salary           string         `json:"salary"`
	ApplyURL         []string       `json:"applyUrl" validate:"omitempty,dive,required"`
	Tags             []string       `json:"tags"`
	Status           JobStatus      `json:"status" validate:"omitempty,oneof=draft open closed paused"`
}

// JobSort is a whitelisted sort key mapped onto its stored field name.
type JobSort struct {
	Field string
	Desc  bool
}

var jobSortFields = map[string]string{
	"postedAt":        "posted_at",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"title":           "title",
	"company":         "company",
	"views":           "views",
	"applicantsCount": "applicants_count",
}

var DefaultJobSort = JobSort{Field: "posted_at", Desc: true}

// ParseJobSort parses "field:dir". An empty value yields the default (postedAt desc).
func ParseJobSort(raw string) (JobSort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultJobSort, nil
	}
	name, dir, _ := strings.Cut(raw, ":")
	if name == "" {
		name = "postedAt"
	}
	field, ok := jobSortFields[name]
	if !ok {
		return JobSort{}, fmt.Errorf("unsupported sort field %q", name)
	}
	return JobSort{Field: field, Desc: !strings.EqualFold(dir, "asc")}, nil
}

type JobFilter struct {
	Page           int
	Limit          int
	Query          string
	Location       string
	IsRemote       *bool
	EmploymentType string
	Status         string
	Sort           JobSort
}

// Normalize clamps page to >= 1 and limit to [1, MaxJobLimit] and applies the status default.
func (f *JobFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.Limit > MaxJobLimit {
		f.Limit = MaxJobLimit
	}
	if f.Status == "" {
		f.Status = string(JobStatusOpen)
	}
	if f.Sort.Field == "" {
		f.Sort = DefaultJobSort
	}
	f.Query = strings.TrimSpace(f.Query)
}

// Skip saturates at math.MaxInt64; an out-of-range page reads as empty.
func (f JobFilter) Skip() int64 {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	pages, limit := int64(f.Page-1), int64(f.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

type JobListResult struct {
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int64     `json:"total"`
	Pages int       `json:"pages"`
	Jobs  []JobView `json:"jobs"`
}

// PageCount is ceil(total / limit).
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

type JobRepository interface {
	// CreateForOwner persists the job and records its id on the owner's job list.
	CreateForOwner(ctx context.Context, job *Job, owner bson.ObjectID) error
	GetByID(ctx context.Context, id bson.ObjectID) (*Job, error)
	// IncrementViews bumps the view counter and returns the updated job.
	IncrementViews(ctx context.Context, id bson.ObjectID) (*Job, error)
	List(ctx context.Context, filter JobFilter) ([]Job, int64, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]Job, error)
	// Delete removes the job and returns what was deleted.
	Delete(ctx context.Context, id bson.ObjectID) (*Job, error)
}

// MatchRelay is an external scoring-service response passed through untouched.
type MatchRelay struct {
	StatusCode int             `json:"-"`
	Body       json.RawMessage `json:"data"`
}

func (r *MatchRelay) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

type MatchingService interface {
	Similarity(ctx context.Context, jobDescriptionID string) (*MatchRelay, error)
	ApplyResume(ctx context.Context, resume json.RawMessage, jobDescriptionID string) (*MatchRelay, error)
	UploadJobDescription(ctx context.Context, jobDescription string) (*MatchRelay, error)
}

type JobUsecase interface {
	CreateJob(ctx context.Context, input CreateJobInput) (*Job, error)
	ListJobs(ctx context.Context, filter JobFilter) (*JobListResult, error)
	GetJob(ctx context.Context, id string) (*JobView, error)
	ListByOwner(ctx context.Context, hrID string) ([]Job, error)
	DeleteJob(ctx context.Context, id string) (*Job, error)
	Apply(ctx context.Context, resume json.RawMessage, jobDescriptionID string) (*MatchRelay, error)
	SimilarityScore(ctx context.Context, jobDescriptionID string) (*MatchRelay, error)
}
