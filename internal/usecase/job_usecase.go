package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/logger"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/security"
	"trujobs-api/pkg/validation"
)

type jobUsecase struct {
	jobRepo  domain.JobRepository
	hrRepo   domain.HRRepository
	matching domain.MatchingService
	validate *validator.Validate
	audit    *security.AuditLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewJobUsecase(
	jobRepo domain.JobRepository,
	hrRepo domain.HRRepository,
	matching domain.MatchingService,
	validate *validator.Validate,
	audit *security.AuditLogger,
	m *metrics.Metrics,
) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		hrRepo:   hrRepo,
		matching: matching,
		validate: validate,
		audit:    audit,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, input domain.CreateJobInput) (*domain.Job, error) {
	caller, ok := domain.CallerFrom(ctx)
	if !ok || caller.HR == nil {
		return nil, apperror.Forbidden("HR account required")
	}
	if !caller.HR.IsApproved() {
		return nil, apperror.Forbidden("HR account not approved")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Company = strings.TrimSpace(input.Company)
	input.Description = strings.TrimSpace(input.Description)
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	now := u.now()
	job := &domain.Job{
		Title:            input.Title,
		Company:          input.Company,
		JobDescriptionID: input.JobDescriptionID,
		Location:         input.Location,
		Role:             input.Role,
		EmploymentType:   input.EmploymentType,
		IsRemote:         input.IsRemote,
		Salary:           input.Salary,
		Description:      input.Description,
		PostedAt:         now,
		ApplyURL:         nonNil(input.ApplyURL),
		Status:           input.Status,
		Tags:             nonNil(input.Tags),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if job.EmploymentType == "" {
		job.EmploymentType = domain.EmploymentFullTime
	}
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}

	if err := u.jobRepo.CreateForOwner(ctx, job, caller.HR.ID); err != nil {
		return nil, apperror.Internal(err)
	}

	u.metrics.JobCreated()
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, filter domain.JobFilter) (*domain.JobListResult, error) {
	filter.Normalize()

	jobs, total, err := u.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.JobListResult{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
		Pages: domain.PageCount(total, filter.Limit),
		Jobs:  u.withOwners(ctx, jobs),
	}, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.JobView, error) {
	jobID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.BadRequest("Invalid job id")
	}

	job, err := u.jobRepo.IncrementViews(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}

	u.metrics.JobViewed()
	views := u.withOwners(ctx, []domain.Job{*job})
	return &views[0], nil
}

func (u *jobUsecase) ListByOwner(ctx context.Context, hrID string) ([]domain.Job, error) {
	owner, err := bson.ObjectIDFromHex(hrID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid HR id")
	}

	jobs, err := u.jobRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

// DeleteJob hard-deletes any job for any authenticated caller; ownership is not checked.
func (u *jobUsecase) DeleteJob(ctx context.Context, id string) (*domain.Job, error) {
	jobID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.BadRequest("Invalid job id")
	}

	job, err := u.jobRepo.Delete(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}

	if job.PostedBy != nil {
		if err := u.hrRepo.PullJob(ctx, *job.PostedBy, job.ID); err != nil {
			logger.Log.Warn("failed to remove job from owner", "job_id", job.ID.Hex(), "hr_id", job.PostedBy.Hex(), "error", err)
		}
	}

	u.metrics.JobDeleted()
	u.audit.Record(ctx, security.AuditEvent{
		Event:   security.EventJobDeleted,
		Subject: security.MaskEmail(callerEmail(ctx)),
		Details: map[string]string{"job_id": job.ID.Hex()},
	})
	return job, nil
}

func (u *jobUsecase) Apply(ctx context.Context, resume json.RawMessage, jobDescriptionID string) (*domain.MatchRelay, error) {
	jobDescriptionID = strings.TrimSpace(jobDescriptionID)
	if isEmptyJSON(resume) || jobDescriptionID == "" {
		return nil, apperror.BadRequest("resume_json and job_description_id are required")
	}

	start := time.Now()
	relay, err := u.matching.ApplyResume(ctx, resume, jobDescriptionID)
	u.metrics.ObserveMatching("apply", relayStatus(relay), time.Since(start))
	if err != nil {
		logger.Log.Error("matching apply failed", "job_description_id", jobDescriptionID, "error", err)
		return nil, apperror.Internal(err)
	}
	return relay, nil
}

func (u *jobUsecase) SimilarityScore(ctx context.Context, jobDescriptionID string) (*domain.MatchRelay, error) {
	jobDescriptionID = strings.TrimSpace(jobDescriptionID)
	if jobDescriptionID == "" {
		return nil, apperror.BadRequest("job_description_id is required")
	}

	start := time.Now()
	relay, err := u.matching.Similarity(ctx, jobDescriptionID)
	u.metrics.ObserveMatching("similarity", relayStatus(relay), time.Since(start))
	if err != nil {
		logger.Log.Error("matching similarity failed", "job_description_id", jobDescriptionID, "error", err)
		return nil, apperror.Internal(err)
	}
	return relay, nil
}

// withOwners attaches owner summaries. A lookup failure degrades to id-only owners.
func (u *jobUsecase) withOwners(ctx context.Context, jobs []domain.Job) []domain.JobView {
	ids := make([]bson.ObjectID, 0, len(jobs))
	seen := make(map[bson.ObjectID]bool, len(jobs))
	for _, j := range jobs {
		if j.PostedBy != nil && !seen[*j.PostedBy] {
			seen[*j.PostedBy] = true
			ids = append(ids, *j.PostedBy)
		}
	}

	owners := map[bson.ObjectID]domain.HRSummary{}
	if len(ids) > 0 {
		found, err := u.hrRepo.Summaries(ctx, ids)
		if err != nil {
			logger.Log.Warn("failed to resolve job owners", "error", err)
		} else {
			owners = found
		}
	}

	views := make([]domain.JobView, len(jobs))
	for i, j := range jobs {
		views[i] = domain.JobView{Job: j}
		if j.ApplyURL == nil {
			views[i].ApplyURL = []string{}
		}
		if j.Tags == nil {
			views[i].Tags = []string{}
		}
		if j.PostedBy == nil {
			continue
		}
		if s, ok := owners[*j.PostedBy]; ok {
			views[i].Owner = &s
		} else {
			views[i].Owner = &domain.HRSummary{ID: *j.PostedBy}
		}
	}
	return views
}

func relayStatus(r *domain.MatchRelay) int {
	if r == nil {
		return 0
	}
	return r.StatusCode
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
