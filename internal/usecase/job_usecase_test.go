package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"trujobs-api/internal/domain"
	"trujobs-api/internal/usecase"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/validation"
)

func newJobUsecase(jobs domain.JobRepository, hrs domain.HRRepository, matching domain.MatchingService) domain.JobUsecase {
	return usecase.NewJobUsecase(jobs, hrs, matching, validation.New(), nil, nil)
}

var validJob = domain.CreateJobInput{Title: "Go Engineer", Company: "Acme", Description: "Build APIs"}

func TestCreateJob(t *testing.T) {
	t.Run("Should reject callers whose HR is not approved", func(t *testing.T) {
		for _, status := range []domain.HRStatus{domain.HRStatusPending, domain.HRStatusRejected} {
			jobs := new(MockJobRepo)
			hr := &domain.HRAccount{ID: bson.NewObjectID(), Status: status}

			_, err := newJobUsecase(jobs, nil, nil).CreateJob(callerCtx("hr@acme.io", hr), validJob)

			assert.Equal(t, http.StatusForbidden, apperror.StatusOf(err), string(status))
			jobs.AssertNotCalled(t, "CreateForOwner", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Should reject callers without an HR account", func(t *testing.T) {
		_, err := newJobUsecase(new(MockJobRepo), nil, nil).CreateJob(callerCtx("hr@acme.io", nil), validJob)
		assert.Equal(t, http.StatusForbidden, apperror.StatusOf(err))
	})

	t.Run("Should apply defaults and record the owner", func(t *testing.T) {
		hr := &domain.HRAccount{ID: bson.NewObjectID(), Status: domain.HRStatusApproved}
		jobs := new(MockJobRepo)
		jobs.On("CreateForOwner", mock.Anything, mock.AnythingOfType("*domain.Job"), hr.ID).Return(nil)

		job, err := newJobUsecase(jobs, nil, nil).CreateJob(callerCtx("hr@acme.io", hr), validJob)

		require.NoError(t, err)
		assert.Equal(t, domain.EmploymentFullTime, job.EmploymentType)
		assert.Equal(t, domain.JobStatusOpen, job.Status)
		assert.NotNil(t, job.Tags)
		assert.NotNil(t, job.ApplyURL)
		assert.False(t, job.PostedAt.IsZero())
		jobs.AssertExpectations(t)
	})

	t.Run("Should fail validation for missing fields", func(t *testing.T) {
		hr := &domain.HRAccount{ID: bson.NewObjectID(), Status: domain.HRStatusApproved}
		jobs := new(MockJobRepo)

		_, err := newJobUsecase(jobs, nil, nil).CreateJob(callerCtx("hr@acme.io", hr), domain.CreateJobInput{Title: "  ", Company: "Acme", Description: "x"})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		_, err = newJobUsecase(jobs, nil, nil).CreateJob(callerCtx("hr@acme.io", hr), domain.CreateJobInput{Title: "t", Company: "c", Description: "d", EmploymentType: "gig"})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		jobs.AssertNotCalled(t, "CreateForOwner", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListJobs(t *testing.T) {
	t.Run("Should clamp paging and default the status", func(t *testing.T) {
		jobs := new(MockJobRepo)
		jobs.On("List", mock.Anything, mock.MatchedBy(func(f domain.JobFilter) bool {
			return f.Page == 1 && f.Limit == domain.MaxJobLimit && f.Status == "open" && f.Sort == domain.DefaultJobSort
		})).Return([]domain.Job{}, int64(250), nil)

		res, err := newJobUsecase(jobs, new(MockHRRepo), nil).ListJobs(context.Background(), domain.JobFilter{Page: 0, Limit: 500})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 100, res.Limit)
		assert.Equal(t, int64(250), res.Total)
		assert.Equal(t, 3, res.Pages)
		assert.NotNil(t, res.Jobs)
		jobs.AssertExpectations(t)
	})

	t.Run("Should fall back to id-only owners when lookup fails", func(t *testing.T) {
		owner := bson.NewObjectID()
		jobs := new(MockJobRepo)
		hrs := new(MockHRRepo)
		jobs.On("List", mock.Anything, mock.Anything).Return([]domain.Job{{ID: bson.NewObjectID(), PostedBy: &owner}}, int64(1), nil)
		hrs.On("Summaries", mock.Anything, []bson.ObjectID{owner}).Return(nil, errors.New("timeout"))

		res, err := newJobUsecase(jobs, hrs, nil).ListJobs(context.Background(), domain.JobFilter{})

		require.NoError(t, err)
		require.Len(t, res.Jobs, 1)
		require.NotNil(t, res.Jobs[0].Owner)
		assert.Equal(t, owner, res.Jobs[0].Owner.ID)
		assert.Empty(t, res.Jobs[0].Owner.Name)
	})
}

func TestGetJob(t *testing.T) {
	t.Run("Should embed the owner summary", func(t *testing.T) {
		owner := bson.NewObjectID()
		job := &domain.Job{ID: bson.NewObjectID(), Title: "Go Engineer", PostedBy: &owner, Views: 4}
		jobs := new(MockJobRepo)
		hrs := new(MockHRRepo)
		jobs.On("IncrementViews", mock.Anything, job.ID).Return(job, nil)
		hrs.On("Summaries", mock.Anything, []bson.ObjectID{owner}).Return(map[bson.ObjectID]domain.HRSummary{
			owner: {ID: owner, Name: "Alice", CompanyName: "Acme"},
		}, nil)

		view, err := newJobUsecase(jobs, hrs, nil).GetJob(context.Background(), job.ID.Hex())

		require.NoError(t, err)
		assert.Equal(t, int64(4), view.Views)
		require.NotNil(t, view.Owner)
		assert.Equal(t, "Acme", view.Owner.CompanyName)

		body, err := json.Marshal(view)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"postedBy":{"id":"`+owner.Hex()+`","name":"Alice","companyName":"Acme"}`)
	})

	t.Run("Should reject malformed ids", func(t *testing.T) {
		_, err := newJobUsecase(new(MockJobRepo), nil, nil).GetJob(context.Background(), "xyz")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should fail with not found for unknown jobs", func(t *testing.T) {
		id := bson.NewObjectID()
		jobs := new(MockJobRepo)
		jobs.On("IncrementViews", mock.Anything, id).Return(nil, domain.ErrNotFound)

		_, err := newJobUsecase(jobs, nil, nil).GetJob(context.Background(), id.Hex())
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	})
}

func TestDeleteJob(t *testing.T) {
	t.Run("Should pull the job from its owner", func(t *testing.T) {
		owner := bson.NewObjectID()
		job := &domain.Job{ID: bson.NewObjectID(), PostedBy: &owner}
		jobs := new(MockJobRepo)
		hrs := new(MockHRRepo)
		jobs.On("Delete", mock.Anything, job.ID).Return(job, nil)
		hrs.On("PullJob", mock.Anything, owner, job.ID).Return(nil)

		deleted, err := newJobUsecase(jobs, hrs, nil).DeleteJob(callerCtx("hr@acme.io", nil), job.ID.Hex())

		require.NoError(t, err)
		assert.Equal(t, job.ID, deleted.ID)
		hrs.AssertExpectations(t)
	})

	t.Run("Should fail with not found twice in a row", func(t *testing.T) {
		id := bson.NewObjectID()
		jobs := new(MockJobRepo)
		jobs.On("Delete", mock.Anything, id).Return(nil, domain.ErrNotFound)

		_, err := newJobUsecase(jobs, nil, nil).DeleteJob(context.Background(), id.Hex())
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	})
}

func TestApplyAndSimilarity(t *testing.T) {
	resume := json.RawMessage(`{"name":"Jane"}`)

	t.Run("Should require both fields", func(t *testing.T) {
		matching := new(MockMatching)
		uc := newJobUsecase(nil, nil, matching)

		_, err := uc.Apply(context.Background(), nil, "jd-1")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		_, err = uc.Apply(context.Background(), json.RawMessage("null"), "jd-1")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		_, err = uc.Apply(context.Background(), resume, " ")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		_, err = uc.SimilarityScore(context.Background(), "")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		matching.AssertNotCalled(t, "ApplyResume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should relay the upstream status and body", func(t *testing.T) {
		matching := new(MockMatching)
		relay := &domain.MatchRelay{StatusCode: http.StatusUnprocessableEntity, Body: json.RawMessage(`{"detail":"bad resume"}`)}
		matching.On("ApplyResume", mock.Anything, resume, "jd-1").Return(relay, nil)

		got, err := newJobUsecase(nil, nil, matching).Apply(context.Background(), resume, "jd-1")

		require.NoError(t, err)
		assert.Equal(t, relay, got)
	})

	t.Run("Should map transport failures to server errors", func(t *testing.T) {
		matching := new(MockMatching)
		matching.On("Similarity", mock.Anything, "jd-1").Return(nil, context.DeadlineExceeded)

		_, err := newJobUsecase(nil, nil, matching).SimilarityScore(context.Background(), "jd-1")
		assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
	})
}

// memStore is an in-memory HR and job store used for end-to-end usecase flows.
type memStore struct {
	mu   sync.Mutex
	hrs  map[bson.ObjectID]*domain.HRAccount
	jobs map[bson.ObjectID]*domain.Job
	seq  int
}

func newMemStore() *memStore {
	return &memStore{hrs: map[bson.ObjectID]*domain.HRAccount{}, jobs: map[bson.ObjectID]*domain.Job{}}
}

type memHRs struct{ *memStore }

type memJobs struct{ *memStore }

func (s memHRs) Create(_ context.Context, hr *domain.HRAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range hr.OAuthProviders {
		for _, other := range s.hrs {
			if other.HasProvider(p.Provider, p.ProviderID) {
				return domain.ErrDuplicate
			}
		}
	}
	hr.ID = bson.NewObjectID()
	s.hrs[hr.ID] = hr
	return nil
}

func (s memHRs) GetByID(_ context.Context, id bson.ObjectID) (*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hr, ok := s.hrs[id]; ok {
		cp := *hr
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s memHRs) GetByProvider(_ context.Context, provider, providerID string) (*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hr := range s.hrs {
		if hr.HasProvider(provider, providerID) {
			cp := *hr
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s memHRs) GetByEmail(_ context.Context, email string) (*domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hr := range s.hrs {
		if hr.Email == email {
			cp := *hr
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s memHRs) AddProvider(ctx context.Context, id bson.ObjectID, binding domain.OAuthProvider) (*domain.HRAccount, error) {
	s.mu.Lock()
	hr, ok := s.hrs[id]
	if ok && !hr.HasProvider(binding.Provider, binding.ProviderID) {
		hr.OAuthProviders = append(hr.OAuthProviders, binding)
	}
	s.mu.Unlock()
	return s.GetByID(ctx, id)
}

func (s memHRs) ListByStatus(_ context.Context, status domain.HRStatus) ([]domain.HRAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.HRAccount{}
	for _, hr := range s.hrs {
		if hr.Status == status {
			out = append(out, *hr)
		}
	}
	return out, nil
}

func (s memHRs) UpdateStatus(ctx context.Context, id bson.ObjectID, status domain.HRStatus) (*domain.HRAccount, error) {
	s.mu.Lock()
	hr, ok := s.hrs[id]
	if ok {
		hr.Status = status
	}
	s.mu.Unlock()
	return s.GetByID(ctx, id)
}

func (s memHRs) TouchLastLogin(_ context.Context, _ bson.ObjectID, _ time.Time) error { return nil }

func (s memHRs) PullJob(_ context.Context, id bson.ObjectID, jobID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hr, ok := s.hrs[id]
	if !ok {
		return domain.ErrNotFound
	}
	kept := hr.Jobs[:0]
	for _, j := range hr.Jobs {
		if j != jobID {
			kept = append(kept, j)
		}
	}
	hr.Jobs = kept
	return nil
}

func (s memHRs) Summaries(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]domain.HRSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[bson.ObjectID]domain.HRSummary{}
	for _, id := range ids {
		if hr, ok := s.hrs[id]; ok {
			out[id] = hr.Summary()
		}
	}
	return out, nil
}

func (s memJobs) CreateForOwner(_ context.Context, job *domain.Job, owner bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hr, ok := s.hrs[owner]
	if !ok {
		return domain.ErrNotFound
	}
	s.seq++
	job.ID = bson.NewObjectID()
	job.PostedBy = &owner
	job.PostedAt = job.PostedAt.Add(time.Duration(s.seq) * time.Millisecond)
	s.jobs[job.ID] = job
	hr.Jobs = append(hr.Jobs, job.ID)
	return nil
}

func (s memJobs) GetByID(_ context.Context, id bson.ObjectID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s memJobs) IncrementViews(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	s.mu.Lock()
	if j, ok := s.jobs[id]; ok {
		j.Views++
	}
	s.mu.Unlock()
	return s.GetByID(ctx, id)
}

func (s memJobs) List(_ context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []domain.Job{}
	for _, j := range s.jobs {
		if string(j.Status) == f.Status {
			all = append(all, *j)
		}
	}
	sort.Slice(all, func(a, b int) bool { return all[a].PostedAt.After(all[b].PostedAt) })
	total := int64(len(all))
	start := int(f.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s memJobs) ListByOwner(_ context.Context, owner bson.ObjectID) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Job{}
	for _, j := range s.jobs {
		if j.PostedBy != nil && *j.PostedBy == owner {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (s memJobs) Delete(_ context.Context, id bson.ObjectID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.jobs, id)
	return j, nil
}

func TestRegisterApprovePostFlow(t *testing.T) {
	store := newMemStore()
	notifier := new(MockNotifier)
	notifier.On("HRStatusChanged", mock.Anything, mock.Anything).Return(nil)
	hrUC := usecase.NewHRUsecase(memHRs{store}, notifier, admins, validation.New(), nil, nil)
	jobUC := newJobUsecase(memJobs{store}, memHRs{store}, nil)

	hr, outcome, err := hrUC.Register(context.Background(), googleID, aliceInput)
	require.NoError(t, err)
	require.Equal(t, domain.RegisterCreated, outcome)

	_, err = jobUC.CreateJob(callerCtx("a@x.com", hr), validJob)
	assert.Equal(t, http.StatusForbidden, apperror.StatusOf(err))

	before, err := jobUC.ListJobs(context.Background(), domain.JobFilter{})
	require.NoError(t, err)

	approved, err := hrUC.Approve(adminCtx(), hr.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, domain.HRStatusApproved, approved.Status)

	resolved, err := hrUC.ResolveByIdentity(context.Background(), googleID)
	require.NoError(t, err)
	job, err := jobUC.CreateJob(callerCtx("a@x.com", resolved), validJob)
	require.NoError(t, err)

	after, err := jobUC.ListJobs(context.Background(), domain.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, len(before.Jobs)+1, len(after.Jobs))
	require.NotNil(t, after.Jobs[0].Owner)
	assert.Equal(t, "Acme", after.Jobs[0].Owner.CompanyName)

	owned, err := jobUC.ListByOwner(context.Background(), hr.ID.Hex())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, job.ID, owned[0].ID)
	assert.Equal(t, domain.JobStatusOpen, job.Status)
	require.NotNil(t, job.PostedBy)
	assert.Equal(t, hr.ID, *job.PostedBy)

	stored, err := memHRs{store}.GetByID(context.Background(), hr.ID)
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{job.ID}, stored.Jobs)

	again, outcome, err := hrUC.Register(context.Background(), googleID, domain.RegisterHRInput{Name: "Other", CompanyName: "Other Co"})
	require.NoError(t, err)
	assert.Equal(t, domain.RegisterExisting, outcome)
	assert.Equal(t, hr.ID, again.ID)
	assert.Equal(t, "Alice", again.Name)
}
