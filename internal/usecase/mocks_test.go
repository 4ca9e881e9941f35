package usecase_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"

	"trujobs-api/internal/domain"
)

type MockHRRepo struct {
	mock.Mock
}

func (m *MockHRRepo) Create(ctx context.Context, hr *domain.HRAccount) error {
	return m.Called(ctx, hr).Error(0)
}

func (m *MockHRRepo) GetByID(ctx context.Context, id bson.ObjectID) (*domain.HRAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) GetByProvider(ctx context.Context, provider, providerID string) (*domain.HRAccount, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) GetByEmail(ctx context.Context, email string) (*domain.HRAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) AddProvider(ctx context.Context, id bson.ObjectID, binding domain.OAuthProvider) (*domain.HRAccount, error) {
	args := m.Called(ctx, id, binding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) ListByStatus(ctx context.Context, status domain.HRStatus) ([]domain.HRAccount, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, status domain.HRStatus) (*domain.HRAccount, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRAccount), args.Error(1)
}

func (m *MockHRRepo) TouchLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockHRRepo) PullJob(ctx context.Context, id bson.ObjectID, jobID bson.ObjectID) error {
	return m.Called(ctx, id, jobID).Error(0)
}

func (m *MockHRRepo) Summaries(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]domain.HRSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[bson.ObjectID]domain.HRSummary), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) CreateForOwner(ctx context.Context, job *domain.Job, owner bson.ObjectID) error {
	return m.Called(ctx, job, owner).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) IncrementViews(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Job, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) Delete(ctx context.Context, id bson.ObjectID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateSubscriptionPlan(ctx context.Context, email, plan string) (*domain.User, error) {
	args := m.Called(ctx, email, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockMatching struct {
	mock.Mock
}

func (m *MockMatching) Similarity(ctx context.Context, jobDescriptionID string) (*domain.MatchRelay, error) {
	args := m.Called(ctx, jobDescriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchRelay), args.Error(1)
}

func (m *MockMatching) ApplyResume(ctx context.Context, resume json.RawMessage, jobDescriptionID string) (*domain.MatchRelay, error) {
	args := m.Called(ctx, resume, jobDescriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchRelay), args.Error(1)
}

func (m *MockMatching) UploadJobDescription(ctx context.Context, jobDescription string) (*domain.MatchRelay, error) {
	args := m.Called(ctx, jobDescription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchRelay), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) HRStatusChanged(ctx context.Context, hr *domain.HRAccount) error {
	return m.Called(ctx, hr).Error(0)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}

const adminEmail = "admin@trujobs.io"

var admins = domain.NewAdminAllowList([]string{adminEmail})

func callerCtx(email string, hr *domain.HRAccount) context.Context {
	return domain.WithCaller(context.Background(), &domain.Caller{
		Identity: domain.Identity{Provider: domain.ProviderGoogle, Subject: "sub-" + email, Email: email, EmailVerified: true},
		HR:       hr,
	})
}

func adminCtx() context.Context {
	return callerCtx(adminEmail, nil)
}
