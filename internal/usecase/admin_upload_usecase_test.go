package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trujobs-api/internal/domain"
	"trujobs-api/internal/usecase"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/validation"
)

func TestAdminUsecase(t *testing.T) {
	t.Run("Should update the plan for admins", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("UpdateSubscriptionPlan", mock.Anything, "jane@example.com", "pro").
			Return(&domain.User{Email: "jane@example.com", SubscriptionPlan: "pro"}, nil)

		user, err := usecase.NewAdminUsecase(users, admins, validation.New(), nil).
			UpdateSubscriptionPlan(adminCtx(), domain.UpdateSubscriptionInput{Email: " jane@example.com ", SubscriptionPlan: "pro"})

		require.NoError(t, err)
		assert.Equal(t, "pro", user.SubscriptionPlan)
		assert.Empty(t, user.CouponCode)
	})

	t.Run("Should fail with not found for unknown users", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("UpdateSubscriptionPlan", mock.Anything, "ghost@example.com", "pro").Return(nil, domain.ErrNotFound)

		_, err := usecase.NewAdminUsecase(users, admins, validation.New(), nil).
			UpdateSubscriptionPlan(adminCtx(), domain.UpdateSubscriptionInput{Email: "ghost@example.com", SubscriptionPlan: "pro"})
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	})

	t.Run("Should reject missing fields", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := usecase.NewAdminUsecase(users, admins, validation.New(), nil)

		_, err := uc.UpdateSubscriptionPlan(adminCtx(), domain.UpdateSubscriptionInput{Email: "jane@example.com"})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		_, err = uc.UpdateSubscriptionPlan(adminCtx(), domain.UpdateSubscriptionInput{Email: "nope", SubscriptionPlan: "pro"})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		users.AssertNotCalled(t, "UpdateSubscriptionPlan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should deny non-admin callers", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := usecase.NewAdminUsecase(users, admins, validation.New(), nil)

		_, err := uc.ListUsers(callerCtx("hr@acme.io", nil))
		assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))
		_, err = uc.ListUsers(context.Background())
		assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))

		unverified := domain.WithCaller(context.Background(), &domain.Caller{
			Identity: domain.Identity{Provider: domain.ProviderGoogle, Subject: "7", Email: adminEmail},
		})
		_, err = uc.ListUsers(unverified)
		assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))
		users.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("Should list users for admins", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("List", mock.Anything).Return([]domain.User{{Email: "a@b.c"}, {Email: "d@e.f"}}, nil)

		got, err := usecase.NewAdminUsecase(users, admins, validation.New(), nil).ListUsers(adminCtx())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

var storedName = regexp.MustCompile(`^[0-9a-f]{64}_\d+\.(jpg|pdf)$`)

func widePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadFile(t *testing.T) {
	t.Run("Should store documents under a content hash name", func(t *testing.T) {
		data := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
		store := new(MockBlobStore)
		store.On("Put", mock.Anything, mock.MatchedBy(storedName.MatchString), data, "application/pdf").
			Return("https://cdn.example.com/x.pdf", nil)

		out, err := usecase.NewUploadUsecase(store, nil, 1<<20, nil, nil).UploadFile(context.Background(), "cv.pdf", data)

		require.NoError(t, err)
		assert.Regexp(t, storedName, out.Name)
		assert.Equal(t, "https://cdn.example.com/x.pdf", out.URL)
		store.AssertExpectations(t)
	})

	t.Run("Should downscale images and re-encode them as JPEG", func(t *testing.T) {
		var stored []byte
		store := new(MockBlobStore)
		store.On("Put", mock.Anything, mock.MatchedBy(storedName.MatchString), mock.Anything, "image/jpeg").
			Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
			Return("https://cdn.example.com/x.jpg", nil)

		out, err := usecase.NewUploadUsecase(store, nil, 10<<20, nil, nil).UploadFile(context.Background(), "banner.png", widePNG(t, 2400, 600))

		require.NoError(t, err)
		assert.Regexp(t, `\.jpg$`, out.Name)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(stored))
		require.NoError(t, err)
		assert.Equal(t, 1200, cfg.Width)
		assert.Equal(t, 300, cfg.Height)
	})

	t.Run("Should reject spoofed and oversized files", func(t *testing.T) {
		store := new(MockBlobStore)
		uc := usecase.NewUploadUsecase(store, nil, 64, nil, nil)

		_, err := uc.UploadFile(context.Background(), "cv.pdf", []byte("MZ\x90\x00 not a pdf at all"))
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		_, err = uc.UploadFile(context.Background(), "cv.pdf", bytes.Repeat([]byte("a"), 65))
		assert.Equal(t, http.StatusRequestEntityTooLarge, apperror.StatusOf(err))

		_, err = uc.UploadFile(context.Background(), "cv.pdf", nil)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))

		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should surface storage failures", func(t *testing.T) {
		store := new(MockBlobStore)
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

		_, err := usecase.NewUploadUsecase(store, nil, 0, nil, nil).UploadFile(context.Background(), "notes.txt", []byte("plain text notes"))
		assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
	})
}

func TestUploadJobDescription(t *testing.T) {
	t.Run("Should return the id from the matching service", func(t *testing.T) {
		matching := new(MockMatching)
		matching.On("UploadJobDescription", mock.Anything, "Build APIs in Go").
			Return(&domain.MatchRelay{StatusCode: http.StatusOK, Body: json.RawMessage(`{"job_description_id":"jd-77"}`)}, nil)

		id, err := usecase.NewUploadUsecase(nil, matching, 0, nil, nil).UploadJobDescription(context.Background(), "Build APIs in Go")
		require.NoError(t, err)
		assert.Equal(t, "jd-77", id)
	})

	t.Run("Should accept numeric ids", func(t *testing.T) {
		matching := new(MockMatching)
		matching.On("UploadJobDescription", mock.Anything, mock.Anything).
			Return(&domain.MatchRelay{StatusCode: http.StatusOK, Body: json.RawMessage(`{"job_description_id":1234}`)}, nil)

		id, err := usecase.NewUploadUsecase(nil, matching, 0, nil, nil).UploadJobDescription(context.Background(), "text")
		require.NoError(t, err)
		assert.Equal(t, "1234", id)
	})

	t.Run("Should carry the upstream status on failure", func(t *testing.T) {
		matching := new(MockMatching)
		matching.On("UploadJobDescription", mock.Anything, mock.Anything).
			Return(&domain.MatchRelay{StatusCode: http.StatusBadGateway, Body: json.RawMessage(`{}`)}, nil)

		_, err := usecase.NewUploadUsecase(nil, matching, 0, nil, nil).UploadJobDescription(context.Background(), "text")
		assert.Equal(t, http.StatusBadGateway, apperror.StatusOf(err))
	})

	t.Run("Should require text", func(t *testing.T) {
		_, err := usecase.NewUploadUsecase(nil, new(MockMatching), 0, nil, nil).UploadJobDescription(context.Background(), "  ")
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})
}

func TestHealthCheck(t *testing.T) {
	up := usecase.PingFunc(func(context.Context) error { return nil })
	down := usecase.PingFunc(func(context.Context) error { return errors.New("refused") })

	res, ok := usecase.NewHealthUsecase(map[string]usecase.Pinger{"mongo": up}).Check(context.Background())
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"status": "ok", "mongo": "up"}, res)

	res, ok = usecase.NewHealthUsecase(map[string]usecase.Pinger{"mongo": up, "redis": down}).Check(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "degraded", res["status"])
	assert.Equal(t, "down", res["redis"])
}
