package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/logger"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/security"
)

const (
	maxImageDimension = 1200
	jpegQuality       = 80
)

type uploadUsecase struct {
	store    domain.BlobStore
	matching domain.MatchingService
	maxBytes int64
	audit    *security.AuditLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewUploadUsecase(store domain.BlobStore, matching domain.MatchingService, maxBytes int64, audit *security.AuditLogger, m *metrics.Metrics) domain.UploadUsecase {
	return &uploadUsecase{
		store:    store,
		matching: matching,
		maxBytes: maxBytes,
		audit:    audit,
		metrics:  m,
		now:      time.Now,
	}
}

// UploadFile stores the file as <sha256>_<unix>.<ext>. Images are downscaled
// and re-encoded as JPEG first.
func (u *uploadUsecase) UploadFile(ctx context.Context, filename string, data []byte) (*domain.UploadedFile, error) {
	if len(data) == 0 {
		return nil, apperror.BadRequest("No file uploaded")
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		u.metrics.Upload("too_large")
		return nil, apperror.New(http.StatusRequestEntityTooLarge, "File too large", nil)
	}

	check := security.InspectFile(filename, data)
	if !check.Valid {
		u.metrics.Upload("rejected")
		u.audit.Record(ctx, security.AuditEvent{
			Event:   security.EventUploadRejected,
			Details: map[string]string{"reason": check.Error, "mime": check.DetectedMIME},
		})
		return nil, apperror.BadRequest(check.Error)
	}

	body, ext, contentType := data, check.Extension, check.DetectedMIME
	if security.IsImageExtension(ext) {
		compressed, err := compressImage(data, maxImageDimension, jpegQuality)
		if err != nil {
			logger.Log.Warn("image compression failed, storing original", "error", err)
		} else {
			body, ext, contentType = compressed, ".jpg", "image/jpeg"
		}
	}

	sum := sha256.Sum256(body)
	name := fmt.Sprintf("%s_%d%s", hex.EncodeToString(sum[:]), u.now().Unix(), ext)

	url, err := u.store.Put(ctx, name, body, contentType)
	if err != nil {
		u.metrics.Upload("error")
		return nil, apperror.Internal(err)
	}

	u.metrics.Upload("ok")
	return &domain.UploadedFile{URL: url, Name: name}, nil
}

// UploadJobDescription registers the text with the matching service and returns its id.
func (u *uploadUsecase) UploadJobDescription(ctx context.Context, jobDescription string) (string, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return "", apperror.BadRequest("job_description is required")
	}

	start := time.Now()
	relay, err := u.matching.UploadJobDescription(ctx, jobDescription)
	u.metrics.ObserveMatching("jd_upload", relayStatus(relay), time.Since(start))
	if err != nil {
		return "", apperror.Internal(err)
	}
	if !relay.OK() {
		return "", apperror.New(relay.StatusCode, "Job description upload failed", nil)
	}

	var out struct {
		JobDescriptionID json.RawMessage `json:"job_description_id"`
	}
	if err := json.Unmarshal(relay.Body, &out); err != nil || len(out.JobDescriptionID) == 0 {
		return "", apperror.Internal(fmt.Errorf("matching service returned no job_description_id"))
	}
	return jsonScalar(out.JobDescriptionID), nil
}

// jsonScalar renders a JSON string or number as plain text.
func jsonScalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// compressImage fits the image inside maxDimension on its longest side and encodes it as JPEG.
func compressImage(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := width, height
	if width >= height && width > maxDimension {
		newWidth = maxDimension
		newHeight = int(float64(height) * float64(maxDimension) / float64(width))
	} else if height > width && height > maxDimension {
		newHeight = maxDimension
		newWidth = int(float64(width) * float64(maxDimension) / float64(height))
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(resized, resized.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
