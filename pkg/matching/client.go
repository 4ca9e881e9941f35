// Package matching talks to the external resume/job scoring service.
package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trujobs-api/internal/domain"
)

const (
	resumeUploadPath = "/prod/ResumeUpload"
	similarityPath   = "/prod/resume_Similarity"
	jdUploadPath     = "/prod/JDUpload"

	// upstream bodies above this are treated as a failure
	maxBodyBytes = 4 << 20
)

var ErrNotConfigured = errors.New("matching service base url not configured")

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type similarityRequest struct {
	JobDescriptionID    string `json:"job_description_id"`
	CalculateSimilarity bool   `json:"calculate_similarity"`
}

type applyRequest struct {
	ResumeJSON       json.RawMessage `json:"resume_json"`
	JobDescriptionID string          `json:"job_description_id"`
}

type jdUploadRequest struct {
	JobDescription string `json:"job_description"`
}

func (c *Client) Similarity(ctx context.Context, jobDescriptionID string) (*domain.MatchRelay, error) {
	return c.post(ctx, similarityPath, similarityRequest{
		JobDescriptionID:    jobDescriptionID,
		CalculateSimilarity: true,
	})
}

func (c *Client) ApplyResume(ctx context.Context, resume json.RawMessage, jobDescriptionID string) (*domain.MatchRelay, error) {
	return c.post(ctx, resumeUploadPath, applyRequest{
		ResumeJSON:       resume,
		JobDescriptionID: jobDescriptionID,
	})
}

func (c *Client) UploadJobDescription(ctx context.Context, jobDescription string) (*domain.MatchRelay, error) {
	return c.post(ctx, jdUploadPath, jdUploadRequest{JobDescription: jobDescription})
}

// post sends one JSON request with no retries. Any upstream status is relayed
// as long as the body is JSON.
func (c *Client) post(ctx context.Context, path string, payload any) (*domain.MatchRelay, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if len(raw) > maxBodyBytes {
		return nil, fmt.Errorf("%s response exceeds %d bytes", path, maxBodyBytes)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s returned non-JSON body (status %d)", path, resp.StatusCode)
	}

	return &domain.MatchRelay{StatusCode: resp.StatusCode, Body: json.RawMessage(raw)}, nil
}
