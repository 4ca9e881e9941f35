package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(r gin.IRouter, g Guards, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := r.Group("/job")
	{
		jobs.Group("", g.ApprovedHR...).POST("/post-job", handler.Create)

		// public
		jobs.GET("/all-jobs", handler.List)
		jobs.GET("/hr-jobs", handler.ListByOwner)
		jobs.POST("/apply-job", handler.Apply)
		jobs.GET("/:jobId", handler.Get)
	}
}

// Create godoc
// @Summary      Post a job
// @Description  Approved HR accounts only. employmentType defaults to full-time, status to open.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      domain.CreateJobInput  true  "Job"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /job/post-job [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var input domain.CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job posted", job)
}

// List godoc
// @Summary      List jobs
// @Description  Public, paginated. Only open jobs unless status is given.
// @Tags         jobs
// @Produce      json
// @Param        page            query     int     false  "Page (>= 1)"
// @Param        limit           query     int     false  "Page size (1-100, default 20)"
// @Param        q               query     string  false  "Free-text search"
// @Param        location        query     string  false  "Location substring"
// @Param        isRemote        query     bool    false  "Remote only / on-site only"
// @Param        employmentType  query     string  false  "full-time, part-time, contract, internship, temporary"
// @Param        status          query     string  false  "draft, open, closed, paused"
// @Param        sort            query     string  false  "field:dir, e.g. postedAt:desc"
// @Success      200             {object}  response.Response
// @Failure      400             {object}  response.Response
// @Router       /job/all-jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	filter, err := parseJobFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.jobUC.ListJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job list", result)
}

func parseJobFilter(c *gin.Context) (domain.JobFilter, error) {
	filter := domain.JobFilter{
		Page:           queryInt(c, "page", domain.DefaultJobPage),
		Limit:          queryInt(c, "limit", domain.DefaultJobLimit),
		Query:          c.Query("q"),
		Location:       strings.TrimSpace(c.Query("location")),
		EmploymentType: c.Query("employmentType"),
		Status:         c.Query("status"),
	}

	if raw, ok := c.GetQuery("isRemote"); ok && raw != "" {
		remote := raw == "true"
		filter.IsRemote = &remote
	}

	sort, err := domain.ParseJobSort(c.Query("sort"))
	if err != nil {
		return filter, apperror.BadRequest(err.Error())
	}
	filter.Sort = sort
	return filter, nil
}

// queryInt falls back when the parameter is absent or not a number.
func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

// Get godoc
// @Summary      Job detail
// @Description  Public. Increments the view counter.
// @Tags         jobs
// @Produce      json
// @Param        jobId  path      string  true  "Job id"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /job/{jobId} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job detail", gin.H{"job": job})
}

// ListByOwner godoc
// @Summary      Jobs posted by an HR account
// @Tags         jobs
// @Produce      json
// @Param        hrId  query     string  true  "HR id"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /job/hr-jobs [get]
func (h *JobHandler) ListByOwner(c *gin.Context) {
	jobs, err := h.jobUC.ListByOwner(c.Request.Context(), c.Query("hrId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "HR jobs", gin.H{"jobs": jobs})
}

type ApplyRequest struct {
	ResumeJSON       json.RawMessage `json:"resume_json" swaggertype:"object"`
	JobDescriptionID string          `json:"job_description_id"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Forwards the resume to the scoring service and relays its response and status unchanged
// @Tags         matching
// @Accept       json
// @Produce      json
// @Param        body  body      ApplyRequest  true  "Resume and job description reference"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /job/apply-job [post]
func (h *JobHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	relay, err := h.jobUC.Apply(c.Request.Context(), req.ResumeJSON, req.JobDescriptionID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Relay(c, relay.StatusCode, "Application submitted", relay.Body)
}
