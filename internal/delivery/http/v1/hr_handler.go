package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
)

type HRHandler struct {
	hrUC  domain.HRUsecase
	jobUC domain.JobUsecase
}

func NewHRHandler(r gin.IRouter, g Guards, hrUC domain.HRUsecase, jobUC domain.JobUsecase) {
	handler := &HRHandler{hrUC: hrUC, jobUC: jobUC}

	hr := r.Group("/hr", g.Authenticated)
	{
		hr.POST("/register", handler.Register)
		hr.GET("/me", g.OptionalHR, handler.Me)

		hr.GET("/companies-list", g.Admin, handler.CompaniesList)
		hr.POST("/approve/:hrId", g.Admin, handler.Approve)
		hr.POST("/reject/:hrId", g.Admin, handler.Reject)

		hr.DELETE("/deleteJob/:job_id", handler.DeleteJob)
		hr.GET("/getSimilarityScore", handler.SimilarityScore)
	}
}

var registerMessages = map[domain.RegisterOutcome]string{
	domain.RegisterCreated:  "HR registered (pending approval)",
	domain.RegisterExisting: "HR already registered",
	domain.RegisterLinked:   "Linked provider to existing HR",
}

// Register godoc
// @Summary      Register an HR account
// @Description  Creates a pending HR account for the verified Google identity, or returns / links the existing one
// @Tags         hr
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RegisterHRInput  true  "HR profile"
// @Success      201   {object}  response.Response
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /hr/register [post]
// @Security     BearerAuth
func (h *HRHandler) Register(c *gin.Context) {
	caller, ok := domain.CallerFrom(c.Request.Context())
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	var input domain.RegisterHRInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	hr, outcome, err := h.hrUC.Register(c.Request.Context(), caller.Identity, input)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if outcome == domain.RegisterCreated {
		status = http.StatusCreated
	}
	response.Success(c, status, registerMessages[outcome], hr)
}

// Me godoc
// @Summary      Current HR profile
// @Tags         hr
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /hr/me [get]
// @Security     BearerAuth
func (h *HRHandler) Me(c *gin.Context) {
	hr, err := h.hrUC.Me(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "HR profile", hr)
}

// CompaniesList godoc
// @Summary      List HR accounts by status
// @Description  Admin only. Newest first. Defaults to pending.
// @Tags         hr
// @Produce      json
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /hr/companies-list [get]
// @Security     BearerAuth
func (h *HRHandler) CompaniesList(c *gin.Context) {
	hrs, err := h.hrUC.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "HR accounts", gin.H{
		"count":   len(hrs),
		"pending": hrs,
	})
}

// Approve godoc
// @Summary      Approve an HR account
// @Tags         hr
// @Produce      json
// @Param        hrId  path      string  true  "HR id"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /hr/approve/{hrId} [post]
// @Security     BearerAuth
func (h *HRHandler) Approve(c *gin.Context) {
	hr, err := h.hrUC.Approve(c.Request.Context(), c.Param("hrId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "HR approved", hr)
}

// Reject godoc
// @Summary      Reject an HR account
// @Tags         hr
// @Produce      json
// @Param        hrId  path      string  true  "HR id"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /hr/reject/{hrId} [post]
// @Security     BearerAuth
func (h *HRHandler) Reject(c *gin.Context) {
	hr, err := h.hrUC.Reject(c.Request.Context(), c.Param("hrId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "HR rejected", hr)
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  Hard delete. Any authenticated caller may delete any job.
// @Tags         jobs
// @Produce      json
// @Param        job_id  path      string  true  "Job id"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /hr/deleteJob/{job_id} [delete]
// @Security     BearerAuth
func (h *HRHandler) DeleteJob(c *gin.Context) {
	job, err := h.jobUC.DeleteJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", job)
}

// SimilarityScore godoc
// @Summary      Resume similarity scores for a job description
// @Description  Relays the scoring service response and status unchanged
// @Tags         matching
// @Produce      json
// @Param        job_description_id  query  string  true  "Job description reference"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /hr/getSimilarityScore [get]
// @Security     BearerAuth
func (h *HRHandler) SimilarityScore(c *gin.Context) {
	relay, err := h.jobUC.SimilarityScore(c.Request.Context(), c.Query("job_description_id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Relay(c, relay.StatusCode, "Similarity score", relay.Body)
}
