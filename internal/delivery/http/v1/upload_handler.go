package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/security"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
	maxBytes int64
}

func NewUploadHandler(r gin.IRouter, g Guards, uploadUC domain.UploadUsecase, maxBytes int64) {
	handler := &UploadHandler{uploadUC: uploadUC, maxBytes: maxBytes}

	upload := r.Group("/upload", g.UploadLimit)
	{
		upload.POST("/upload", handler.UploadFile)
		upload.POST("/uploadJD", handler.UploadJobDescription)
	}
}

// UploadFile godoc
// @Summary      Upload a file
// @Description  Images are downscaled to 1200px and stored as JPEG. Stored name is <sha256>_<unix>.<ext>.
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /upload/upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if err := security.CheckExtension(fh.Filename); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, "File too large", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	var reader io.Reader = f
	if h.maxBytes > 0 {
		reader = io.LimitReader(f, h.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	out, err := h.uploadUC.UploadFile(c.Request.Context(), fh.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "File uploaded", out)
}

type UploadJDRequest struct {
	JobDescription string `json:"job_description"`
}

// UploadJobDescription godoc
// @Summary      Register a job description with the scoring service
// @Tags         upload
// @Accept       json
// @Produce      json
// @Param        body  body      UploadJDRequest  true  "Job description text"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /upload/uploadJD [post]
func (h *UploadHandler) UploadJobDescription(c *gin.Context) {
	var req UploadJDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	id, err := h.uploadUC.UploadJobDescription(c.Request.Context(), req.JobDescription)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job description uploaded", gin.H{"job_description_id": id})
}
