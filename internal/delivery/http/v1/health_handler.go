package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/usecase"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /v1/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.healthUC == nil {
		response.Success(c, http.StatusOK, "System operational", gin.H{"status": "ok"})
		return
	}

	status, ok := h.healthUC.Check(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
