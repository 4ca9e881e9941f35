package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

func NewAdminHandler(r gin.IRouter, g Guards, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	admin := r.Group("/admin", g.Authenticated, g.Admin)
	{
		admin.GET("/getAllUser", handler.ListUsers)
		admin.PUT("/updateSubscriptionPlan", handler.UpdateSubscriptionPlan)
	}
}

// ListUsers godoc
// @Summary      List all platform users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /admin/getAllUser [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminUC.ListUsers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users list", users)
}

// UpdateSubscriptionPlan godoc
// @Summary      Set a user's subscription plan
// @Description  Clears the user's coupon code
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.UpdateSubscriptionInput  true  "Email and plan"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /admin/updateSubscriptionPlan [put]
func (h *AdminHandler) UpdateSubscriptionPlan(c *gin.Context) {
	var input domain.UpdateSubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.adminUC.UpdateSubscriptionPlan(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Subscription plan updated", user)
}
