package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// GetUser godoc
// @Summary Профиль пользователя
// @Tags users
// @Produce json
// @Param userId path string true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), h.GetDB(c), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Доступно модераторам и администраторам
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Роль"
// @Param search query string false "Поиск по username и email"
// @Param skip query int false "Смещение"
// @Param limit query int false "Размер страницы (макс. 100)"
// @Success 200 {object} dto.UserListResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query dto.ListUsersQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateRole godoc
// @Summary Изменить роль пользователя
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "ID пользователя"
// @Param request body dto.UpdateRoleRequest true "Новая роль"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/users/{userId}/role [patch]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), h.GetDB(c), actor, c.Param("userId"), req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
