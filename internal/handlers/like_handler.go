package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/models"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
)

type LikeHandler struct {
	*BaseHandler
	likeService services.LikeService
}

func NewLikeHandler(base *BaseHandler, likeService services.LikeService) *LikeHandler {
	return &LikeHandler{
		BaseHandler: base,
		likeService: likeService,
	}
}

// likeQuery разбирает target_type (по умолчанию housing_offer) и остальные параметры
func (h *LikeHandler) likeQuery(c *gin.Context) (dto.LikeQuery, models.LikeTargetType, bool) {
	var query dto.LikeQuery
	if !h.BindAndValidate_Query(c, &query) {
		return query, "", false
	}
	targetType, err := services.ResolveLikeTargetType(query.TargetType)
	if err != nil {
		h.HandleServiceError(c, err)
		return query, "", false
	}
	return query, targetType, true
}

// LikeTarget godoc
// @Summary Лайкнуть объект
// @Description Создает лайк или реактивирует ранее снятый. Повторный вызов ничего не меняет.
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param targetId path string true "ID объекта (UUID)"
// @Param target_type query string false "housing_offer | job_offer | item" default(housing_offer)
// @Success 201 {object} dto.LikeResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /likes/{targetId} [post]
func (h *LikeHandler) LikeTarget(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}
	targetID, ok := ParseUUIDParam(c, "targetId")
	if !ok {
		return
	}
	_, targetType, ok := h.likeQuery(c)
	if !ok {
		return
	}

	like, err := h.likeService.LikeTarget(c.Request.Context(), h.GetDB(c), actor.ID, targetID, targetType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, like)
}

// UnlikeTarget godoc
// @Summary Снять лайк
// @Description Переводит активный лайк в inactive. Администратор может передать user_id другого пользователя.
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param targetId path string true "ID объекта (UUID)"
// @Param target_type query string false "Тип объекта" default(housing_offer)
// @Param user_id query string false "Владелец лайка (по умолчанию текущий пользователь)"
// @Success 200 {object} dto.LikeResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse "Like not found or already inactive"
// @Router /likes/{targetId} [delete]
func (h *LikeHandler) UnlikeTarget(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}
	targetID, ok := ParseUUIDParam(c, "targetId")
	if !ok {
		return
	}
	query, targetType, ok := h.likeQuery(c)
	if !ok {
		return
	}

	userID := actor.ID
	if query.UserID != "" {
		userID = query.UserID
	}

	like, err := h.likeService.UnlikeTarget(c.Request.Context(), h.GetDB(c), userID, targetID, targetType, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, like)
}

// CheckLikeStatus godoc
// @Summary Лайкнул ли текущий пользователь объект
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param targetId path string true "ID объекта (UUID)"
// @Param target_type query string false "Тип объекта" default(housing_offer)
// @Success 200 {object} dto.LikeStatusResponse
// @Router /likes/{targetId}/status [get]
func (h *LikeHandler) CheckLikeStatus(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}
	targetID, ok := ParseUUIDParam(c, "targetId")
	if !ok {
		return
	}
	_, targetType, ok := h.likeQuery(c)
	if !ok {
		return
	}

	liked, err := h.likeService.CheckLikeStatus(c.Request.Context(), h.GetDB(c), actor.ID, targetID, targetType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeStatusResponse{TargetID: targetID, TargetType: targetType, IsLiked: liked})
}

// CountTargetLikes godoc
// @Summary Число активных лайков объекта
// @Tags likes
// @Produce json
// @Param targetId path string true "ID объекта (UUID)"
// @Param target_type query string false "Тип объекта" default(housing_offer)
// @Success 200 {object} dto.LikeCountResponse
// @Router /likes/{targetId}/count [get]
func (h *LikeHandler) CountTargetLikes(c *gin.Context) {
	targetID, ok := ParseUUIDParam(c, "targetId")
	if !ok {
		return
	}
	_, targetType, ok := h.likeQuery(c)
	if !ok {
		return
	}

	count, err := h.likeService.CountTargetLikes(c.Request.Context(), h.GetDB(c), targetID, targetType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeCountResponse{TargetID: targetID, TargetType: targetType, Count: count})
}

// GetMyLikes godoc
// @Summary Лайки текущего пользователя
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param target_type query string false "Тип объекта" default(housing_offer)
// @Param only_active query bool false "Только активные" default(true)
// @Success 200 {array} dto.LikeResponse
// @Router /likes/me [get]
func (h *LikeHandler) GetMyLikes(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}
	h.listLikes(c, actor.ID, actor)
}

// GetUserLikes godoc
// @Summary Лайки пользователя
// @Description Доступно самому пользователю и администраторам
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param userId path string true "ID пользователя"
// @Param target_type query string false "Тип объекта" default(housing_offer)
// @Param only_active query bool false "Только активные" default(true)
// @Success 200 {array} dto.LikeResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /users/{userId}/likes [get]
func (h *LikeHandler) GetUserLikes(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}
	h.listLikes(c, c.Param("userId"), actor)
}

func (h *LikeHandler) listLikes(c *gin.Context, userID string, actor dto.Actor) {
	query, targetType, ok := h.likeQuery(c)
	if !ok {
		return
	}
	onlyActive := true
	if query.OnlyActive != nil {
		onlyActive = *query.OnlyActive
	}

	likes, err := h.likeService.GetUserLikes(c.Request.Context(), h.GetDB(c), userID, targetType, actor, onlyActive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, likes)
}
