package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/middleware"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

// ListOffers godoc
// @Summary Список активных вакансий
// @Description Токен необязателен; с токеном заполняются is_saved и is_applied
// @Tags jobs
// @Produce json
// @Param category query string false "Категория"
// @Param job_type query string false "Тип занятости"
// @Param search query string false "Поиск по названию"
// @Param skip query int false "Смещение"
// @Param limit query int false "Размер страницы (по умолчанию 20, макс. 100)"
// @Success 200 {object} dto.JobListResponse
// @Router /jobs [get]
func (h *JobHandler) ListOffers(c *gin.Context) {
	var query dto.JobListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	jobs, err := h.jobService.ListOffers(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetOffer godoc
// @Summary Вакансия
// @Tags jobs
// @Produce json
// @Param jobId path string true "ID вакансии"
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [get]
func (h *JobHandler) GetOffer(c *gin.Context) {
	job, err := h.jobService.GetOffer(c.Request.Context(), h.GetDB(c), c.Param("jobId"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// CreateOffer godoc
// @Summary Создать вакансию
// @Description Доступно рекрутерам и администраторам. file_ids привязываются как логотипы.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Вакансия"
// @Success 201 {object} dto.JobResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateOffer(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateOffer(c.Request.Context(), h.GetDB(c), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// UpdateOffer godoc
// @Summary Обновить вакансию
// @Description Частичное обновление; доступно владельцу и администраторам
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Param request body dto.UpdateJobRequest true "Изменяемые поля"
// @Success 200 {object} dto.JobResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [patch]
func (h *JobHandler) UpdateOffer(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateOffer(c.Request.Context(), h.GetDB(c), c.Param("jobId"), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteOffer godoc
// @Summary Удалить вакансию
// @Description Удаляет вакансию вместе с откликами, закладками и привязками файлов
// @Tags jobs
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Success 204
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId} [delete]
func (h *JobHandler) DeleteOffer(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	if err := h.jobService.DeleteOffer(c.Request.Context(), h.GetDB(c), c.Param("jobId"), actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ApplyToJob godoc
// @Summary Откликнуться на вакансию
// @Description Пустые поля берутся из профиля пользователя
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Param request body dto.ApplyJobRequest false "Контакты и сопроводительное письмо"
// @Success 200 {object} dto.JobApplicationResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Уже откликались"
// @Router /jobs/{jobId}/apply [post]
func (h *JobHandler) ApplyToJob(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.ApplyJobRequest
	if c.Request.ContentLength != 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}

	application, err := h.jobService.ApplyToJob(c.Request.Context(), h.GetDB(c), c.Param("jobId"), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// ToggleSaveJob godoc
// @Summary Добавить или убрать вакансию из сохраненных
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Success 200 {object} dto.SaveJobResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId}/save [post]
func (h *JobHandler) ToggleSaveJob(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	result, err := h.jobService.ToggleSaveJob(c.Request.Context(), h.GetDB(c), c.Param("jobId"), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMySavedJobs godoc
// @Summary Сохраненные вакансии
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.JobResponse
// @Router /jobs/saved [get]
func (h *JobHandler) GetMySavedJobs(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.GetMySavedJobs(c.Request.Context(), h.GetDB(c), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetMyApplications godoc
// @Summary Вакансии, на которые откликнулся пользователь
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.JobResponse
// @Router /jobs/applications [get]
func (h *JobHandler) GetMyApplications(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.GetMyApplications(c.Request.Context(), h.GetDB(c), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobApplications godoc
// @Summary Отклики на вакансию
// @Description Доступно владельцу вакансии и администраторам
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Success 200 {array} dto.JobApplicationResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId}/applications [get]
func (h *JobHandler) GetJobApplications(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	applications, err := h.jobService.GetJobApplications(c.Request.Context(), h.GetDB(c), c.Param("jobId"), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}
