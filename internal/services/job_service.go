package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
	"campus_backend/pkg/apperrors"
)

const (
	defaultJobPageSize  = 20
	maxJobPageSize      = 100
	defaultSalaryPeriod = "year"
)

type JobService interface {
	// Job offer operations
	CreateOffer(ctx context.Context, db *gorm.DB, actor dto.Actor, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	ListOffers(ctx context.Context, db *gorm.DB, viewerID string, query dto.JobListQuery) (*dto.JobListResponse, error)
	GetOffer(ctx context.Context, db *gorm.DB, jobID, viewerID string) (*dto.JobResponse, error)
	UpdateOffer(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	DeleteOffer(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) error

	// Applications and saves
	ApplyToJob(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor, req *dto.ApplyJobRequest) (*dto.JobApplicationResponse, error)
	ToggleSaveJob(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) (*dto.SaveJobResponse, error)
	GetMySavedJobs(ctx context.Context, db *gorm.DB, actor dto.Actor) ([]*dto.JobResponse, error)
	GetMyApplications(ctx context.Context, db *gorm.DB, actor dto.Actor) ([]*dto.JobResponse, error)
	GetJobApplications(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) ([]*dto.JobApplicationResponse, error)
}

type jobService struct {
	jobRepo  repositories.JobRepository
	fileRepo repositories.FileRepository
	userRepo repositories.UserRepository
	enricher *JobEnricher
	notifier NotificationService
	now      func() time.Time
}

func NewJobService(
	jobRepo repositories.JobRepository,
	fileRepo repositories.FileRepository,
	userRepo repositories.UserRepository,
	notifier NotificationService,
) JobService {
	return &jobService{
		jobRepo:  jobRepo,
		fileRepo: fileRepo,
		userRepo: userRepo,
		enricher: NewJobEnricher(jobRepo, fileRepo),
		notifier: notifier,
		now:      time.Now,
	}
}

// ---------------- Job Offer Operations ----------------

func (s *jobService) CreateOffer(ctx context.Context, db *gorm.DB, actor dto.Actor, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	if !auth.IsOneOf(actor.Role, models.UserRoleRecruiter, models.UserRoleAdmin) {
		return nil, apperrors.ErrJobCreateForbidden
	}

	job := &models.JobOffer{
		UserID:               actor.ID,
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		Category:             req.Category,
		JobType:              req.JobType,
		WorkplaceType:        req.WorkplaceType,
		Location:             req.Location,
		SalaryMin:            req.SalaryMin,
		SalaryMax:            req.SalaryMax,
		SalaryPeriod:         req.SalaryPeriod,
		CompanyName:          req.CompanyName,
		CompanyDescription:   req.CompanyDescription,
		CompanyWebsite:       req.CompanyWebsite,
		CompanyEmployeeCount: req.CompanyEmployeeCount,
		IsActive:             true,
	}
	if job.SalaryPeriod == "" {
		job.SalaryPeriod = defaultSalaryPeriod
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
	if err := validateSalaryRange(job.SalaryMin, job.SalaryMax); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.jobRepo.CreateJob(tx, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.attachLogos(tx, job.ID, actor, req.FileIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "job offer created", "job_id", job.ID, "owner_id", actor.ID, "logos", len(req.FileIDs))
	return s.enrich(ctx, db, job, actor.ID)
}

// attachLogos привязывает загруженные файлы как логотипы в порядке их передачи
func (s *jobService) attachLogos(tx *gorm.DB, jobID string, actor dto.Actor, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}

	files, err := s.fileRepo.FindByIDs(tx, fileIDs)
	if err != nil {
		return apperrors.InternalError(err)
	}
	byID := make(map[string]*models.File, len(files))
	for i := range files {
		byID[files[i].ID] = &files[i]
	}

	associations := make([]models.FileAssociation, 0, len(fileIDs))
	for i, id := range fileIDs {
		file, ok := byID[id]
		if !ok {
			return apperrors.ErrFileNotFound.WithDetails(map[string]string{"file_id": id})
		}
		if file.UploaderID != actor.ID && !auth.IsAdmin(actor.Role) {
			return apperrors.ErrFileForbidden.WithDetails(map[string]string{"file_id": id})
		}
		associations = append(associations, models.FileAssociation{
			FileID:     id,
			EntityType: models.EntityTypeJobOffer,
			EntityID:   jobID,
			Order:      i,
			Category:   models.FileCategoryLogo,
		})
	}

	if err := s.fileRepo.CreateAssociations(tx, associations); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *jobService) ListOffers(ctx context.Context, db *gorm.DB, viewerID string, query dto.JobListQuery) (*dto.JobListResponse, error) {
	skip, limit := normalizePage(query.Skip, query.Limit)

	jobs, err := s.jobRepo.FindJobsWithFilter(db.WithContext(ctx), repositories.JobFilter{
		Category: models.JobCategory(query.Category),
		JobType:  models.JobType(query.JobType),
		Search:   query.Search,
		Offset:   skip,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	enriched, err := s.enricher.Enrich(db.WithContext(ctx), jobs, viewerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.JobListResponse{Jobs: enriched, Skip: skip, Limit: limit}, nil
}

func (s *jobService) GetOffer(ctx context.Context, db *gorm.DB, jobID, viewerID string) (*dto.JobResponse, error) {
	job, err := s.findJob(db.WithContext(ctx), jobID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, db, job, viewerID)
}

func (s *jobService) UpdateOffer(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.findJob(tx, jobID)
	if err != nil {
		return nil, err
	}
	if !canModifyJob(job, actor) {
		return nil, apperrors.ErrJobModifyForbidden
	}

	updates := jobUpdates(req)
	if len(updates) > 0 {
		salaryMin, salaryMax := job.SalaryMin, job.SalaryMax
		if req.SalaryMin != nil {
			salaryMin = req.SalaryMin
		}
		if req.SalaryMax != nil {
			salaryMax = req.SalaryMax
		}
		if err := validateSalaryRange(salaryMin, salaryMax); err != nil {
			return nil, err
		}

		if err := s.jobRepo.UpdateJob(tx, job.ID, updates); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if job, err = s.findJob(tx, jobID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "job offer updated", "job_id", jobID, "actor_id", actor.ID, "fields", len(updates))
	return s.enrich(ctx, db, job, actor.ID)
}

func (s *jobService) DeleteOffer(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.findJob(tx, jobID)
	if err != nil {
		return err
	}
	if !canModifyJob(job, actor) {
		return apperrors.ErrJobModifyForbidden
	}

	if err := s.jobRepo.DeleteJob(tx, job.ID); err != nil {
		return handleJobError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "job offer deleted", "job_id", jobID, "actor_id", actor.ID)
	return nil
}

// ---------------- Applications & Saves ----------------

// ApplyToJob - откликаться могут Basic и Admin
func (s *jobService) ApplyToJob(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor, req *dto.ApplyJobRequest) (*dto.JobApplicationResponse, error) {
	if !auth.IsOneOf(actor.Role, models.UserRoleBasic, models.UserRoleAdmin) {
		return nil, apperrors.ErrJobApplyForbidden
	}
	if req == nil {
		req = &dto.ApplyJobRequest{}
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.findJob(tx, jobID)
	if err != nil {
		return nil, err
	}

	applied, err := s.jobRepo.ApplicationExists(tx, actor.ID, job.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if applied {
		return nil, apperrors.ErrAlreadyApplied
	}

	applicant, err := s.userRepo.FindByID(tx, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.CVFileID != nil {
		cv, err := s.checkOwnFile(tx, *req.CVFileID, actor)
		if err != nil {
			return nil, err
		}
		if !models.IsCVContentType(cv.ContentType) {
			return nil, apperrors.ErrInvalidCVFormat
		}
	}

	application := &models.JobApplication{
		UserID:      actor.ID,
		JobID:       job.ID,
		FullName:    firstNonEmpty(req.FullName, applicant.FullName(), applicant.Username),
		Email:       firstNonEmpty(req.Email, applicant.Email),
		Phone:       req.Phone,
		CoverLetter: req.CoverLetter,
		CVFileID:    req.CVFileID,
		AppliedAt:   s.now().UTC(),
	}
	if application.Phone == nil {
		application.Phone = applicant.Phone
	}

	if err := s.jobRepo.CreateApplication(tx, application); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "job application submitted", "job_id", job.ID, "user_id", actor.ID)
	s.notifyOwner(ctx, db, job, application)

	return dto.NewJobApplicationResponse(application), nil
}

// notifyOwner - письмо владельцу вакансии; ошибки только логируются
func (s *jobService) notifyOwner(ctx context.Context, db *gorm.DB, job *models.JobOffer, application *models.JobApplication) {
	if s.notifier == nil {
		return
	}

	owner, err := s.userRepo.FindByID(db.WithContext(ctx), job.UserID)
	if err != nil {
		logger.CtxWarn(ctx, "job owner not found for notification", "job_id", job.ID, "error", err.Error())
		return
	}
	counts, err := s.jobRepo.CountApplications(db.WithContext(ctx), []string{job.ID})
	if err != nil {
		logger.CtxWarn(ctx, "failed to count applications for notification", "job_id", job.ID, "error", err.Error())
	}

	if err := s.notifier.NotifyJobApplication(ctx, owner, job, application, counts[job.ID]); err != nil {
		logger.CtxWithError(ctx, "failed to notify job owner", err, "job_id", job.ID, "owner_id", owner.ID)
	}
}

func (s *jobService) ToggleSaveJob(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) (*dto.SaveJobResponse, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.findJob(tx, jobID)
	if err != nil {
		return nil, err
	}

	isSaved := false
	_, err = s.jobRepo.FindSavedJob(tx, actor.ID, job.ID)
	switch {
	case err == nil:
		if err := s.jobRepo.DeleteSavedJob(tx, actor.ID, job.ID); err != nil && !errors.Is(err, repositories.ErrSavedJobNotFound) {
			return nil, apperrors.InternalError(err)
		}
	case errors.Is(err, repositories.ErrSavedJobNotFound):
		saved := &models.SavedJob{UserID: actor.ID, JobID: job.ID, SavedAt: s.now().UTC()}
		if err := s.jobRepo.CreateSavedJob(tx, saved); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				// Параллельный запрос уже сохранил вакансию: итоговое состояние - сохранена.
				logger.CtxDebug(ctx, "job save lost race, already saved", "job_id", job.ID, "user_id", actor.ID)
				return &dto.SaveJobResponse{JobID: job.ID, IsSaved: true}, nil
			}
			return nil, apperrors.InternalError(err)
		}
		isSaved = true
	default:
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxDebug(ctx, "job save toggled", "job_id", job.ID, "user_id", actor.ID, "is_saved", isSaved)
	return &dto.SaveJobResponse{JobID: job.ID, IsSaved: isSaved}, nil
}

func (s *jobService) GetMySavedJobs(ctx context.Context, db *gorm.DB, actor dto.Actor) ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindSavedJobs(db.WithContext(ctx), actor.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.enrichAll(ctx, db, jobs, actor.ID)
}

func (s *jobService) GetMyApplications(ctx context.Context, db *gorm.DB, actor dto.Actor) ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindAppliedJobs(db.WithContext(ctx), actor.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.enrichAll(ctx, db, jobs, actor.ID)
}

func (s *jobService) GetJobApplications(ctx context.Context, db *gorm.DB, jobID string, actor dto.Actor) ([]*dto.JobApplicationResponse, error) {
	job, err := s.findJob(db.WithContext(ctx), jobID)
	if err != nil {
		return nil, err
	}
	if !canModifyJob(job, actor) {
		return nil, apperrors.ErrApplicationsViewForbidden
	}

	applications, err := s.jobRepo.FindApplicationsByJob(db.WithContext(ctx), job.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]*dto.JobApplicationResponse, 0, len(applications))
	for i := range applications {
		result = append(result, dto.NewJobApplicationResponse(&applications[i]))
	}
	return result, nil
}

// ---------------- Helpers ----------------

func (s *jobService) findJob(db *gorm.DB, jobID string) (*models.JobOffer, error) {
	job, err := s.jobRepo.FindJobByID(db, jobID)
	if err != nil {
		return nil, handleJobError(err)
	}
	return job, nil
}

func (s *jobService) checkOwnFile(tx *gorm.DB, fileID string, actor dto.Actor) (*models.File, error) {
	file, err := s.fileRepo.FindByID(tx, fileID)
	if err != nil {
		if errors.Is(err, repositories.ErrFileNotFound) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if file.UploaderID != actor.ID && !auth.IsAdmin(actor.Role) {
		return nil, apperrors.ErrFileForbidden
	}
	return file, nil
}

func (s *jobService) enrich(ctx context.Context, db *gorm.DB, job *models.JobOffer, viewerID string) (*dto.JobResponse, error) {
	resp, err := s.enricher.EnrichOne(db.WithContext(ctx), job, viewerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *jobService) enrichAll(ctx context.Context, db *gorm.DB, jobs []models.JobOffer, viewerID string) ([]*dto.JobResponse, error) {
	resp, err := s.enricher.Enrich(db.WithContext(ctx), jobs, viewerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func canModifyJob(job *models.JobOffer, actor dto.Actor) bool {
	return auth.IsAdmin(actor.Role) || job.UserID == actor.ID
}

func handleJobError(err error) error {
	if errors.Is(err, repositories.ErrJobNotFound) {
		return apperrors.ErrJobNotFound
	}
	return apperrors.InternalError(err)
}

// jobUpdates собирает только присланные поля
func jobUpdates(req *dto.UpdateJobRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req == nil {
		return updates
	}

	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.JobType != nil {
		updates["job_type"] = *req.JobType
	}
	if req.WorkplaceType != nil {
		updates["workplace_type"] = *req.WorkplaceType
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.SalaryMin != nil {
		updates["salary_min"] = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		updates["salary_max"] = *req.SalaryMax
	}
	if req.SalaryPeriod != nil {
		updates["salary_period"] = *req.SalaryPeriod
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.CompanyDescription != nil {
		updates["company_description"] = *req.CompanyDescription
	}
	if req.CompanyWebsite != nil {
		updates["company_website"] = *req.CompanyWebsite
	}
	if req.CompanyEmployeeCount != nil {
		updates["company_employee_count"] = *req.CompanyEmployeeCount
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	return updates
}

func validateSalaryRange(salaryMin, salaryMax *float64) error {
	if salaryMin != nil && salaryMax != nil && *salaryMin > *salaryMax {
		return apperrors.ValidationError(map[string]string{"salary_max": "Must be greater than or equal to salary_min"})
	}
	return nil
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultJobPageSize
	}
	if limit > maxJobPageSize {
		limit = maxJobPageSize
	}
	return skip, limit
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
