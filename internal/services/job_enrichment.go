package services

import (
	"gorm.io/gorm"

	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services/dto"
)

// JobEnricher строит JobResponse для конкретного зрителя.
// Все вычисляемые поля читаются в момент вызова пакетными запросами,
// по одному на поле, независимо от числа вакансий.
type JobEnricher struct {
	jobRepo  repositories.JobRepository
	fileRepo repositories.FileRepository
}

func NewJobEnricher(jobRepo repositories.JobRepository, fileRepo repositories.FileRepository) *JobEnricher {
	return &JobEnricher{jobRepo: jobRepo, fileRepo: fileRepo}
}

// Enrich - viewerID пустой для анонимного зрителя: is_saved и is_applied тогда false
func (e *JobEnricher) Enrich(db *gorm.DB, jobs []models.JobOffer, viewerID string) ([]*dto.JobResponse, error) {
	result := make([]*dto.JobResponse, 0, len(jobs))
	if len(jobs) == 0 {
		return result, nil
	}

	ids := make([]string, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}

	counts, err := e.jobRepo.CountApplications(db, ids)
	if err != nil {
		return nil, err
	}
	logos, err := e.fileRepo.FirstAssociations(db, models.EntityTypeJobOffer, ids)
	if err != nil {
		return nil, err
	}

	saved := map[string]bool{}
	applied := map[string]bool{}
	if viewerID != "" {
		if saved, err = e.jobRepo.SavedJobIDs(db, viewerID, ids); err != nil {
			return nil, err
		}
		if applied, err = e.jobRepo.AppliedJobIDs(db, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for i := range jobs {
		job := &jobs[i]
		resp := buildJobResponse(job)
		resp.ApplicationCount = counts[job.ID]
		resp.IsSaved = saved[job.ID]
		resp.IsApplied = applied[job.ID]
		if logo, ok := logos[job.ID]; ok {
			url := dto.PublicFileURL(logo.FileID)
			resp.LogoURL = &url
		}
		result = append(result, resp)
	}
	return result, nil
}

// EnrichOne - то же для одной вакансии
func (e *JobEnricher) EnrichOne(db *gorm.DB, job *models.JobOffer, viewerID string) (*dto.JobResponse, error) {
	enriched, err := e.Enrich(db, []models.JobOffer{*job}, viewerID)
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

func buildJobResponse(job *models.JobOffer) *dto.JobResponse {
	return &dto.JobResponse{
		ID:                   job.ID,
		Title:                job.Title,
		Description:          job.Description,
		Category:             job.Category,
		JobType:              job.JobType,
		WorkplaceType:        job.WorkplaceType,
		Location:             job.Location,
		SalaryMin:            job.SalaryMin,
		SalaryMax:            job.SalaryMax,
		SalaryPeriod:         job.SalaryPeriod,
		CompanyName:          job.CompanyName,
		CompanyDescription:   job.CompanyDescription,
		CompanyWebsite:       job.CompanyWebsite,
		CompanyEmployeeCount: job.CompanyEmployeeCount,
		IsActive:             job.IsActive,
		UserID:               job.UserID,
		CreatedAt:            job.CreatedAt,
		UpdatedAt:            job.UpdatedAt,
	}
}
