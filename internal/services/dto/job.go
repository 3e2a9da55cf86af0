package dto

import (
	"time"

	"campus_backend/internal/models"
)

// --- Job Requests ---

type CreateJobRequest struct {
	Title                string              `json:"title" validate:"required,min=3,max=255"`
	Description          string              `json:"description" validate:"required"`
	Category             models.JobCategory  `json:"category" validate:"required,is-job-category"`
	JobType              models.JobType      `json:"job_type" validate:"required,is-job-type"`
	WorkplaceType        models.JobWorkplace `json:"workplace_type" validate:"required,is-workplace-type"`
	Location             string              `json:"location" validate:"required,max=100"`
	SalaryMin            *float64            `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax            *float64            `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryPeriod         string              `json:"salary_period,omitempty" validate:"omitempty,oneof=hour month year"`
	CompanyName          string              `json:"company_name" validate:"required,max=100"`
	CompanyDescription   *string             `json:"company_description,omitempty"`
	CompanyWebsite       *string             `json:"company_website,omitempty" validate:"omitempty,url"`
	CompanyEmployeeCount *string             `json:"company_employee_count,omitempty" validate:"omitempty,max=50"`
	IsActive             *bool               `json:"is_active,omitempty"`
	FileIDs              []string            `json:"file_ids,omitempty" validate:"omitempty,max=10"`
}

// UpdateJobRequest - частичное обновление: nil поля не трогаются
type UpdateJobRequest struct {
	Title                *string              `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description          *string              `json:"description,omitempty"`
	Category             *models.JobCategory  `json:"category,omitempty" validate:"omitempty,is-job-category"`
	JobType              *models.JobType      `json:"job_type,omitempty" validate:"omitempty,is-job-type"`
	WorkplaceType        *models.JobWorkplace `json:"workplace_type,omitempty" validate:"omitempty,is-workplace-type"`
	Location             *string              `json:"location,omitempty" validate:"omitempty,max=100"`
	SalaryMin            *float64             `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax            *float64             `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryPeriod         *string              `json:"salary_period,omitempty" validate:"omitempty,oneof=hour month year"`
	CompanyName          *string              `json:"company_name,omitempty" validate:"omitempty,max=100"`
	CompanyDescription   *string              `json:"company_description,omitempty"`
	CompanyWebsite       *string              `json:"company_website,omitempty" validate:"omitempty,url"`
	CompanyEmployeeCount *string              `json:"company_employee_count,omitempty" validate:"omitempty,max=50"`
	IsActive             *bool                `json:"is_active,omitempty"`
}

// ApplyJobRequest - снимок контактов; пустые поля берутся из профиля пользователя
type ApplyJobRequest struct {
	FullName    string  `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Email       string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CoverLetter *string `json:"cover_letter,omitempty" validate:"omitempty,max=5000"`
	CVFileID    *string `json:"cv_file_id,omitempty"`
}

type JobListQuery struct {
	Category string `form:"category" validate:"omitempty,is-job-category"`
	JobType  string `form:"job_type" validate:"omitempty,is-job-type"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Skip     int    `form:"skip" validate:"min=0"`
	Limit    int    `form:"limit" validate:"min=0,max=100"`
}

// --- Job Responses ---

// JobResponse - вакансия с полями, вычисленными для текущего зрителя
type JobResponse struct {
	ID                   string              `json:"id"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Category             models.JobCategory  `json:"category"`
	JobType              models.JobType      `json:"job_type"`
	WorkplaceType        models.JobWorkplace `json:"workplace_type"`
	Location             string              `json:"location"`
	SalaryMin            *float64            `json:"salary_min,omitempty"`
	SalaryMax            *float64            `json:"salary_max,omitempty"`
	SalaryPeriod         string              `json:"salary_period"`
	CompanyName          string              `json:"company_name"`
	CompanyDescription   *string             `json:"company_description,omitempty"`
	CompanyWebsite       *string             `json:"company_website,omitempty"`
	CompanyEmployeeCount *string             `json:"company_employee_count,omitempty"`
	IsActive             bool                `json:"is_active"`
	UserID               string              `json:"user_id"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`

	IsSaved          bool    `json:"is_saved"`
	IsApplied        bool    `json:"is_applied"`
	ApplicationCount int64   `json:"application_count"`
	LogoURL          *string `json:"logo_url"`
}

type JobListResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

type SaveJobResponse struct {
	JobID   string `json:"job_id"`
	IsSaved bool   `json:"is_saved"`
}

type JobApplicationResponse struct {
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	CoverLetter *string   `json:"cover_letter,omitempty"`
	CVFileID    *string   `json:"cv_file_id,omitempty"`
	CVURL       *string   `json:"cv_url,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
}

func NewJobApplicationResponse(a *models.JobApplication) *JobApplicationResponse {
	resp := &JobApplicationResponse{
		UserID:      a.UserID,
		JobID:       a.JobID,
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		CoverLetter: a.CoverLetter,
		CVFileID:    a.CVFileID,
		AppliedAt:   a.AppliedAt,
	}
	if a.CVFileID != nil {
		url := PublicFileURL(*a.CVFileID)
		resp.CVURL = &url
	}
	return resp
}
