package repositories

import (
	"errors"
	"strings"

	"campus_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound         = errors.New("job offer not found")
	ErrApplicationNotFound = errors.New("job application not found")
	ErrSavedJobNotFound    = errors.New("saved job not found")
)

type JobRepository interface {
	// Job offer operations
	CreateJob(db *gorm.DB, job *models.JobOffer) error
	FindJobByID(db *gorm.DB, id string) (*models.JobOffer, error)
	FindJobsWithFilter(db *gorm.DB, filter JobFilter) ([]models.JobOffer, error)
	UpdateJob(db *gorm.DB, id string, updates map[string]interface{}) error
	DeleteJob(db *gorm.DB, id string) error

	// Application operations
	CreateApplication(db *gorm.DB, application *models.JobApplication) error
	ApplicationExists(db *gorm.DB, userID, jobID string) (bool, error)
	FindApplicationsByJob(db *gorm.DB, jobID string) ([]models.JobApplication, error)
	FindAppliedJobs(db *gorm.DB, userID string) ([]models.JobOffer, error)
	HasApplicationWithCV(db *gorm.DB, fileID, jobOwnerID string) (bool, error)

	// Saved job operations
	FindSavedJob(db *gorm.DB, userID, jobID string) (*models.SavedJob, error)
	CreateSavedJob(db *gorm.DB, saved *models.SavedJob) error
	DeleteSavedJob(db *gorm.DB, userID, jobID string) error
	FindSavedJobs(db *gorm.DB, userID string) ([]models.JobOffer, error)

	// Enrichment lookups
	CountApplications(db *gorm.DB, jobIDs []string) (map[string]int64, error)
	SavedJobIDs(db *gorm.DB, userID string, jobIDs []string) (map[string]bool, error)
	AppliedJobIDs(db *gorm.DB, userID string, jobIDs []string) (map[string]bool, error)
}

// likeEscaper экранирует подстановочные символы LIKE для ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type JobFilter struct {
	Category models.JobCategory
	JobType  models.JobType
	Search   string
	Offset   int
	Limit    int
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

// Job offer operations

func (r *JobRepositoryImpl) CreateJob(db *gorm.DB, job *models.JobOffer) error {
	return db.Create(job).Error
}

func (r *JobRepositoryImpl) FindJobByID(db *gorm.DB, id string) (*models.JobOffer, error) {
	var job models.JobOffer
	if err := db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, notFoundOr(err, ErrJobNotFound)
	}
	return &job, nil
}

// FindJobsWithFilter возвращает только активные вакансии, новые сверху
func (r *JobRepositoryImpl) FindJobsWithFilter(db *gorm.DB, filter JobFilter) ([]models.JobOffer, error) {
	query := db.Where("is_active = ?", true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.JobType != "" {
		query = query.Where("job_type = ?", filter.JobType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}

	var jobs []models.JobOffer
	err := query.Order("created_at DESC").Order("id").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) UpdateJob(db *gorm.DB, id string, updates map[string]interface{}) error {
	result := db.Model(&models.JobOffer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// DeleteJob удаляет вакансию вместе с откликами, закладками и привязками файлов.
// Вызывать внутри транзакции.
func (r *JobRepositoryImpl) DeleteJob(db *gorm.DB, id string) error {
	if err := db.Where("job_id = ?", id).Delete(&models.JobApplication{}).Error; err != nil {
		return err
	}
	if err := db.Where("job_id = ?", id).Delete(&models.SavedJob{}).Error; err != nil {
		return err
	}
	if err := db.Where("entity_type = ? AND entity_id = ?", models.EntityTypeJobOffer, id).
		Delete(&models.FileAssociation{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&models.JobOffer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Application operations

func (r *JobRepositoryImpl) CreateApplication(db *gorm.DB, application *models.JobApplication) error {
	return duplicateOr(db.Create(application).Error)
}

func (r *JobRepositoryImpl) ApplicationExists(db *gorm.DB, userID, jobID string) (bool, error) {
	var count int64
	err := db.Model(&models.JobApplication{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	return count > 0, err
}

func (r *JobRepositoryImpl) FindApplicationsByJob(db *gorm.DB, jobID string) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := db.Where("job_id = ?", jobID).Order("applied_at DESC").Find(&applications).Error
	return applications, err
}

func (r *JobRepositoryImpl) FindAppliedJobs(db *gorm.DB, userID string) ([]models.JobOffer, error) {
	var jobs []models.JobOffer
	err := db.Model(&models.JobOffer{}).
		Joins("JOIN job_applications ON job_applications.job_id = job_offers.id").
		Where("job_applications.user_id = ?", userID).
		Order("job_applications.applied_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// HasApplicationWithCV - приложен ли файл как CV к отклику на вакансию владельца jobOwnerID
func (r *JobRepositoryImpl) HasApplicationWithCV(db *gorm.DB, fileID, jobOwnerID string) (bool, error) {
	var count int64
	err := db.Model(&models.JobApplication{}).
		Joins("JOIN job_offers ON job_offers.id = job_applications.job_id").
		Where("job_applications.cv_file_id = ? AND job_offers.user_id = ?", fileID, jobOwnerID).
		Count(&count).Error
	return count > 0, err
}

// Saved job operations

func (r *JobRepositoryImpl) FindSavedJob(db *gorm.DB, userID, jobID string) (*models.SavedJob, error) {
	var saved models.SavedJob
	err := db.Where("user_id = ? AND job_id = ?", userID, jobID).First(&saved).Error
	if err != nil {
		return nil, notFoundOr(err, ErrSavedJobNotFound)
	}
	return &saved, nil
}

func (r *JobRepositoryImpl) CreateSavedJob(db *gorm.DB, saved *models.SavedJob) error {
	return duplicateOr(db.Create(saved).Error)
}

func (r *JobRepositoryImpl) DeleteSavedJob(db *gorm.DB, userID, jobID string) error {
	result := db.Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&models.SavedJob{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) FindSavedJobs(db *gorm.DB, userID string) ([]models.JobOffer, error) {
	var jobs []models.JobOffer
	err := db.Model(&models.JobOffer{}).
		Joins("JOIN saved_jobs ON saved_jobs.job_id = job_offers.id").
		Where("saved_jobs.user_id = ?", userID).
		Order("saved_jobs.saved_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// Enrichment lookups

func (r *JobRepositoryImpl) CountApplications(db *gorm.DB, jobIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		JobID string
		Total int64
	}
	err := db.Model(&models.JobApplication{}).
		Select("job_id, COUNT(*) AS total").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.JobID] = row.Total
	}
	return counts, nil
}

func (r *JobRepositoryImpl) SavedJobIDs(db *gorm.DB, userID string, jobIDs []string) (map[string]bool, error) {
	return jobIDSet(db.Model(&models.SavedJob{}), userID, jobIDs)
}

func (r *JobRepositoryImpl) AppliedJobIDs(db *gorm.DB, userID string, jobIDs []string) (map[string]bool, error) {
	return jobIDSet(db.Model(&models.JobApplication{}), userID, jobIDs)
}

func jobIDSet(query *gorm.DB, userID string, jobIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(jobIDs))
	if userID == "" || len(jobIDs) == 0 {
		return set, nil
	}

	var ids []string
	if err := query.Where("user_id = ? AND job_id IN ?", userID, jobIDs).Pluck("job_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
