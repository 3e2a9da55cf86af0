package models

import "time"

type JobOffer struct {
	BaseModel
	UserID               string       `gorm:"type:varchar(36);not null;index"`
	Title                string       `gorm:"type:varchar(255);not null"`
	Description          string       `gorm:"type:text;not null"`
	Category             JobCategory  `gorm:"type:varchar(50);not null;index"`
	JobType              JobType      `gorm:"type:varchar(50);not null;index"`
	WorkplaceType        JobWorkplace `gorm:"type:varchar(50);not null"`
	Location             string       `gorm:"type:varchar(100);not null"`
	SalaryMin            *float64
	SalaryMax            *float64
	SalaryPeriod         string  `gorm:"type:varchar(20);not null"`
	CompanyName          string  `gorm:"type:varchar(100);not null"`
	CompanyDescription   *string `gorm:"type:text"`
	CompanyWebsite       *string `gorm:"type:varchar(255)"`
	CompanyEmployeeCount *string `gorm:"type:varchar(50)"`
	IsActive             bool    `gorm:"not null;index"`

	Owner *User `gorm:"foreignKey:UserID"`
}

// JobApplication - один отклик на вакансию от пользователя (составной ключ).
// Контакты кандидата сохраняются снимком на момент отклика.
type JobApplication struct {
	UserID      string    `gorm:"type:varchar(36);primaryKey"`
	JobID       string    `gorm:"type:varchar(36);primaryKey;index"`
	FullName    string    `gorm:"type:varchar(200);not null"`
	Email       string    `gorm:"type:varchar(255);not null"`
	Phone       *string   `gorm:"type:varchar(20)"`
	CoverLetter *string   `gorm:"type:text"`
	CVFileID    *string   `gorm:"type:varchar(36)"`
	AppliedAt   time.Time `gorm:"not null"`
}

// SavedJob - закладка; само существование записи и есть состояние.
type SavedJob struct {
	UserID  string    `gorm:"type:varchar(36);primaryKey"`
	JobID   string    `gorm:"type:varchar(36);primaryKey;index"`
	SavedAt time.Time `gorm:"not null"`
}
