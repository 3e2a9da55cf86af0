package services

import (
	"context"
	"fmt"

	"campus_backend/internal/email"
	"campus_backend/internal/models"
)

// NotificationService - уведомления пользователей по email
type NotificationService interface {
	NotifyJobApplication(ctx context.Context, owner *models.User, job *models.JobOffer, application *models.JobApplication, applicationCount int64) error
}

type notificationService struct {
	provider email.Provider
}

func NewNotificationService(provider email.Provider) NotificationService {
	return &notificationService{provider: provider}
}

func (s *notificationService) NotifyJobApplication(ctx context.Context, owner *models.User, job *models.JobOffer, application *models.JobApplication, applicationCount int64) error {
	data := email.TemplateData{
		"OwnerName":        firstNonEmpty(owner.FullName(), owner.Username),
		"ApplicantName":    application.FullName,
		"ApplicantEmail":   application.Email,
		"JobTitle":         job.Title,
		"CoverLetter":      "",
		"ApplicationCount": applicationCount,
	}
	if application.CoverLetter != nil {
		data["CoverLetter"] = *application.CoverLetter
	}

	subject := fmt.Sprintf("New application for %s", job.Title)
	return s.provider.SendTemplate(ctx, []string{owner.Email}, subject, email.TemplateJobApplication, data)
}
