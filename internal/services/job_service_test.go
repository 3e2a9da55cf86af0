package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus_backend/internal/email"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/testutil"
	"campus_backend/pkg/apperrors"
)

type sentTemplate struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

// capturingProvider запоминает отправленные письма
type capturingProvider struct {
	mu   sync.Mutex
	sent []sentTemplate
	err  error
}

func (p *capturingProvider) Send(ctx context.Context, e *email.Email) error {
	return p.SendTemplate(ctx, e.To, e.Subject, "", nil)
}

func (p *capturingProvider) SendTemplate(_ context.Context, to []string, subject, templateName string, data email.TemplateData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentTemplate{To: to, Subject: subject, Template: templateName, Data: data})
	return p.err
}

func (p *capturingProvider) Sent() []sentTemplate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentTemplate(nil), p.sent...)
}

type jobFixture struct {
	db       *gorm.DB
	svc      services.JobService
	mailer   *capturingProvider
	owner    *models.User
	basic    *models.User
	admin    *models.User
	stranger *models.User
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	mailer := &capturingProvider{}
	svc := services.NewJobService(
		repositories.NewJobRepository(),
		repositories.NewFileRepository(),
		repositories.NewUserRepository(),
		services.NewNotificationService(mailer),
	)
	return &jobFixture{
		db:       db,
		svc:      svc,
		mailer:   mailer,
		owner:    testutil.CreateUser(t, db, models.UserRoleRecruiter),
		basic:    testutil.CreateUser(t, db, models.UserRoleBasic),
		admin:    testutil.CreateUser(t, db, models.UserRoleAdmin),
		stranger: testutil.CreateUser(t, db, models.UserRoleRecruiter),
	}
}

func createJobRequest(title string) *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		Title:         title,
		Description:   "Build and run our APIs",
		Category:      models.JobCategoryTechnology,
		JobType:       models.JobTypeFullTime,
		WorkplaceType: models.JobWorkplaceRemote,
		Location:      "Almaty",
		CompanyName:   "Acme",
	}
}

func TestJobApplicationScenario(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()

	job, err := f.svc.CreateOffer(ctx, f.db, actorOf(f.owner), createJobRequest("Backend Dev"))
	require.NoError(t, err)
	assert.True(t, job.IsActive)
	assert.Equal(t, "year", job.SalaryPeriod)
	assert.Zero(t, job.ApplicationCount)
	assert.Nil(t, job.LogoURL)

	app, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{
		FullName: "Test User",
		Email:    "test@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Test User", app.FullName)
	assert.Equal(t, "test@example.com", app.Email)

	viewed, err := f.svc.GetOffer(ctx, f.db, job.ID, f.basic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed.ApplicationCount)
	assert.True(t, viewed.IsApplied)
	assert.False(t, viewed.IsSaved)

	anonymous, err := f.svc.GetOffer(ctx, f.db, job.ID, "")
	require.NoError(t, err)
	assert.False(t, anonymous.IsApplied)
	assert.Equal(t, int64(1), anonymous.ApplicationCount)

	_, err = f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	mine, err := f.svc.GetMyApplications(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, job.ID, mine[0].ID)
	assert.True(t, mine[0].IsApplied)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{f.owner.Email}, sent[0].To)
	assert.Equal(t, email.TemplateJobApplication, sent[0].Template)
	assert.Equal(t, "Test User", sent[0].Data["ApplicantName"])
	assert.Equal(t, int64(1), sent[0].Data["ApplicationCount"])
}

func TestApplyUsesProfileDefaults(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Data Analyst", models.JobCategoryFinance, true)

	app, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), nil)
	require.NoError(t, err)
	assert.Equal(t, f.basic.FullName(), app.FullName)
	assert.Equal(t, f.basic.Email, app.Email)
}

func TestApplyRoles(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Designer", models.JobCategoryDesign, true)
	moderator := testutil.CreateUser(t, f.db, models.UserRoleModerator)

	_, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.admin), &dto.ApplyJobRequest{})
	assert.NoError(t, err)

	_, err = f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.stranger), &dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrJobApplyForbidden)

	_, err = f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(moderator), &dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrJobApplyForbidden)

	_, err = f.svc.ApplyToJob(ctx, f.db, "missing", actorOf(f.basic), &dto.ApplyJobRequest{})
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestApplySucceedsWhenNotificationFails(t *testing.T) {
	f := newJobFixture(t)
	f.mailer.err = errors.New("smtp down")
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Support", models.JobCategoryCustomerService, true)

	_, err := f.svc.ApplyToJob(context.Background(), f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	require.NoError(t, err)
	assert.Len(t, f.mailer.Sent(), 1)
}

func TestApplyWithCV(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Intern", models.JobCategoryEngineering, true)
	ownCV := testutil.CreateFileWithType(t, f.db, f.basic.ID, "cv.pdf", models.ContentTypePDF)
	foreignCV := testutil.CreateFileWithType(t, f.db, f.stranger.ID, "cv.pdf", models.ContentTypePDF)
	photo := testutil.CreateFile(t, f.db, f.basic.ID)

	_, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{CVFileID: &foreignCV.ID})
	assert.ErrorIs(t, err, apperrors.ErrFileForbidden)

	_, err = f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{CVFileID: &photo.ID})
	require.ErrorIs(t, err, apperrors.ErrInvalidCVFormat)
	assert.Equal(t, "Invalid file format", err.(*apperrors.AppError).Message)

	var count int64
	require.NoError(t, f.db.Model(&models.JobApplication{}).Where("job_id = ?", job.ID).Count(&count).Error)
	assert.Zero(t, count)

	app, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{CVFileID: &ownCV.ID})
	require.NoError(t, err)
	require.NotNil(t, app.CVURL)
	assert.Equal(t, dto.PublicFileURL(ownCV.ID), *app.CVURL)
}

func TestToggleSaveJob(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Marketer", models.JobCategoryMarketing, true)

	saved, err := f.svc.ToggleSaveJob(ctx, f.db, job.ID, actorOf(f.basic))
	require.NoError(t, err)
	assert.True(t, saved.IsSaved)

	list, err := f.svc.GetMySavedJobs(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, job.ID, list[0].ID)
	assert.True(t, list[0].IsSaved)

	unsaved, err := f.svc.ToggleSaveJob(ctx, f.db, job.ID, actorOf(f.basic))
	require.NoError(t, err)
	assert.False(t, unsaved.IsSaved)

	list, err = f.svc.GetMySavedJobs(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ToggleSaveJob(ctx, f.db, "missing", actorOf(f.basic))
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestCreateOfferPermissions(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOffer(ctx, f.db, actorOf(f.basic), createJobRequest("Nope"))
	assert.ErrorIs(t, err, apperrors.ErrJobCreateForbidden)

	_, err = f.svc.CreateOffer(ctx, f.db, actorOf(f.admin), createJobRequest("Admin job"))
	assert.NoError(t, err)

	req := createJobRequest("Bad salary")
	low, high := 5000.0, 1000.0
	req.SalaryMin, req.SalaryMax = &low, &high
	_, err = f.svc.CreateOffer(ctx, f.db, actorOf(f.owner), req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestCreateOfferAttachesLogo(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	logo := testutil.CreateFile(t, f.db, f.owner.ID)
	second := testutil.CreateFile(t, f.db, f.owner.ID)
	foreign := testutil.CreateFile(t, f.db, f.stranger.ID)

	req := createJobRequest("With logo")
	req.FileIDs = []string{logo.ID, second.ID}
	job, err := f.svc.CreateOffer(ctx, f.db, actorOf(f.owner), req)
	require.NoError(t, err)
	require.NotNil(t, job.LogoURL)
	assert.Equal(t, dto.PublicFileURL(logo.ID), *job.LogoURL)

	list, err := f.svc.ListOffers(ctx, f.db, "", dto.JobListQuery{Search: "with logo"})
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	require.NotNil(t, list.Jobs[0].LogoURL)
	assert.Equal(t, dto.PublicFileURL(logo.ID), *list.Jobs[0].LogoURL)

	req = createJobRequest("Stolen logo")
	req.FileIDs = []string{foreign.ID}
	_, err = f.svc.CreateOffer(ctx, f.db, actorOf(f.owner), req)
	assert.ErrorIs(t, err, apperrors.ErrFileForbidden)

	req = createJobRequest("Missing logo")
	req.FileIDs = []string{"does-not-exist"}
	_, err = f.svc.CreateOffer(ctx, f.db, actorOf(f.owner), req)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.JobOffer{}).Where("title IN ?", []string{"Stolen logo", "Missing logo"}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateOfferOwnership(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Sales Rep", models.JobCategorySales, true)

	title := "Senior Sales Rep"
	_, err := f.svc.UpdateOffer(ctx, f.db, job.ID, actorOf(f.stranger), &dto.UpdateJobRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrJobModifyForbidden)

	updated, err := f.svc.UpdateOffer(ctx, f.db, job.ID, actorOf(f.owner), &dto.UpdateJobRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, job.Description, updated.Description)
	assert.Equal(t, job.Location, updated.Location)
	assert.Equal(t, job.Category, updated.Category)

	inactive := false
	updated, err = f.svc.UpdateOffer(ctx, f.db, job.ID, actorOf(f.admin), &dto.UpdateJobRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, title, updated.Title)

	_, err = f.svc.UpdateOffer(ctx, f.db, "missing", actorOf(f.admin), &dto.UpdateJobRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestListOffersExcludesInactive(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	active := testutil.CreateJob(t, f.db, f.owner.ID, "Go Engineer", models.JobCategoryTechnology, true)
	hidden := testutil.CreateJob(t, f.db, f.owner.ID, "Go Engineer (closed)", models.JobCategoryTechnology, false)

	queries := []dto.JobListQuery{
		{},
		{Category: string(models.JobCategoryTechnology)},
		{Search: "go engineer"},
		{JobType: string(models.JobTypeFullTime), Limit: 100},
	}
	for _, q := range queries {
		list, err := f.svc.ListOffers(ctx, f.db, f.basic.ID, q)
		require.NoError(t, err)

		ids := make([]string, 0, len(list.Jobs))
		for _, j := range list.Jobs {
			ids = append(ids, j.ID)
		}
		assert.Contains(t, ids, active.ID)
		assert.NotContains(t, ids, hidden.ID)
	}

	// неактивная вакансия по-прежнему доступна по id
	got, err := f.svc.GetOffer(ctx, f.db, hidden.ID, "")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListOffersPaging(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	for _, title := range []string{"One", "Two", "Three"} {
		testutil.CreateJob(t, f.db, f.owner.ID, title, models.JobCategoryOther, true)
	}

	page, err := f.svc.ListOffers(ctx, f.db, "", dto.JobListQuery{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page.Jobs, 1)
	assert.Equal(t, 1, page.Skip)
	assert.Equal(t, 1, page.Limit)

	page, err = f.svc.ListOffers(ctx, f.db, "", dto.JobListQuery{Category: string(models.JobCategoryFinance)})
	require.NoError(t, err)
	assert.Empty(t, page.Jobs)
	assert.Equal(t, 20, page.Limit)
}

func TestGetJobApplications(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "QA", models.JobCategoryTechnology, true)

	_, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	require.NoError(t, err)

	apps, err := f.svc.GetJobApplications(ctx, f.db, job.ID, actorOf(f.owner))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, f.basic.ID, apps[0].UserID)

	_, err = f.svc.GetJobApplications(ctx, f.db, job.ID, actorOf(f.admin))
	assert.NoError(t, err)

	_, err = f.svc.GetJobApplications(ctx, f.db, job.ID, actorOf(f.stranger))
	assert.ErrorIs(t, err, apperrors.ErrApplicationsViewForbidden)
}

func TestDeleteOffer(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Teacher", models.JobCategoryEducation, true)

	_, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	require.NoError(t, err)
	_, err = f.svc.ToggleSaveJob(ctx, f.db, job.ID, actorOf(f.basic))
	require.NoError(t, err)

	err = f.svc.DeleteOffer(ctx, f.db, job.ID, actorOf(f.stranger))
	assert.ErrorIs(t, err, apperrors.ErrJobModifyForbidden)

	require.NoError(t, f.svc.DeleteOffer(ctx, f.db, job.ID, actorOf(f.owner)))

	_, err = f.svc.GetOffer(ctx, f.db, job.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	mine, err := f.svc.GetMyApplications(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	assert.Empty(t, mine)

	saved, err := f.svc.GetMySavedJobs(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	assert.Empty(t, saved)

	err = f.svc.DeleteOffer(ctx, f.db, job.ID, actorOf(f.owner))
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

// staleJobRepo скрывает уже существующие отклик и закладку первые N проверок
type staleJobRepo struct {
	repositories.JobRepository
	applicationMisses int
	savedMisses       int
}

func (r *staleJobRepo) ApplicationExists(db *gorm.DB, userID, jobID string) (bool, error) {
	if r.applicationMisses > 0 {
		r.applicationMisses--
		return false, nil
	}
	return r.JobRepository.ApplicationExists(db, userID, jobID)
}

func (r *staleJobRepo) FindSavedJob(db *gorm.DB, userID, jobID string) (*models.SavedJob, error) {
	if r.savedMisses > 0 {
		r.savedMisses--
		return nil, repositories.ErrSavedJobNotFound
	}
	return r.JobRepository.FindSavedJob(db, userID, jobID)
}

func (f *jobFixture) serviceWith(repo repositories.JobRepository) services.JobService {
	return services.NewJobService(
		repo,
		repositories.NewFileRepository(),
		repositories.NewUserRepository(),
		services.NewNotificationService(f.mailer),
	)
}

func TestApplyLostInsertRaceIsAlreadyApplied(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "QA Engineer", models.JobCategoryTechnology, true)

	_, err := f.svc.ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	require.NoError(t, err)

	repo := &staleJobRepo{JobRepository: repositories.NewJobRepository(), applicationMisses: 1}
	_, err = f.serviceWith(repo).ApplyToJob(ctx, f.db, job.ID, actorOf(f.basic), &dto.ApplyJobRequest{})
	require.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
	assert.Zero(t, repo.applicationMisses)

	var count int64
	require.NoError(t, f.db.Model(&models.JobApplication{}).Where("job_id = ?", job.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.mailer.Sent(), 1)
}

func TestToggleSaveLostInsertRaceSettlesSaved(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.owner.ID, "Designer", models.JobCategoryDesign, true)

	saved, err := f.svc.ToggleSaveJob(ctx, f.db, job.ID, actorOf(f.basic))
	require.NoError(t, err)
	require.True(t, saved.IsSaved)

	repo := &staleJobRepo{JobRepository: repositories.NewJobRepository(), savedMisses: 1}
	again, err := f.serviceWith(repo).ToggleSaveJob(ctx, f.db, job.ID, actorOf(f.basic))
	require.NoError(t, err)
	assert.True(t, again.IsSaved)
	assert.Equal(t, job.ID, again.JobID)

	list, err := f.svc.GetMySavedJobs(ctx, f.db, actorOf(f.basic))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
