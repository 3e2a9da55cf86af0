package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus_backend/internal/imageprocessor"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/storage"
	"campus_backend/internal/testutil"
	"campus_backend/pkg/apperrors"
)

type fileFixture struct {
	db    *gorm.DB
	store storage.Storage
	svc   services.FileService
	jobs  services.JobService
}

func newFileFixture(t *testing.T, maxSize int64) *fileFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	fileRepo := repositories.NewFileRepository()
	jobRepo := repositories.NewJobRepository()
	return &fileFixture{
		db:    db,
		store: store,
		svc: services.NewFileService(fileRepo, jobRepo, store, imageprocessor.NewProcessor(85, 64), services.UploadConfig{
			MaxSize:      maxSize,
			AllowedTypes: []string{"image/png", "image/jpeg", models.ContentTypePDF, models.ContentTypeDOC, models.ContentTypeDOCX},
		}),
		jobs: services.NewJobService(jobRepo, fileRepo, repositories.NewUserRepository(), nil),
	}
}

// multipartFile собирает FileHeader так же, как его получает gin из формы
func multipartFile(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
}

func TestUploadImageIsNormalized(t *testing.T) {
	f := newFileFixture(t, 1<<20)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.UserRoleRecruiter)

	resp, err := f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "logo.png", pngBytes(t, 128, 32)), true)
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, dto.PublicFileURL(resp.ID), resp.URL)
	assert.True(t, resp.IsPublic)

	var meta struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	require.NoError(t, json.Unmarshal(resp.Metadata, &meta))
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 16, meta.Height)

	content, err := f.svc.GetContent(ctx, f.db, resp.ID, nil, 0)
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(content.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	thumb, err := f.svc.GetContent(ctx, f.db, resp.ID, nil, 16)
	require.NoError(t, err)
	img, _, err = image.Decode(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestUploadValidation(t *testing.T) {
	f := newFileFixture(t, 256)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.UserRoleBasic)

	_, err := f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "big.pdf", bytes.Repeat([]byte("a"), 512)), false)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "notes.txt", []byte("plain text notes")), false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	resp, err := f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "cv.pdf", pdfBytes()), false)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, "cv.pdf", resp.Filename)
	assert.Empty(t, resp.Metadata)
}

func TestUploadWordDocuments(t *testing.T) {
	f := newFileFixture(t, 1<<20)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, models.UserRoleBasic)

	docx := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	resp, err := f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "cv.docx", docx), false)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeDOCX, resp.ContentType)

	doc := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0}, 64)...)
	resp, err = f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "cv.doc", doc), false)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeDOC, resp.ContentType)

	_, err = f.svc.Upload(ctx, f.db, actorOf(user), multipartFile(t, "archive.zip", docx), false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
}

func TestPrivateFileAccess(t *testing.T) {
	f := newFileFixture(t, 1<<20)
	ctx := context.Background()
	applicant := testutil.CreateUser(t, f.db, models.UserRoleBasic)
	recruiter := testutil.CreateUser(t, f.db, models.UserRoleRecruiter)
	otherRecruiter := testutil.CreateUser(t, f.db, models.UserRoleRecruiter)
	admin := testutil.CreateUser(t, f.db, models.UserRoleAdmin)

	cv, err := f.svc.Upload(ctx, f.db, actorOf(applicant), multipartFile(t, "cv.pdf", pdfBytes()), false)
	require.NoError(t, err)

	_, err = f.svc.GetContent(ctx, f.db, cv.ID, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	recruiterActor := actorOf(recruiter)
	_, err = f.svc.GetContent(ctx, f.db, cv.ID, &recruiterActor, 0)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	job := testutil.CreateJob(t, f.db, recruiter.ID, "Backend Dev", models.JobCategoryTechnology, true)
	_, err = f.jobs.ApplyToJob(ctx, f.db, job.ID, actorOf(applicant), &dto.ApplyJobRequest{CVFileID: &cv.ID})
	require.NoError(t, err)

	content, err := f.svc.GetContent(ctx, f.db, cv.ID, &recruiterActor, 0)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes(), content.Data)
	assert.Equal(t, "cv.pdf", content.Filename)

	otherActor := actorOf(otherRecruiter)
	_, err = f.svc.GetFile(ctx, f.db, cv.ID, &otherActor)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	for _, u := range []*models.User{applicant, admin} {
		viewer := actorOf(u)
		_, err := f.svc.GetFile(ctx, f.db, cv.ID, &viewer)
		assert.NoError(t, err)
	}
}

func TestDeleteFile(t *testing.T) {
	f := newFileFixture(t, 1<<20)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, models.UserRoleRecruiter)
	other := testutil.CreateUser(t, f.db, models.UserRoleRecruiter)

	logo, err := f.svc.Upload(ctx, f.db, actorOf(owner), multipartFile(t, "logo.png", pngBytes(t, 8, 8)), true)
	require.NoError(t, err)

	req := createJobRequest("With logo")
	req.FileIDs = []string{logo.ID}
	job, err := f.jobs.CreateOffer(ctx, f.db, actorOf(owner), req)
	require.NoError(t, err)
	require.NotNil(t, job.LogoURL)

	err = f.svc.DeleteFile(ctx, f.db, logo.ID, actorOf(other))
	assert.ErrorIs(t, err, apperrors.ErrFileForbidden)

	var record models.File
	require.NoError(t, f.db.First(&record, "id = ?", logo.ID).Error)

	require.NoError(t, f.svc.DeleteFile(ctx, f.db, logo.ID, actorOf(owner)))

	exists, err := f.store.Exists(ctx, record.StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.svc.GetFile(ctx, f.db, logo.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	got, err := f.jobs.GetOffer(ctx, f.db, job.ID, "")
	require.NoError(t, err)
	assert.Nil(t, got.LogoURL)
}
