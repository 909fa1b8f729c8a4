package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/models"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
)

type documentRepoStub struct {
	docs      map[int64]*models.Document
	nextID    int64
	createErr error
	statusErr error
}

func newDocumentRepoStub() *documentRepoStub {
	return &documentRepoStub{docs: make(map[int64]*models.Document)}
}

func (r *documentRepoStub) Create(ctx context.Context, doc *models.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	doc.ID = r.nextID
	doc.UploadedAt = time.Now()
	copy := *doc
	r.docs[doc.ID] = &copy
	return nil
}

func (r *documentRepoStub) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	if doc, ok := r.docs[id]; ok {
		copy := *doc
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *documentRepoStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	result := make([]models.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		result = append(result, *doc)
	}
	return result, nil
}

func (r *documentRepoStub) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus, changedBy string, feedback *string) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return sql.ErrNoRows
	}
	doc.Status = status
	doc.StatusChangedBy = &changedBy
	doc.StatusFeedback = feedback
	return nil
}

func (r *documentRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := r.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.docs, id)
	return nil
}

type fileStorageStub struct {
	dir     string
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newFileStorageStub(t *testing.T) *fileStorageStub {
	return &fileStorageStub{dir: t.TempDir(), saved: make(map[string][]byte)}
}

func (s *fileStorageStub) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	rel := fmt.Sprintf("2026/01/tok_%s", originalName)
	if err := os.MkdirAll(filepath.Dir(filepath.Join(s.dir, rel)), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, rel), data, 0o600); err != nil {
		return "", err
	}
	s.saved[rel] = data
	return rel, nil
}

func (s *fileStorageStub) Open(relPath string) (*os.File, error) {
	if _, ok := s.saved[relPath]; !ok {
		return nil, fmt.Errorf("open %s: %w", relPath, fs.ErrNotExist)
	}
	return os.Open(filepath.Join(s.dir, relPath))
}

func (s *fileStorageStub) Delete(relPath string) {
	s.deleted = append(s.deleted, relPath)
	delete(s.saved, relPath)
	_ = os.Remove(filepath.Join(s.dir, relPath))
}

type notifierStub struct {
	recorded   []int64
	cascaded   []int64
	recordErr  error
	cascadeErr error
	lastNames  []string
}

func (n *notifierStub) RecordUploadNotification(ctx context.Context, studentName, courseName, moduleName, activityTitle, fileName string, documentID int64) error {
	if n.recordErr != nil {
		return n.recordErr
	}
	n.recorded = append(n.recorded, documentID)
	n.lastNames = []string{studentName, courseName, moduleName, activityTitle, fileName}
	return nil
}

func (n *notifierStub) DeleteByDocumentID(ctx context.Context, documentID int64) error {
	if n.cascadeErr != nil {
		return n.cascadeErr
	}
	n.cascaded = append(n.cascaded, documentID)
	return nil
}

type directoryStub struct {
	users      map[string]string
	courses    map[int64]string
	modules    map[int64]string
	activities map[int64]string
}

func newDirectoryStub() *directoryStub {
	return &directoryStub{
		users:      map[string]string{},
		courses:    map[int64]string{},
		modules:    map[int64]string{},
		activities: map[int64]string{},
	}
}

func (d *directoryStub) UserFullName(ctx context.Context, id string) (string, error) {
	if name, ok := d.users[id]; ok {
		return name, nil
	}
	return "", sql.ErrNoRows
}

func (d *directoryStub) CourseName(ctx context.Context, id int64) (string, error) {
	if name, ok := d.courses[id]; ok {
		return name, nil
	}
	return "", sql.ErrNoRows
}

func (d *directoryStub) ModuleName(ctx context.Context, id int64) (string, error) {
	if name, ok := d.modules[id]; ok {
		return name, nil
	}
	return "", sql.ErrNoRows
}

func (d *directoryStub) ActivityTitle(ctx context.Context, id int64) (string, error) {
	if name, ok := d.activities[id]; ok {
		return name, nil
	}
	return "", sql.ErrNoRows
}

func ptrInt64(v int64) *int64 { return &v }

func ptrString(v string) *string { return &v }

func submissionRequest() dto.UploadDocumentRequest {
	return dto.UploadDocumentRequest{
		DisplayName:  "Slutprojekt",
		CourseID:     ptrInt64(10),
		ModuleID:     ptrInt64(20),
		ActivityID:   ptrInt64(30),
		StudentID:    ptrString("student-1"),
		IsSubmission: true,
	}
}

func TestDocumentUploadSubmissionNotifies(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{}
	directory := newDirectoryStub()
	directory.users["student-1"] = "Anna Svensson"
	directory.courses[10] = "Golang"
	directory.modules[20] = "Modul 3"
	directory.activities[30] = "Slutprojekt"

	svc := NewDocumentService(repo, store, notifier, directory, nil, nil, DocumentServiceConfig{})

	content := bytes.NewReader([]byte("pdf bytes"))
	doc, err := svc.Upload(context.Background(), submissionRequest(), DocumentUpload{
		Filename: "projekt.pdf",
		Size:     int64(content.Len()),
		Content:  content,
	}, "student-1")
	require.NoError(t, err)
	require.NotZero(t, doc.ID)
	require.Equal(t, models.DocumentStatusPending, doc.Status)
	require.Contains(t, store.saved, doc.FileName)

	require.Equal(t, []int64{doc.ID}, notifier.recorded)
	require.Equal(t, []string{"Anna Svensson", "Golang", "Modul 3", "Slutprojekt", "Slutprojekt"}, notifier.lastNames)
}

func TestDocumentUploadNonSubmissionSkipsNotification(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{}
	svc := NewDocumentService(repo, store, notifier, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.IsSubmission = false
	content := bytes.NewReader([]byte("x"))
	_, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)
	require.Empty(t, notifier.recorded)
}

func TestDocumentUploadUnknownNamesFallBack(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{}
	svc := NewDocumentService(repo, store, notifier, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	content := bytes.NewReader([]byte("x"))
	_, err := svc.Upload(context.Background(), submissionRequest(), DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)
	require.Len(t, notifier.lastNames, 5)
	require.Equal(t, "okänd", notifier.lastNames[0])
	require.Equal(t, "okänd", notifier.lastNames[1])
	require.Equal(t, "okänd", notifier.lastNames[2])
	require.Equal(t, "okänd", notifier.lastNames[3])
}

func TestDocumentUploadNotificationFailureTolerated(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{recordErr: errors.New("redis down")}
	svc := NewDocumentService(repo, store, notifier, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	content := bytes.NewReader([]byte("x"))
	doc, err := svc.Upload(context.Background(), submissionRequest(), DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)
	require.NotZero(t, doc.ID)
}

func TestDocumentUploadMetadataFailureCompensates(t *testing.T) {
	repo := newDocumentRepoStub()
	repo.createErr = errors.New("insert failed")
	store := newFileStorageStub(t)
	svc := NewDocumentService(repo, store, &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	content := bytes.NewReader([]byte("x"))
	_, err := svc.Upload(context.Background(), submissionRequest(), DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.Error(t, err)
	require.Len(t, store.deleted, 1)
	require.Empty(t, store.saved)
}

func TestDocumentUploadSizeLimit(t *testing.T) {
	svc := NewDocumentService(newDocumentRepoStub(), newFileStorageStub(t), &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{MaxFileSize: 4})

	content := bytes.NewReader([]byte("too large"))
	_, err := svc.Upload(context.Background(), submissionRequest(), DocumentUpload{Filename: "a.pdf", Size: int64(content.Len()), Content: content}, "u1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentDownloadNaming(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	svc := NewDocumentService(repo, store, &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.DisplayName = "Min Rapport!"
	req.IsSubmission = false
	content := bytes.NewReader([]byte("pdf bytes"))
	doc, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "uppladdning.PDF", Size: int64(content.Len()), Content: content}, "u1")
	require.NoError(t, err)

	result, err := svc.Download(context.Background(), doc.ID)
	require.NoError(t, err)
	defer result.File.Close() //nolint:errcheck

	require.Equal(t, "Min Rapport.pdf", result.Filename)
	require.Equal(t, "application/pdf", result.ContentType)
	require.Equal(t, int64(9), result.SizeBytes)
}

func TestDocumentDownloadMissingBlob(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	svc := NewDocumentService(repo, store, &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.IsSubmission = false
	content := bytes.NewReader([]byte("x"))
	doc, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)

	store.Delete(doc.FileName)

	_, err = svc.Download(context.Background(), doc.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDocumentDeleteCascades(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{}
	svc := NewDocumentService(repo, store, notifier, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.IsSubmission = false
	content := bytes.NewReader([]byte("x"))
	doc, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), doc.ID))
	require.Equal(t, []string{doc.FileName}, store.deleted)
	require.Equal(t, []int64{doc.ID}, notifier.cascaded)
	require.Empty(t, repo.docs)
}

func TestDocumentDeleteNotificationFailurePropagates(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	notifier := &notifierStub{cascadeErr: errors.New("redis down")}
	svc := NewDocumentService(repo, store, notifier, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.IsSubmission = false
	content := bytes.NewReader([]byte("x"))
	doc, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), doc.ID)
	require.Error(t, err)
	// Metadata survives so a retry can finish the cleanup.
	require.Len(t, repo.docs, 1)
}

func TestDocumentSetStatus(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newFileStorageStub(t)
	svc := NewDocumentService(repo, store, &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	req := submissionRequest()
	req.IsSubmission = false
	content := bytes.NewReader([]byte("x"))
	doc, err := svc.Upload(context.Background(), req, DocumentUpload{Filename: "a.pdf", Size: 1, Content: content}, "u1")
	require.NoError(t, err)

	feedback := "Bra jobbat"
	require.NoError(t, svc.SetStatus(context.Background(), doc.ID, dto.SetDocumentStatusRequest{
		Status:   string(models.DocumentStatusApproved),
		Feedback: &feedback,
	}, "teacher-1"))

	updated, err := svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, models.DocumentStatusApproved, updated.Status)
	require.Equal(t, "teacher-1", *updated.StatusChangedBy)
	require.Equal(t, feedback, *updated.StatusFeedback)

	// Any status can follow any other, including back to PENDING.
	require.NoError(t, svc.SetStatus(context.Background(), doc.ID, dto.SetDocumentStatusRequest{
		Status: string(models.DocumentStatusPending),
	}, "teacher-1"))

	err = svc.SetStatus(context.Background(), doc.ID, dto.SetDocumentStatusRequest{Status: "ARCHIVED"}, "teacher-1")
	require.Error(t, err)

	err = svc.SetStatus(context.Background(), 999, dto.SetDocumentStatusRequest{Status: string(models.DocumentStatusReview)}, "teacher-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDocumentGetNotFound(t *testing.T) {
	svc := NewDocumentService(newDocumentRepoStub(), newFileStorageStub(t), &notifierStub{}, newDirectoryStub(), nil, nil, DocumentServiceConfig{})

	_, err := svc.Get(context.Background(), 123)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
