package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/models"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
)

// unknownName substitutes missing display names in notification text; a
// failed lookup must never fail an upload.
const unknownName = "okänd"

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus, changedBy string, feedback *string) error
	Delete(ctx context.Context, id int64) error
}

type documentFileStorage interface {
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string)
}

type uploadNotifier interface {
	RecordUploadNotification(ctx context.Context, studentName, courseName, moduleName, activityTitle, fileName string, documentID int64) error
	DeleteByDocumentID(ctx context.Context, documentID int64) error
}

type nameDirectory interface {
	UserFullName(ctx context.Context, id string) (string, error)
	CourseName(ctx context.Context, id int64) (string, error)
	ModuleName(ctx context.Context, id int64) (string, error)
	ActivityTitle(ctx context.Context, id int64) (string, error)
}

// DocumentUpload carries the binary half of an upload request.
type DocumentUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// DocumentDownload bundles an open file with its suggested download name and
// content type.
type DocumentDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	SizeBytes   int64
}

// DocumentServiceConfig holds validation parameters.
type DocumentServiceConfig struct {
	MaxFileSize int64
}

// DocumentService orchestrates the document lifecycle: binary storage,
// metadata persistence, the status workflow and the notification side
// effects of submissions.
type DocumentService struct {
	repo      documentStore
	storage   documentFileStorage
	notifier  uploadNotifier
	directory nameDirectory
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentServiceConfig
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo documentStore, storage documentFileStorage, notifier uploadNotifier, directory nameDirectory, validate *validator.Validate, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 * 1024 * 1024
	}
	return &DocumentService{
		repo:      repo,
		storage:   storage,
		notifier:  notifier,
		directory: directory,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Upload persists the binary, then the metadata row, then (for submissions
// tied to an activity) records a teacher notification. A storage failure
// aborts the whole operation; a metadata failure triggers a compensating
// blob delete; a notification failure is logged but never fails the upload.
func (s *DocumentService) Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload DocumentUpload, uploaderID string) (*models.Document, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	relPath, err := s.storage.Save(ctx, upload.Content, upload.Filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist document file")
	}

	doc := &models.Document{
		DisplayName:      strings.TrimSpace(meta.DisplayName),
		FileName:         relPath,
		Description:      meta.Description,
		UploadedByUserID: uploaderID,
		CourseID:         meta.CourseID,
		ModuleID:         meta.ModuleID,
		ActivityID:       meta.ActivityID,
		StudentID:        meta.StudentID,
		IsSubmission:     meta.IsSubmission,
		Status:           models.DocumentStatusPending,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// Keep the invariant that no metadata row points at a missing blob;
		// the reverse (orphan blob) is what the compensating delete prevents.
		s.storage.Delete(relPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document metadata")
	}

	if doc.IsSubmission && doc.ActivityID != nil {
		s.notifySubmission(ctx, doc)
	}
	return doc, nil
}

// Get returns one document's metadata.
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// List returns documents matching the association filter, most recent first.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Download resolves the metadata and opens the stored binary. The suggested
// filename is the sanitized display name carrying the stored file's
// extension; the content type is derived from that extension.
func (s *DocumentService) Download(ctx context.Context, id int64) (*DocumentDownload, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.storage.Open(doc.FileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Metadata exists but the blob is gone; a different inconsistency
			// than a document that never existed.
			s.logger.Error("document file missing from storage",
				zap.Int64("document_id", doc.ID), zap.String("file_name", doc.FileName))
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat document file")
	}
	filename := downloadFilename(doc.DisplayName, doc.FileName)
	return &DocumentDownload{
		File:        file,
		Filename:    filename,
		ContentType: contentTypeFor(filename),
		SizeBytes:   info.Size(),
	}, nil
}

// Delete removes the binary, the related notifications and the metadata row.
// A storage-delete failure is logged inside the adapter and never blocks the
// rest of the cleanup.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.storage.Delete(doc.FileName)
	if err := s.notifier.DeleteByDocumentID(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document metadata")
	}
	return nil
}

// SetStatus persists a new review status together with who changed it and
// optional feedback. Any status can follow any other.
func (s *DocumentService) SetStatus(ctx context.Context, id int64, req dto.SetDocumentStatusRequest, changedBy string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.DocumentStatus(req.Status)
	if !models.ValidDocumentStatus(status) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid status value")
	}
	if err := s.repo.UpdateStatus(ctx, id, status, changedBy, req.Feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document status")
	}
	return nil
}

func (s *DocumentService) notifySubmission(ctx context.Context, doc *models.Document) {
	studentName := unknownName
	if doc.StudentID != nil {
		studentName = s.resolveName(func() (string, error) { return s.directory.UserFullName(ctx, *doc.StudentID) })
	} else if doc.UploadedByUserID != "" {
		studentName = s.resolveName(func() (string, error) { return s.directory.UserFullName(ctx, doc.UploadedByUserID) })
	}
	courseName := unknownName
	if doc.CourseID != nil {
		courseName = s.resolveName(func() (string, error) { return s.directory.CourseName(ctx, *doc.CourseID) })
	}
	moduleName := unknownName
	if doc.ModuleID != nil {
		moduleName = s.resolveName(func() (string, error) { return s.directory.ModuleName(ctx, *doc.ModuleID) })
	}
	activityTitle := s.resolveName(func() (string, error) { return s.directory.ActivityTitle(ctx, *doc.ActivityID) })

	err := s.notifier.RecordUploadNotification(ctx, studentName, courseName, moduleName, activityTitle, doc.DisplayName, doc.ID)
	if err != nil {
		s.logger.Warn("failed to record upload notification",
			zap.Int64("document_id", doc.ID), zap.Error(err))
	}
}

func (s *DocumentService) resolveName(lookup func() (string, error)) string {
	name, err := lookup()
	if err != nil || strings.TrimSpace(name) == "" {
		return unknownName
	}
	return name
}

func downloadFilename(displayName, storedPath string) string {
	base := sanitizeDisplayName(strings.TrimSuffix(displayName, filepath.Ext(displayName)))
	if base == "" {
		base = "document"
	}
	return base + strings.ToLower(filepath.Ext(storedPath))
}

func sanitizeDisplayName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimSpace(strings.Trim(b.String(), "_"))
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
