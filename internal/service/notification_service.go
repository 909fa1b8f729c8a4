package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/models"
	"github.com/lexicon-edu/lms-api/pkg/crypto"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
)

type notificationBlobStore interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Save(ctx context.Context, key string, value interface{}) error
}

type contactEncryptor interface {
	EncryptJSON(value interface{}) (string, error)
	DecryptJSON(token string, dest interface{}) error
}

// NotificationServiceConfig names the blob keys for the two lists.
type NotificationServiceConfig struct {
	NotificationsKey   string
	ContactMessagesKey string
}

// NotificationService maintains the durable teacher-notification list and the
// encrypted contact-message list. Every mutation re-serializes and overwrites
// the whole list under its key.
type NotificationService struct {
	blobs     notificationBlobStore
	encryptor contactEncryptor
	validator *validator.Validate
	logger    *zap.Logger
	cfg       NotificationServiceConfig
}

// NewNotificationService constructs the service.
func NewNotificationService(blobs notificationBlobStore, encryptor contactEncryptor, validate *validator.Validate, logger *zap.Logger, cfg NotificationServiceConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.NotificationsKey == "" {
		cfg.NotificationsKey = "lms:notifications"
	}
	if cfg.ContactMessagesKey == "" {
		cfg.ContactMessagesKey = "lms:contact_messages"
	}
	return &NotificationService{blobs: blobs, encryptor: encryptor, validator: validate, logger: logger, cfg: cfg}
}

// RecordUploadNotification inserts a submission-upload notification at the
// head of the list, visible to all teachers.
func (s *NotificationService) RecordUploadNotification(ctx context.Context, studentName, courseName, moduleName, activityTitle, fileName string, documentID int64) error {
	payload := models.NotificationPayload{
		Kind:          models.NotificationKindUpload,
		DocumentID:    documentID,
		StudentName:   studentName,
		FileName:      fileName,
		CourseName:    courseName,
		ModuleName:    moduleName,
		ActivityTitle: activityTitle,
	}
	return s.insert(ctx, payload)
}

// ListForUser returns the notifications visible to the given user in stored
// order (most recent first), annotated with the viewer's read state.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	items, err := s.loadNotifications(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.NotificationResponse, 0, len(items))
	for _, item := range items {
		if !item.VisibleTo(userID) {
			continue
		}
		result = append(result, dto.NotificationResponse{
			ID:        item.ID,
			Message:   item.Message,
			Timestamp: item.Timestamp,
			IsRead:    item.ReadByUser(userID),
		})
	}
	return result, nil
}

// MarkRead adds the user to the notification's read set. Unknown ids and
// repeated reads are no-ops, not errors.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.updateReadState(ctx, notificationID, userID, true)
}

// MarkUnread removes the user from the notification's read set, with the same
// no-op semantics as MarkRead.
func (s *NotificationService) MarkUnread(ctx context.Context, notificationID, userID string) error {
	return s.updateReadState(ctx, notificationID, userID, false)
}

// Delete removes the notification with the given id. Absent ids are a no-op.
func (s *NotificationService) Delete(ctx context.Context, notificationID string) error {
	items, err := s.loadNotifications(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != notificationID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.saveNotifications(ctx, kept)
}

// DeleteByDocumentID removes every notification referencing the document.
// Matching is on the structured payload or the exact |<id> message suffix;
// the digits occurring elsewhere in a message never match.
func (s *NotificationService) DeleteByDocumentID(ctx context.Context, documentID int64) error {
	items, err := s.loadNotifications(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if !item.ReferencesDocument(documentID) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.saveNotifications(ctx, kept)
}

// SaveContactMessage encrypts and stores a contact-form submission, then
// records the matching teacher notification. Only Name, Email and Subject
// stay in plaintext; the body exists solely inside the encrypted payload.
func (s *NotificationService) SaveContactMessage(ctx context.Context, req dto.ContactMessageRequest) (*models.StoredContactMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact message payload")
	}
	token, err := s.encryptor.EncryptJSON(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encrypt contact message")
	}
	stored := models.StoredContactMessage{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		Name:             req.Name,
		Email:            req.Email,
		Subject:          req.Subject,
		EncryptedPayload: token,
	}

	var messages []models.StoredContactMessage
	if err := s.blobs.Load(ctx, s.cfg.ContactMessagesKey, &messages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact messages")
	}
	messages = append([]models.StoredContactMessage{stored}, messages...)
	if err := s.blobs.Save(ctx, s.cfg.ContactMessagesKey, messages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist contact messages")
	}

	payload := models.NotificationPayload{
		Kind:             models.NotificationKindContact,
		ContactMessageID: stored.ID,
		FromName:         stored.Name,
		Subject:          stored.Subject,
	}
	if err := s.insert(ctx, payload); err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListContactMessages returns the metadata-only projection. It never decrypts
// and never exposes the ciphertext.
func (s *NotificationService) ListContactMessages(ctx context.Context) ([]dto.ContactMessageSummary, error) {
	var messages []models.StoredContactMessage
	if err := s.blobs.Load(ctx, s.cfg.ContactMessagesKey, &messages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact messages")
	}
	result := make([]dto.ContactMessageSummary, 0, len(messages))
	for _, msg := range messages {
		result = append(result, dto.ContactMessageSummary{ID: msg.ID, Timestamp: msg.Timestamp, Subject: msg.Subject})
	}
	return result, nil
}

// DecryptMessage returns the full original submission for the given id, or
// nil when the id is unknown. Decryption failures are logged and surface as
// nil rather than an error, so a corrupt entry cannot break the inbox.
func (s *NotificationService) DecryptMessage(ctx context.Context, id string) (*dto.ContactMessageRequest, error) {
	var messages []models.StoredContactMessage
	if err := s.blobs.Load(ctx, s.cfg.ContactMessagesKey, &messages); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact messages")
	}
	for _, msg := range messages {
		if msg.ID != id {
			continue
		}
		var out dto.ContactMessageRequest
		if err := s.encryptor.DecryptJSON(msg.EncryptedPayload, &out); err != nil {
			if errors.Is(err, crypto.ErrDecrypt) {
				s.logger.Error("failed to decrypt contact message", zap.String("contact_message_id", id), zap.Error(err))
				return nil, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrDecryptionFailed.Code, appErrors.ErrDecryptionFailed.Status, "failed to decrypt contact message")
		}
		return &out, nil
	}
	return nil, nil
}

func (s *NotificationService) insert(ctx context.Context, payload models.NotificationPayload) error {
	items, err := s.loadNotifications(ctx)
	if err != nil {
		return err
	}
	item := models.NotificationItem{
		ID:             uuid.NewString(),
		Message:        payload.Render(),
		Payload:        &payload,
		Timestamp:      time.Now().UTC(),
		ReadBy:         []string{},
		TargetTeachers: []string{},
	}
	items = append([]models.NotificationItem{item}, items...)
	return s.saveNotifications(ctx, items)
}

func (s *NotificationService) updateReadState(ctx context.Context, notificationID, userID string, read bool) error {
	items, err := s.loadNotifications(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range items {
		if items[i].ID != notificationID {
			continue
		}
		if read && !items[i].ReadByUser(userID) {
			items[i].ReadBy = append(items[i].ReadBy, userID)
			changed = true
		} else if !read && items[i].ReadByUser(userID) {
			items[i].ReadBy = removeString(items[i].ReadBy, userID)
			changed = true
		}
		break
	}
	if !changed {
		return nil
	}
	return s.saveNotifications(ctx, items)
}

func (s *NotificationService) loadNotifications(ctx context.Context) ([]models.NotificationItem, error) {
	var items []models.NotificationItem
	if err := s.blobs.Load(ctx, s.cfg.NotificationsKey, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}
	return items, nil
}

func (s *NotificationService) saveNotifications(ctx context.Context, items []models.NotificationItem) error {
	if err := s.blobs.Save(ctx, s.cfg.NotificationsKey, items); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageWrite.Code, appErrors.ErrStorageWrite.Status, "failed to persist notifications")
	}
	return nil
}

func removeString(values []string, target string) []string {
	result := values[:0]
	for _, v := range values {
		if v != target {
			result = append(result, v)
		}
	}
	return result
}
