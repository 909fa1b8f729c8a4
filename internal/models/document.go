package models

import "time"

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusReview   DocumentStatus = "REVIEW"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
)

// ValidDocumentStatus reports whether the value is a member of the status
// enumeration. Transitions themselves are unrestricted: a teacher may move a
// document from any status to any other, including reverting a decision.
func ValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusReview, DocumentStatusApproved, DocumentStatusRejected:
		return true
	}
	return false
}

// Document represents a persisted document metadata row. FileName is the
// storage-relative path assigned at upload time and is never user supplied.
type Document struct {
	ID               int64          `db:"id" json:"id"`
	DisplayName      string         `db:"display_name" json:"display_name"`
	FileName         string         `db:"file_name" json:"file_name"`
	Description      *string        `db:"description" json:"description,omitempty"`
	UploadedAt       time.Time      `db:"uploaded_at" json:"uploaded_at"`
	UploadedByUserID string         `db:"uploaded_by_user_id" json:"uploaded_by_user_id"`
	CourseID         *int64         `db:"course_id" json:"course_id,omitempty"`
	ModuleID         *int64         `db:"module_id" json:"module_id,omitempty"`
	ActivityID       *int64         `db:"activity_id" json:"activity_id,omitempty"`
	StudentID        *string        `db:"student_id" json:"student_id,omitempty"`
	IsSubmission     bool           `db:"is_submission" json:"is_submission"`
	Status           DocumentStatus `db:"status" json:"status"`
	StatusChangedBy  *string        `db:"status_changed_by" json:"status_changed_by,omitempty"`
	StatusFeedback   *string        `db:"status_feedback" json:"status_feedback,omitempty"`
}

// DocumentFilter narrows document listings to one association.
type DocumentFilter struct {
	CourseID   *int64
	ModuleID   *int64
	ActivityID *int64
	StudentID  *string
}
