package models

import (
	"fmt"
	"time"
)

// NotificationKind tags the structured payload variant of a notification.
type NotificationKind string

const (
	NotificationKindUpload  NotificationKind = "UPLOAD"
	NotificationKindContact NotificationKind = "CONTACT"
)

// NotificationPayload is the structured event behind a notification. Exactly
// one variant applies, selected by Kind. The rendered Message string remains
// the display contract; the payload carries the same facts without parsing.
type NotificationPayload struct {
	Kind NotificationKind `json:"kind"`

	// Upload variant.
	DocumentID    int64  `json:"document_id,omitempty"`
	StudentName   string `json:"student_name,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	CourseName    string `json:"course_name,omitempty"`
	ModuleName    string `json:"module_name,omitempty"`
	ActivityTitle string `json:"activity_title,omitempty"`

	// Contact variant.
	ContactMessageID string `json:"contact_message_id,omitempty"`
	FromName         string `json:"from_name,omitempty"`
	Subject          string `json:"subject,omitempty"`
}

// Render produces the legacy display string, including the trailing |<id>
// reference the dashboard historically parsed.
func (p NotificationPayload) Render() string {
	switch p.Kind {
	case NotificationKindUpload:
		return fmt.Sprintf("%s laddade upp '%s' i %s > %s > %s|%d",
			p.StudentName, p.FileName, p.CourseName, p.ModuleName, p.ActivityTitle, p.DocumentID)
	case NotificationKindContact:
		return fmt.Sprintf("kontaktmeddelande från %s: %s|%s", p.FromName, p.Subject, p.ContactMessageID)
	}
	return ""
}

// NotificationItem is one entry of the blob-persisted notification list.
// The list is stored most-recent-first; consumers rely on position, not on
// sorting by Timestamp.
type NotificationItem struct {
	ID             string               `json:"id"`
	Message        string               `json:"message"`
	Payload        *NotificationPayload `json:"payload,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
	ReadBy         []string             `json:"read_by"`
	TargetTeachers []string             `json:"target_teachers"`
}

// ReadByUser reports whether the given user has marked the item read.
func (n NotificationItem) ReadByUser(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// VisibleTo reports whether the item targets the given user. An empty target
// set means visible to all teachers.
func (n NotificationItem) VisibleTo(userID string) bool {
	if len(n.TargetTeachers) == 0 {
		return true
	}
	for _, id := range n.TargetTeachers {
		if id == userID {
			return true
		}
	}
	return false
}

// ReferencesDocument reports whether the item refers to the given document.
// Items with a structured payload match on the stored id; older items are
// matched on the exact |<id> message suffix, never on a substring elsewhere.
func (n NotificationItem) ReferencesDocument(documentID int64) bool {
	if n.Payload != nil {
		return n.Payload.Kind == NotificationKindUpload && n.Payload.DocumentID == documentID
	}
	suffix := fmt.Sprintf("|%d", documentID)
	return len(n.Message) >= len(suffix) && n.Message[len(n.Message)-len(suffix):] == suffix
}
