package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexicon-edu/lms-api/internal/models"
)

// DocumentRepository handles document metadata persistence.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, display_name, file_name, description, uploaded_at, uploaded_by_user_id,
       course_id, module_id, activity_id, student_id, is_submission, status, status_changed_by, status_feedback`

// Create stores metadata for an uploaded document and fills in the generated id.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentStatusPending
	}
	const query = `INSERT INTO documents
	(display_name, file_name, description, uploaded_at, uploaded_by_user_id, course_id, module_id, activity_id, student_id, is_submission, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		doc.DisplayName, doc.FileName, doc.Description, doc.UploadedAt, doc.UploadedByUserID,
		doc.CourseID, doc.ModuleID, doc.ActivityID, doc.StudentID, doc.IsSubmission, doc.Status,
	).Scan(&doc.ID); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID retrieves one document row.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the association filter, most recent first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM documents", documentColumns))
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if filter.ModuleID != nil {
		args = append(args, *filter.ModuleID)
		conditions = append(conditions, fmt.Sprintf("module_id = $%d", len(args)))
	}
	if filter.ActivityID != nil {
		args = append(args, *filter.ActivityID)
		conditions = append(conditions, fmt.Sprintf("activity_id = $%d", len(args)))
	}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY uploaded_at DESC")

	var records []models.Document
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return records, nil
}

// UpdateStatus atomically persists a new status together with who changed it
// and optional feedback.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus, changedBy string, feedback *string) error {
	const query = `UPDATE documents SET status = $2, status_changed_by = $3, status_feedback = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, changedBy, feedback)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the metadata row.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
