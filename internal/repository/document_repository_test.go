package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-edu/lms-api/internal/models"
)

func newDocumentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var documentRows = []string{
	"id", "display_name", "file_name", "description", "uploaded_at", "uploaded_by_user_id",
	"course_id", "module_id", "activity_id", "student_id", "is_submission", "status", "status_changed_by", "status_feedback",
}

func TestDocumentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	doc := &models.Document{
		DisplayName:      "Slutprojekt",
		FileName:         "2026/01/ab12_projekt.pdf",
		UploadedByUserID: "student-1",
		IsSubmission:     true,
	}
	require.NoError(t, repo.Create(context.Background(), doc))
	require.Equal(t, int64(7), doc.ID)
	require.Equal(t, models.DocumentStatusPending, doc.Status)
	require.False(t, doc.UploadedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows(documentRows).
		AddRow(int64(7), "Slutprojekt", "2026/01/ab12_projekt.pdf", nil, time.Now(), "student-1",
			int64(10), int64(20), int64(30), "student-1", true, "PENDING", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, display_name, file_name")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Slutprojekt", doc.DisplayName)
	require.Equal(t, models.DocumentStatusPending, doc.Status)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, display_name, file_name")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 99)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDocumentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows(documentRows).
		AddRow(int64(1), "Uppgift 1", "2026/01/a.pdf", nil, time.Now(), "student-1",
			int64(10), int64(20), nil, "student-1", true, "REVIEW", nil, nil)
	mock.ExpectQuery(`SELECT .* FROM documents WHERE course_id = \$1 AND student_id = \$2 ORDER BY uploaded_at DESC`).
		WithArgs(int64(10), "student-1").
		WillReturnRows(rows)

	courseID := int64(10)
	studentID := "student-1"
	docs, err := repo.List(context.Background(), models.DocumentFilter{CourseID: &courseID, StudentID: &studentID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, models.DocumentStatusReview, docs[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListNoFilter(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery(`SELECT .* FROM documents ORDER BY uploaded_at DESC`).
		WillReturnRows(sqlmock.NewRows(documentRows))

	docs, err := repo.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	require.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	feedback := "Komplettera källor"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status")).
		WithArgs(int64(7), "REJECTED", "teacher-1", feedback).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, models.DocumentStatusRejected, "teacher-1", &feedback))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), 99, models.DocumentStatusApproved, "teacher-1", nil)
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 7))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), 99)
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
