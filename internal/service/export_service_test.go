package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexicon-edu/lms-api/internal/models"
)

type exportListerStub struct {
	docs   []models.Document
	filter models.DocumentFilter
}

func (l *exportListerStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	l.filter = filter
	return l.docs, nil
}

func TestExportServiceCourseDocumentsCSV(t *testing.T) {
	lister := &exportListerStub{docs: []models.Document{
		{ID: 1, DisplayName: "Slutprojekt", Status: models.DocumentStatusApproved, UploadedAt: time.Now(), UploadedByUserID: "student-1", IsSubmission: true},
	}}
	svc := NewExportService(lister, nil)

	result, err := svc.CourseDocuments(context.Background(), 10, "csv")
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.ContentType)
	require.Equal(t, "course_10_documents.csv", result.Filename)
	require.NotNil(t, lister.filter.CourseID)
	require.Equal(t, int64(10), *lister.filter.CourseID)

	body := string(result.Content)
	require.True(t, strings.HasPrefix(body, "ID,Name,Status"))
	require.Contains(t, body, "Slutprojekt")
	require.Contains(t, body, "APPROVED")
}

func TestExportServiceCourseDocumentsPDF(t *testing.T) {
	lister := &exportListerStub{docs: []models.Document{
		{ID: 2, DisplayName: "Rapport", Status: models.DocumentStatusPending, UploadedAt: time.Now(), UploadedByUserID: "student-2"},
	}}
	svc := NewExportService(lister, nil)

	result, err := svc.CourseDocuments(context.Background(), 10, "pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&exportListerStub{}, nil)

	_, err := svc.CourseDocuments(context.Background(), 10, "xlsx")
	require.Error(t, err)
}
