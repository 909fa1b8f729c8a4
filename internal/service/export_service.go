package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lexicon-edu/lms-api/internal/models"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
	"github.com/lexicon-edu/lms-api/pkg/export"
)

type exportDocumentLister interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

// ExportService renders a course's document inventory as CSV or PDF.
type ExportService struct {
	docs   exportDocumentLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(docs exportDocumentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		docs:   docs,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportResult bundles rendered bytes with download metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// CourseDocuments renders the inventory for one course in the requested
// format ("csv" or "pdf").
func (s *ExportService) CourseDocuments(ctx context.Context, courseID int64, format string) (*ExportResult, error) {
	docs, err := s.docs.List(ctx, models.DocumentFilter{CourseID: &courseID})
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"ID", "Name", "Status", "Uploaded", "Uploaded By", "Submission"},
		Rows:    make([][]string, 0, len(docs)),
	}
	for _, doc := range docs {
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(doc.ID, 10),
			doc.DisplayName,
			string(doc.Status),
			doc.UploadedAt.UTC().Format(time.RFC3339),
			doc.UploadedByUserID,
			strconv.FormatBool(doc.IsSubmission),
		})
	}

	switch format {
	case "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("course_%d_documents.csv", courseID),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(data, fmt.Sprintf("Course %d documents", courseID))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("course_%d_documents.pdf", courseID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
