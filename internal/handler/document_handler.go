package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/models"
	"github.com/lexicon-edu/lms-api/internal/service"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
	"github.com/lexicon-edu/lms-api/pkg/response"
)

type documentService interface {
	Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload service.DocumentUpload, uploaderID string) (*models.Document, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	Download(ctx context.Context, id int64) (*service.DocumentDownload, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, req dto.SetDocumentStatusRequest, changedBy string) error
}

type exportService interface {
	CourseDocuments(ctx context.Context, courseID int64, format string) (*service.ExportResult, error)
}

// DocumentHandler manages document HTTP endpoints.
type DocumentHandler struct {
	service documentService
	exports exportService
	metrics *service.MetricsService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(svc documentService, exports exportService, metrics *service.MetricsService) *DocumentHandler {
	return &DocumentHandler{service: svc, exports: exports, metrics: metrics}
}

// Upload godoc
// @Summary Upload a document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param display_name formData string true "Display name"
// @Param description formData string false "Description"
// @Param course_id formData int false "Course reference"
// @Param module_id formData int false "Module reference"
// @Param activity_id formData int false "Activity reference"
// @Param student_id formData string false "Student reference"
// @Param is_submission formData bool false "Submission flag"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	upload := service.DocumentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  src,
	}
	doc, err := h.service.Upload(c.Request.Context(), req, upload, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DocumentUploaded()
	}
	response.Created(c, doc)
}

// Get godoc
// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// List godoc
// @Summary List documents by association
// @Tags Documents
// @Produce json
// @Param course_id query int false "Course filter"
// @Param module_id query int false "Module filter"
// @Param activity_id query int false "Activity filter"
// @Param student_id query string false "Student filter"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter := models.DocumentFilter{}
	if v, ok, err := queryInt64(c, "course_id"); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course_id"))
		return
	} else if ok {
		filter.CourseID = &v
	}
	if v, ok, err := queryInt64(c, "module_id"); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid module_id"))
		return
	} else if ok {
		filter.ModuleID = &v
	}
	if v, ok, err := queryInt64(c, "activity_id"); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activity_id"))
		return
	} else if ok {
		filter.ActivityID = &v
	}
	if v := strings.TrimSpace(c.Query("student_id")); v != "" {
		filter.StudentID = &v
	}
	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

// Download godoc
// @Summary Download a document binary
// @Tags Documents
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}
	result, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.ContentType, result.File, nil)
}

// Delete godoc
// @Summary Delete a document and its notifications
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DocumentDeleted()
	}
	response.NoContent(c)
}

// SetStatus godoc
// @Summary Change a document's review status
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Success 204
// @Router /documents/{id}/status [put]
func (h *DocumentHandler) SetStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := h.documentID(c)
	if !ok {
		return
	}
	var req dto.SetDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	if err := h.service.SetStatus(c.Request.Context(), id, req, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a course's document inventory
// @Tags Documents
// @Produce octet-stream
// @Param id path int true "Course ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /courses/{id}/documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	result, err := h.exports.CourseDocuments(c.Request.Context(), courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *DocumentHandler) documentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return 0, false
	}
	return id, true
}

func queryInt64(c *gin.Context, name string) (int64, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
