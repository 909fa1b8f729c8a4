package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/models"
	appErrors "github.com/lexicon-edu/lms-api/pkg/errors"
	"github.com/lexicon-edu/lms-api/pkg/response"
)

type contactService interface {
	SaveContactMessage(ctx context.Context, req dto.ContactMessageRequest) (*models.StoredContactMessage, error)
	ListContactMessages(ctx context.Context) ([]dto.ContactMessageSummary, error)
	DecryptMessage(ctx context.Context, id string) (*dto.ContactMessageRequest, error)
}

// ContactHandler manages contact message endpoints.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs the handler.
func NewContactHandler(svc contactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Submit godoc
// @Summary Submit a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid contact payload"))
		return
	}
	stored, err := h.service.SaveContactMessage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ContactMessageSummary{
		ID:        stored.ID,
		Timestamp: stored.Timestamp,
		Subject:   stored.Subject,
	})
}

// List godoc
// @Summary List contact message summaries
// @Tags Contact
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	items, err := h.service.ListContactMessages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Decrypt godoc
// @Summary Decrypt a stored contact message
// @Tags Contact
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Router /contact/{id} [get]
func (h *ContactHandler) Decrypt(c *gin.Context) {
	msg, err := h.service.DecryptMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if msg == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "contact message not found"))
		return
	}
	response.JSON(c, http.StatusOK, msg)
}
