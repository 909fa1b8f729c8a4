package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lexicon-edu/lms-api/internal/dto"
	"github.com/lexicon-edu/lms-api/internal/middleware"
	"github.com/lexicon-edu/lms-api/internal/models"
)

type fakeNotificationSrv struct {
	listResp []dto.NotificationResponse
	listErr  error
	lastUser string
	lastID   string
	readHits int
}

func (f *fakeNotificationSrv) ListForUser(_ context.Context, userID string) ([]dto.NotificationResponse, error) {
	f.lastUser = userID
	return f.listResp, f.listErr
}

func (f *fakeNotificationSrv) MarkRead(_ context.Context, notificationID, userID string) error {
	f.lastID = notificationID
	f.lastUser = userID
	f.readHits++
	return nil
}

func (f *fakeNotificationSrv) MarkUnread(_ context.Context, notificationID, userID string) error {
	f.lastID = notificationID
	f.lastUser = userID
	return nil
}

func (f *fakeNotificationSrv) Delete(_ context.Context, notificationID string) error {
	f.lastID = notificationID
	return nil
}

func notificationTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, rec
}

func TestNotificationHandlerListRequiresAuth(t *testing.T) {
	handler := NewNotificationHandler(&fakeNotificationSrv{})
	c, rec := notificationTestContext(t, http.MethodGet, "/notifications")

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandlerList(t *testing.T) {
	srv := &fakeNotificationSrv{listResp: []dto.NotificationResponse{
		{ID: "n-1", Message: "Anna laddade upp 'a.pdf' i Go > M > A|1", Timestamp: time.Now(), IsRead: true},
	}}
	handler := NewNotificationHandler(srv)
	c, rec := notificationTestContext(t, http.MethodGet, "/notifications")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", srv.lastUser)

	var envelope struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.True(t, envelope.Data[0].IsRead)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	srv := &fakeNotificationSrv{}
	handler := NewNotificationHandler(srv)
	c, rec := notificationTestContext(t, http.MethodPut, "/notifications/n-7/read")
	c.Params = gin.Params{{Key: "id", Value: "n-7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})

	handler.MarkRead(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n-7", srv.lastID)
	assert.Equal(t, "teacher-1", srv.lastUser)
	assert.Equal(t, 1, srv.readHits)
}

func TestNotificationHandlerDelete(t *testing.T) {
	srv := &fakeNotificationSrv{}
	handler := NewNotificationHandler(srv)
	c, rec := notificationTestContext(t, http.MethodDelete, "/notifications/n-7")
	c.Params = gin.Params{{Key: "id", Value: "n-7"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n-7", srv.lastID)
}
