package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/codediary/internal/entity"
	"anoa.com/codediary/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	unread bool
	err    error
	calls  int
}

func (s *stubService) HasUnread(_ context.Context, _ *uuid.UUID) (bool, error) {
	s.calls++
	return s.unread, s.err
}

func (s *stubService) NotifyNewEntry(context.Context, *entity.DiaryEntry) error { return nil }

func newRouter(svc *stubService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(response.KeyUserID, userID)
		}
		c.Next()
	})
	h := NewNotificationHandler(svc, nil, nil)
	r.GET("/notifications/new-entries", h.NewEntries)
	r.GET("/notifications/ws", h.HandleWebSocket)
	return r
}

func TestNewEntries(t *testing.T) {
	viewer := uuid.NewString()

	tests := []struct {
		name     string
		userID   string
		xhr      bool
		svc      *stubService
		wantCode int
		wantBody string
	}{
		{"unread", viewer, true, &stubService{unread: true}, http.StatusOK, `{"new_entries":true}`},
		{"nothing new", viewer, true, &stubService{}, http.StatusOK, `{"new_entries":false}`},
		{"anonymous", "", true, &stubService{}, http.StatusBadRequest, `{"error":"invalid request"}`},
		{"not xhr", viewer, false, &stubService{}, http.StatusBadRequest, `{"error":"invalid request"}`},
		{"store failure", viewer, true, &stubService{err: errors.New("db down")}, http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notifications/new-entries", nil)
			if tt.xhr {
				req.Header.Set("X-Requested-With", "XMLHttpRequest")
			}
			w := httptest.NewRecorder()

			newRouter(tt.svc, tt.userID).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestNewEntries_InvalidRequestSkipsEvaluation(t *testing.T) {
	svc := &stubService{unread: true}
	req := httptest.NewRequest(http.MethodGet, "/notifications/new-entries", nil)
	w := httptest.NewRecorder()

	newRouter(svc, "").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls)
}

func TestHandleWebSocket_RequiresAuthAndRedis(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notifications/ws", nil)
	w := httptest.NewRecorder()
	newRouter(&stubService{}, "").ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/notifications/ws", nil)
	w = httptest.NewRecorder()
	newRouter(&stubService{}, uuid.NewString()).ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
