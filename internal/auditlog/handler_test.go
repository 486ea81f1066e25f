package auditlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kizunalink/kizuna-backend/internal/auth"
)

type stubService struct {
	lastFilter AuditLogFilter
	rows       []AuditLogResponse
	byID       map[uint]*AuditLogResponse
}

func (s *stubService) LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}

func (s *stubService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	s.lastFilter = filter
	return &PaginatedAuditLogs{Data: s.rows, Total: int64(len(s.rows))}, nil
}

func (s *stubService) GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, assert.AnError
}

func uintPtr(v uint) *uint { return &v }

func newAuditRouter(svc Service, identity *auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	withIdentity := func(c *gin.Context) {
		if identity != nil {
			auth.SetIdentity(c, *identity)
		}
		c.Next()
	}
	r.GET("/auditlogs", withIdentity, h.GetAuditLogs)
	r.GET("/auditlogs/:id", withIdentity, h.GetAuditLogByID)
	return r
}

func TestGetAuditLogsScopedToCaller(t *testing.T) {
	t.Run("a user_id query param cannot widen the scope", func(t *testing.T) {
		svc := &stubService{}
		router := newAuditRouter(svc, &auth.Identity{UserID: 7})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditlogs?user_id=42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.lastFilter.UserID)
		assert.Equal(t, uint(7), *svc.lastFilter.UserID)
	})

	t.Run("anonymous requests are rejected", func(t *testing.T) {
		svc := &stubService{}
		router := newAuditRouter(svc, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auditlogs", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetAuditLogByIDOwnership(t *testing.T) {
	svc := &stubService{byID: map[uint]*AuditLogResponse{
		1: {ID: 1, UserID: uintPtr(7), IPAddress: "192.0.2.1"},
		2: {ID: 2, UserID: uintPtr(42), IPAddress: "10.0.0.99"},
		3: {ID: 3, UserID: nil},
	}}
	router := newAuditRouter(svc, &auth.Identity{UserID: 7})

	t.Run("own row", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auditlogs/1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("another user's row reads as not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auditlogs/2", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.99")
	})

	t.Run("actorless row reads as not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auditlogs/3", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
