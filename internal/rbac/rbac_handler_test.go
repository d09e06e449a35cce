package rbac

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	authorizeFn   func(role, resource, action string) (bool, error)
	permissionsFn func(role string) ([]string, error)
}

func (f *fakeService) Authorize(role, resource, action string) (bool, error) {
	return f.authorizeFn(role, resource, action)
}

func (f *fakeService) Permissions(role string) ([]string, error) {
	return f.permissionsFn(role)
}

func newRouter(svc Service, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	})
	r.POST("/rbac/enforce", handler.Enforce)
	r.GET("/rbac/me", handler.MyPermissions)
	return r
}

func TestHandler_Enforce(t *testing.T) {
	svc := &fakeService{authorizeFn: func(role, resource, action string) (bool, error) {
		if role == "broken" {
			return false, errors.New("boom")
		}
		return role == "Manager" && resource == "leave" && action == "approve", nil
	}}

	tests := []struct {
		name       string
		role       string
		body       any
		wantStatus int
		wantAllow  bool
	}{
		{"allowed", "Manager", EnforceRequest{Resource: "leave", Action: "approve"}, http.StatusOK, true},
		{"denied", "Employee", EnforceRequest{Resource: "leave", Action: "approve"}, http.StatusOK, false},
		{"missing action", "Manager", map[string]string{"resource": "leave"}, http.StatusBadRequest, false},
		{"blank after trim", "Manager", EnforceRequest{Resource: " ", Action: " "}, http.StatusBadRequest, false},
		{"service error", "broken", EnforceRequest{Resource: "leave", Action: "approve"}, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(svc, tt.role)
			b, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(b))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Data EnforceResponse `json:"data"`
				}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantAllow, resp.Data.Allowed)
			}
		})
	}
}

func TestHandler_MyPermissions(t *testing.T) {
	svc := &fakeService{permissionsFn: func(role string) ([]string, error) {
		return []string{"leave:read"}, nil
	}}
	r := newRouter(svc, "Employee")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leave:read")
	assert.Contains(t, w.Body.String(), `"role":"Employee"`)
}
