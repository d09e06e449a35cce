package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		query     string
		n         int
		wantStart int
		wantEnd   int
		wantPages int
	}{
		{"defaults", "", 25, 0, 10, 3},
		{"second page", "?page=2&page_size=10", 25, 10, 20, 3},
		{"past the end", "?page=9&page_size=10", 25, 25, 25, 3},
		{"invalid values fall back", "?page=-1&page_size=abc", 4, 0, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)

			start, end, meta := response.PageBounds(c, tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.Equal(t, int64(tt.n), meta.Total)
		})
	}
}
