package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(45), info.TotalItems)

	// Empty result sets still report one page.
	info = NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, int64(0), info.TotalItems)

	// A page past the end is clamped to the last page.
	info = NewPaginationInfo(10, 9, 20)
	assert.Equal(t, 1, info.CurrentPage)

	// Nonsense inputs fall back to defaults.
	info = NewPaginationInfo(10, 0, -5)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, DefaultPageSize, info.PageSize)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"", 1, DefaultPageSize},
		{"page=3&size=50", 3, 50},
		{"page=0&size=0", 1, DefaultPageSize},
		{"page=abc&size=xyz", 1, DefaultPageSize},
		{"size=9999", 1, DefaultPageSize},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/scholarships?"+tc.query, nil)

		page, size := ParsePaginationParams(c)
		assert.Equal(t, tc.wantPage, page, "query %q", tc.query)
		assert.Equal(t, tc.wantSize, size, "query %q", tc.query)
	}
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(1, 20, 45)
	assert.Equal(t, 0, start)
	assert.Equal(t, 20, end)

	start, end = CalculateSliceIndices(3, 20, 45)
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	// Past the end yields an empty window rather than a panic.
	start, end = CalculateSliceIndices(4, 20, 45)
	assert.Equal(t, 45, start)
	assert.Equal(t, 45, end)

	start, end = CalculateSliceIndices(1, 20, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
