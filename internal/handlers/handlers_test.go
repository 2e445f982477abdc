package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"compliancehub/internal/compliance"
	"compliancehub/internal/query"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func TestQuerySpec(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, _ := testContext("/api/v1/policies")
		spec := querySpec(c)
		assert.Equal(t, query.Spec{
			Category:      query.All,
			Status:        query.All,
			SortDirection: query.Asc,
		}, spec)
	})

	t.Run("explicit parameters", func(t *testing.T) {
		c, _ := testContext("/api/v1/policies?search=security&category=IT&status=active&sort_field=title&sort_direction=desc")
		spec := querySpec(c)
		assert.Equal(t, "security", spec.Search)
		assert.Equal(t, "IT", spec.Category)
		assert.Equal(t, "active", spec.Status)
		assert.Equal(t, "title", spec.SortField)
		assert.Equal(t, query.Desc, spec.SortDirection)
	})

	t.Run("bad direction falls back to ascending", func(t *testing.T) {
		c, _ := testContext("/api/v1/policies?sort_direction=sideways")
		spec := querySpec(c)
		assert.Equal(t, query.Asc, spec.SortDirection)
	})
}

func TestRespondError(t *testing.T) {
	h := &Handler{logger: zap.NewNop()}

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &compliance.ValidationError{Field: "tracking_id", Message: "tracking ID required"}, http.StatusBadRequest},
		{"not found", &compliance.NotFoundError{Resource: "report", Key: "WB-9999-ZZZZ"}, http.StatusNotFound},
		{"incomplete task", &compliance.IncompleteTaskError{TaskID: "task-1", Progress: 60}, http.StatusConflict},
		{"collaborator", &compliance.CollaboratorError{Op: "list policies", Err: errors.New("connection refused")}, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext("/")
			h.respondError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	t.Run("incomplete task response carries progress", func(t *testing.T) {
		c, rec := testContext("/")
		h.respondError(c, &compliance.IncompleteTaskError{TaskID: "task-1", Progress: 60})
		assert.Contains(t, rec.Body.String(), `"progress":60`)
	})

	t.Run("wrapped errors still map", func(t *testing.T) {
		c, rec := testContext("/")
		wrapped := &compliance.CollaboratorError{
			Op:  "lookup",
			Err: &compliance.NotFoundError{Resource: "report", Key: "x"},
		}
		h.respondError(c, wrapped)
		// NotFound wins over the wrapper: errors.As unwraps the chain and
		// the switch checks validation and not-found first.
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
