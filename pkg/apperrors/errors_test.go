package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("service: %w", ErrLikeNotFound)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrValidation.WithDetails(map[string]string{"title": "required"})

	assert.Nil(t, ErrValidation.Details)
	assert.NotNil(t, detailed.Details)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeNotFound:      http.StatusNotFound,
		CodeForbidden:     http.StatusForbidden,
		CodeConflict:      http.StatusConflict,
		CodeAlreadyExists: http.StatusConflict,
		"SOMETHING_ELSE":  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleError(c, errors.New("connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"]["message"])
	assert.Equal(t, string(CodeInternalError), body["error"]["code"])
}

func TestHandleErrorForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/x", nil)

	HandleError(c, ErrJobModifyForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You can only modify your own job offers")
}
