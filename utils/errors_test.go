package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/matryer/is"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", NewNotFoundError("Deal not found"), http.StatusNotFound, "RESOURCE_NOT_FOUND", "Deal not found"},
		{"not a member", NewAccessDeniedError("User is not a member of this organization"), http.StatusForbidden, "NOT_A_MEMBER", "User is not a member of this organization"},
		{"forbidden", NewPermissionDeniedError("Cannot update other users' deals"), http.StatusForbidden, "FORBIDDEN", "Cannot update other users' deals"},
		{"validation", NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR", "bad"},
		{"invalid state", NewInvalidStateError("Cannot close deal with zero amount"), http.StatusBadRequest, "INVALID_STATE", "Cannot close deal with zero amount"},
		{"conflict", NewConflictError("Cannot delete contact with active deals"), http.StatusConflict, "CONFLICT", "Cannot delete contact with active deals"},
		{"wrapped", fmt.Errorf("load: %w", NewNotFoundError("Task not found")), http.StatusNotFound, "RESOURCE_NOT_FOUND", "Task not found"},
		{"api error", CreateUnauthorizedError("Invalid token"), http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token"},
		{"unknown", errors.New("mongo: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			status, code, message := StatusFor(tt.err)
			is.Equal(status, tt.status)
			is.Equal(code, tt.code)
			is.Equal(message, tt.message)
		})
	}
}

func TestIsKind(t *testing.T) {
	is := is.New(t)
	err := fmt.Errorf("wrap: %w", NewConflictError("x"))
	is.True(IsKind(err, KindConflict))
	is.True(!IsKind(err, KindNotFound))
	is.True(!IsKind(errors.New("plain"), KindConflict))
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	is := is.New(t)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)

	HandleError(c, errors.New("dial tcp 10.0.0.1:27017: connection refused"))

	is.Equal(w.Code, http.StatusInternalServerError)
	var body map[string]interface{}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &body))
	is.Equal(body["success"], false)
	is.Equal(body["error"], "Internal server error")
	is.Equal(body["code"], "INTERNAL_ERROR")
	is.True(c.IsAborted())
}
