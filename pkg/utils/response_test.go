package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
)

func TestErrorBody_MapeaKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "autorización", err: sharedDomain.NewAuthorizationError("ROLE_NOT_PERMITTED", "role not permitted"), status: http.StatusForbidden, code: "ROLE_NOT_PERMITTED"},
		{name: "validación", err: sharedDomain.NewValidationError("INVALID_PAGE", "page must be positive"), status: http.StatusBadRequest, code: "INVALID_PAGE"},
		{name: "no encontrado", err: sharedDomain.ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "fallo del store", err: sharedDomain.WrapStoreFailure(errors.New("dial tcp: refused")), status: http.StatusInternalServerError, code: "STORE_FAILURE"},
		{name: "cancelado", err: sharedDomain.WrapStoreFailure(context.Canceled), status: StatusClientClosedRequest, code: "CANCELED"},
		{name: "error ajeno", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ErrorBody(tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "dial tcp")
		})
	}
}

func TestSendError_Cuerpo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SendError(c, sharedDomain.NewValidationError("UNKNOWN_SORT", "unknown sort field"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var out struct {
		Error ErrorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, ErrorResponse{Kind: "validation", Code: "UNKNOWN_SORT", Message: "unknown sort field"}, out.Error)
	assert.True(t, c.IsAborted())
}
