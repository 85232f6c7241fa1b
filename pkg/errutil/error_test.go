package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("grant: %w", Internal("internal error", cause))

	be := As(err)
	require.Equal(t, StatusInternal, be.Status())
	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusInternalServerError, be.Code.HTTPStatus())
	require.True(t, be.Code.Retryable())
}

func TestJSONDoesNotLeakCause(t *testing.T) {
	be := As(Unauthorized("unauthorized", errors.New("signature mismatch")))

	body := be.JSON()
	require.Equal(t, false, body["success"])
	require.Equal(t, "unauthorized", body["error"])
	require.NotContains(t, fmt.Sprint(body), "signature")
	require.False(t, be.Code.Retryable())
}

func TestAsDefaultsToInternal(t *testing.T) {
	be := As(errors.New("boom"))
	require.Equal(t, StatusInternal, be.Code)
	require.Equal(t, "internal error", be.Message)
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, StatusValidationFailed.HTTPStatus())
	require.Equal(t, http.StatusServiceUnavailable, StatusServiceUnavailable.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, StatusUnknown.HTTPStatus())
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("invalid request", nil, WithDetails(Detail{Field: "type", Message: "unknown action type"}))
	be := As(err)
	require.Len(t, be.Details, 1)
	require.Contains(t, be.JSON(), "details")
}
