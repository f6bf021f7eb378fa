package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestServerError(t *testing.T) {
	t.Run("unauthorized through wrapping", func(t *testing.T) {
		err := fmt.Errorf("GET /dashboard/stats: %w", &apperrors.ServerError{Status: http.StatusUnauthorized})
		require.True(t, apperrors.IsUnauthorized(err))

		var se *apperrors.ServerError
		require.True(t, apperrors.As(err, &se))
		require.Equal(t, http.StatusUnauthorized, se.Status)
	})

	t.Run("other statuses are not unauthorized", func(t *testing.T) {
		err := &apperrors.ServerError{Status: http.StatusInternalServerError, Body: "boom"}
		require.False(t, apperrors.IsUnauthorized(err))
		require.Contains(t, err.Error(), "500")
		require.Contains(t, err.Error(), "boom")
	})
}

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "ignored"))

	err := apperrors.Wrapf(apperrors.ErrTimeout, "fetching %s", "notifications")
	require.True(t, apperrors.Is(err, apperrors.ErrTimeout))
	require.Equal(t, "fetching notifications: backend request timed out", err.Error())
}
