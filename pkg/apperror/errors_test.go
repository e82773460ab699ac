package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("find entry: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden helper", Forbidden("not your entry"), http.StatusForbidden},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	err := Forbidden("you can only edit your own entries")

	assert.Equal(t, "you can only edit your own entries", err.Error())
	assert.True(t, errors.Is(err, ErrForbidden))
}
