package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	custom := ErrInvalidTransition.WithMessage("cannot reject an ongoing reservation")
	wrapped := fmt.Errorf("cancel: %w", custom)

	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))
	assert.False(t, errors.Is(wrapped, ErrSlotConflict))
	assert.Equal(t, "cannot reject an ongoing reservation", From(wrapped).Message)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusUnprocessableEntity},
		{ErrReservationNotFound, http.StatusNotFound},
		{ErrSlotConflict, http.StatusBadRequest},
		{ErrInvalidTransition, http.StatusBadRequest},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrLeadTimeViolation, http.StatusBadRequest},
		{ErrTokenExpired, http.StatusBadRequest},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), tc.err.Code)
	}
}

func TestFromUnknownIsInternal(t *testing.T) {
	e := From(errors.New("socket closed"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "internal server error", e.Message)
	assert.Nil(t, From(nil))
}
