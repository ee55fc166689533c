package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
		{KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
			assert.Equal(t, tt.want, New(tt.kind, "x").HTTPStatus())
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("updating employee: %w", Forbidden("nope"))

	assert.Equal(t, KindForbidden, KindOf(err))
	assert.True(t, Is(err, KindForbidden))
	assert.False(t, Is(err, KindNotFound))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("pq: connection refused")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestMessage_HidesCause(t *testing.T) {
	cause := errors.New(`ERROR: duplicate key value violates unique constraint "idx_employees_email"`)

	assert.Equal(t, "Something went wrong. Please try again.", Message(cause))
	assert.Equal(t, "Something went wrong. Please try again.", Message(Internal(cause)))
	assert.Equal(t, "Email is already registered.", Message(Wrap(KindConflict, "Email is already registered.", cause)))
}

func TestValidation_Fields(t *testing.T) {
	err := fmt.Errorf("create: %w", FieldError("phone", "Enter a valid phone number."))

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, map[string]string{"phone": "Enter a valid phone number."}, FieldsOf(err))
	assert.Nil(t, FieldsOf(errors.New("other")))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}
