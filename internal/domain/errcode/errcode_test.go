package errcode

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ParamError, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{UserNotFound, http.StatusNotFound},
		{DepartmentHasChildren, http.StatusBadRequest},
		{ProjectAccessDenied, http.StatusForbidden},
		{WorkHourHoursExceed, http.StatusBadRequest},
		{TaskCreateFailed, http.StatusInternalServerError},
		{InternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), tt.err.Error())
		assert.GreaterOrEqual(t, tt.err.Code, 1000)
		assert.LessOrEqual(t, tt.err.Code, 5999)
	}
}

func TestFromWrappedError(t *testing.T) {
	err := errors.Wrap(WorkHourHoursExceed.WithMessage("hours=25"), "create work hour")

	be, ok := From(err)
	require.True(t, ok)
	assert.Equal(t, 5003, be.Code)
	assert.Equal(t, "hours=25", be.Message)
	assert.True(t, Is(err, WorkHourHoursExceed))
	assert.True(t, errors.Is(err, WorkHourHoursExceed))
	assert.False(t, Is(err, WorkHourDailyExceed))

	_, ok = From(errors.New("plain"))
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(3305)
	require.True(t, ok)
	assert.Same(t, DepartmentHasChildren, e)

	_, ok = Lookup(9999)
	assert.False(t, ok)
}
