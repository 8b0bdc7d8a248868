package adaptor

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinema-reservation/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperror.Code]int{
		apperror.CodeInvalidRequest:   http.StatusBadRequest,
		apperror.CodeInvalidSelection: http.StatusBadRequest,
		apperror.CodeShowtimeNotFound: http.StatusNotFound,
		apperror.CodeBookingNotFound:  http.StatusNotFound,
		apperror.CodeTicketNotFound:   http.StatusNotFound,
		apperror.CodeSeatUnavailable:  http.StatusConflict,
		apperror.CodeAlreadyConfirmed: http.StatusConflict,
		apperror.CodeInvalidState:     http.StatusConflict,
		apperror.CodeBookingExpired:   http.StatusGone,
		apperror.CodeForbidden:        http.StatusForbidden,
		apperror.CodeInternal:         http.StatusInternalServerError,
	}

	for code, want := range cases {
		err := fmt.Errorf("wrapped: %w", apperror.New(code, "boom"))
		assert.Equal(t, want, statusFor(err), code)
	}

	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("plain")))
}

func TestHandleServiceError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(rec, zap.NewNop(), apperror.Wrap(apperror.CodeInternal, errors.New("dial tcp: refused"), "create booking"), "create booking")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL"`)
}
