package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("add slot: %w", With(ErrOverlap, "09:00-10:30 overlaps 10:00-11:00"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrOverlap))
	assert.False(t, errors.Is(err, ErrDailyLimitExceeded))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "overlap", CodeOf(err))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "", CodeOf(errors.New("boom")))
}

func TestNetworkUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindMissingReason.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindSlotUnavailable.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindInvalidTransition.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestFromHTTP(t *testing.T) {
	assert.True(t, errors.Is(FromHTTP(http.StatusConflict, "slot_unavailable", "", "taken"), ErrSlotUnavailable))
	assert.True(t, errors.Is(FromHTTP(http.StatusConflict, "", "", ""), ErrConflict))
	assert.True(t, errors.Is(FromHTTP(http.StatusUnprocessableEntity, "", "overlap", "x"), ErrOverlap))
	assert.True(t, errors.Is(FromHTTP(http.StatusNotFound, "", "", ""), ErrNotFound))
	assert.Equal(t, KindInternal, FromHTTP(http.StatusInternalServerError, "", "", "").Kind)
}
