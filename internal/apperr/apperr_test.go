package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("create order: %w", Stock(`stock not available for "Tee" (Size: M)`, "7"))
	assert.Equal(t, KindStock, KindOf(err))
	assert.True(t, Is(err, KindStock))
	assert.False(t, Is(err, KindState))

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindStock))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindState))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindUpstream))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}

func TestUpstreamWraps(t *testing.T) {
	cause := errors.New("redis down")
	err := Upstream("publish new order", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "publish new order: redis down", err.Error())
}
