package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseErrorDetailBody(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusForbidden, `{"detail":"chave de API inválida"}`), "tga")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	assert.Contains(t, err.Error(), "chave de API inválida")
}

func TestParseResponseErrorMessageBody(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusBadRequest, `{"error":"bad_request","message":"parâmetro page inválido"}`), "tga")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "parâmetro page inválido")
}

func TestParseResponseErrorPlainTextBody(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusNotFound, "rota nao encontrada"), "tga")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseErrorServerError(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusInternalServerError, "ORA-00600"), "tga")

	require.Error(t, err)
	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr), "5xx should stay a plain retryable error")
	assert.Contains(t, err.Error(), "ORA-00600")
}

func TestParseResponseErrorStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusBadRequest, apperrors.ErrInvalidInput},
		{http.StatusTooManyRequests, apperrors.ErrUnavailable},
	}
	for _, tt := range tests {
		err := ParseResponseError(fakeResponse(tt.status, "x"), "tga")
		assert.True(t, errors.Is(err, tt.want), "status %d", tt.status)
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
