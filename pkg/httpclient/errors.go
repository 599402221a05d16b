package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
)

// upstreamErrorBody covers the error shapes the ERP API has been seen to
// return. Older endpoints answer {"detail": "..."}, newer ones
// {"error": "...", "message": "..."}.
type upstreamErrorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b upstreamErrorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Detail != "":
		return b.Detail
	default:
		return b.Error
	}
}

// ParseResponseError consumes the body of a non-2xx response and translates
// it into an error the sync layer can branch on. Auth failures come back as
// Forbidden so the operator learns the API key expired instead of seeing an
// endless retry loop.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(bodyBytes)
	var parsed upstreamErrorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.text() != "" {
		message = parsed.text()
	}

	return mapUpstreamError(resp.StatusCode, message, upstream)
}

func mapUpstreamError(status int, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusTooManyRequests:
		return apperrors.Unavailable(upstream)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", upstream, status, message)
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx. Client errors mean the
// request itself is wrong and a retry with the same parameters cannot succeed.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
