package glm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/glmware/glmbridge/pkg/chat"
)

// mapHTTPError converts an HTTP response with a non-2xx status code into
// an APIError. It attempts to parse the response body as an errorResponse
// to extract a descriptive message.
func mapHTTPError(resp *http.Response) *chat.APIError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "invalid request to backend"
		}
		return chat.NewInvalidRequestError("", message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend rejected the request token"
		}
		return chat.NewAuthenticationError(message)

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "backend resource not found"
		}
		return chat.NewNotFoundError(message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return chat.NewTooManyRequestsError(message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return chat.NewServerError(message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return chat.NewServerError(message)
	}
}

// mapAPIFailure converts a 2xx response whose envelope reports failure
// (success=false) into an APIError carrying the backend code and message.
func mapAPIFailure(resp *invokeResponse) *chat.APIError {
	message := resp.Msg
	if message == "" {
		message = "backend reported failure"
	}
	apiErr := chat.NewModelError(fmt.Sprintf("%s (code %d)", message, resp.Code))
	apiErr.Code = fmt.Sprintf("%d", resp.Code)
	return apiErr
}

// mapNetworkError converts a network-level error (connection refused,
// timeout, DNS resolution failure) into an APIError.
func mapNetworkError(err error) *chat.APIError {
	return chat.NewServerError(fmt.Sprintf("backend connection error: %s", err.Error()))
}

// extractErrorMessage tries to parse the response body as an errorResponse
// and returns the msg field if found.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Msg != "" {
		if errResp.Code != 0 {
			return fmt.Sprintf("%s (code %d)", errResp.Msg, errResp.Code)
		}
		return errResp.Msg
	}

	return ""
}
