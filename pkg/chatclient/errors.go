package chatclient

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrResolution wraps every failure to find or create a conversation. The
	// caller keeps composing disabled until a later attempt succeeds.
	ErrResolution   = errors.New("conversation resolution failed")
	ErrNotResolved  = errors.New("conversation is not resolved")
	ErrNotConnected = errors.New("realtime session is not connected")
	ErrSendInFlight = errors.New("previous message is still being sent")
	ErrEmptyMessage = errors.New("message content is empty")
)

// APIError is a non-2xx answer of the REST API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error string `json:"error"`
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	if body, ok := resp.Error().(*errorResponse); ok && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
