package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UnknownErrorMessage mensaje cuando ni el cuerpo ni el transporte explican el fallo.
const UnknownErrorMessage = "Unknown error"

// APIError error de una llamada a la API. Message sale del campo "message" del cuerpo;
// si no existe, del error de transporte; si tampoco, UnknownErrorMessage.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(status int, body []byte, transport error) *APIError {
	apiErr := &APIError{StatusCode: status, Err: transport}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		apiErr.Code = parsed.Code
		apiErr.Message = strings.TrimSpace(parsed.Message)
	}
	if apiErr.Message == "" && transport != nil {
		apiErr.Message = transport.Error()
	}
	if apiErr.Message == "" {
		apiErr.Message = UnknownErrorMessage
	}
	return apiErr
}

// IsNotFound true si err es un *APIError 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ErrorMessage mensaje presentable de err (Message si es *APIError).
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
