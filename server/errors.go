package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is an error with the status code it should be reported with.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func BadRequest(message string, err error) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError adapts h to http.HandlerFunc.
//
//	r.Post("/validate", HandleError(s.validate))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
}

// DefaultErrorHandler writes err as {error, code}. Errors that are not an
// HTTPError are reported as 500 without their message.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	resp := errorResponse{
		ErrMsg:     "Unexpected Service Error",
		ErrMsgCode: http.StatusInternalServerError,
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		resp.ErrMsg = httpErr.Error()
		resp.ErrMsgCode = httpErr.Code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.ErrMsgCode)
	_ = json.NewEncoder(w).Encode(&resp)
}
