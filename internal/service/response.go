package service

import (
	"errors"
	"net/http"
)

// Response is the envelope every polygon operation returns and every HTTP
// response carries.
type Response[T any] struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ResponseObject T      `json:"responseObject"`
	StatusCode     int    `json:"statusCode"`
}

func Success[T any](message string, object T, statusCode int) Response[T] {
	return Response[T]{
		Success:        true,
		Message:        message,
		ResponseObject: object,
		StatusCode:     statusCode,
	}
}

func Failure[T any](message string, object T, statusCode int) Response[T] {
	return Response[T]{
		Success:        false,
		Message:        message,
		ResponseObject: object,
		StatusCode:     statusCode,
	}
}

// Err converts a failed envelope back into a sentinel-wrapped error so
// callers on the client side can use errors.Is.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	var kind error
	switch {
	case r.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case r.StatusCode >= 400 && r.StatusCode < 500:
		kind = ErrInvalidInput
	default:
		kind = ErrInternal
	}
	return &ResponseError{Kind: kind, StatusCode: r.StatusCode, Message: r.Message}
}

type ResponseError struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func (e *ResponseError) Unwrap() error {
	return e.Kind
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
