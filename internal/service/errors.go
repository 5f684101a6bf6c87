package service

import (
	"errors"
	"fmt"
	"net/http"
)

// UserInputError is a rejected request. Nothing was written.
type UserInputError struct {
	Status int
	Msg    string
}

func (e *UserInputError) Error() string { return e.Msg }

func userError(status int, msg string) *UserInputError {
	return &UserInputError{Status: status, Msg: msg}
}

var (
	ErrRoomNotFound  = userError(http.StatusNotFound, "room not found")
	ErrWrongPin      = userError(http.StatusForbidden, "wrong pin")
	ErrRoomFull      = userError(http.StatusConflict, "room is full")
	ErrEmptyName     = userError(http.StatusBadRequest, "name is required")
	ErrNameTooLong   = userError(http.StatusBadRequest, "name is too long")
	ErrQuizNotFound  = userError(http.StatusNotFound, "quiz not found")
	ErrInvalidQuiz   = userError(http.StatusBadRequest, "invalid quiz")
	ErrInvalidRoom   = userError(http.StatusBadRequest, "invalid room settings")
	ErrNotEligible   = userError(http.StatusConflict, "not eligible to buzz")
	ErrNotRoomHost   = userError(http.StatusForbidden, "not the host of this room")
	ErrNotRoomMember = userError(http.StatusForbidden, "not a player of this room")
)

// invalidQuiz narrows ErrInvalidQuiz with a reason.
func invalidQuiz(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuiz, fmt.Sprintf(format, args...))
}

// TransportError wraps a failure of the store, cache or feed. The operation
// is not retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErr(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// HTTPStatus maps a service error to a response status.
func HTTPStatus(err error) int {
	var userErr *UserInputError
	if errors.As(err, &userErr) {
		return userErr.Status
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return http.StatusBadGateway
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// PublicMessage is the error text shown to clients. Store failures only
// name the failed operation.
func PublicMessage(err error) string {
	var userErr *UserInputError
	if errors.As(err, &userErr) {
		return err.Error()
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return transport.Op + " failed"
	}
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInvalidToken) {
		return err.Error()
	}
	return "internal error"
}
