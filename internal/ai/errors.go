package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindQuota       ErrorKind = "quota"
	KindMalformed   ErrorKind = "malformed_response"
	KindUnavailable ErrorKind = "unavailable"
)

var errEmptyOutput = errors.New("empty output")

// Error is a text-completion failure. Kind is meant for logs and metrics;
// callers never show it to end users.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of a completion error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Classify wraps err into an *Error, keeping an existing classification.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	kind := KindUnavailable
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, errEmptyOutput):
		kind = KindMalformed
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func statusError(provider string, status int, msg string) error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		kind = KindQuota
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		kind = KindTimeout
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return &Error{Kind: kind, Provider: provider, Err: errors.New(msg)}
}

func malformed(provider string, err error) error {
	return &Error{Kind: KindMalformed, Provider: provider, Err: err}
}
