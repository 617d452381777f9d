package rbac

import (
	goerrors "github.com/goliatone/go-errors"
)

// The two authorization failure kinds. They map to distinct status codes
// and are never conflated: ErrUnauthenticated means the caller presented
// no usable credential, ErrForbidden means the identity is valid but the
// permission set lacks the required action.
var ErrUnauthenticated = goerrors.New("Unauthenticated", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

var ErrForbidden = goerrors.New("Forbidden", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("FORBIDDEN")

// BadRequest is a domain rule violation surfaced to the caller as a 400.
func BadRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest)
}

// NotFound is a missing-entity error surfaced as a 404.
func NotFound(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

// Internal wraps an unexpected failure. These indicate bugs or broken
// deployments and surface as opaque 500s.
func Internal(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal)
}

// IsUnauthenticated reports whether err is the unauthenticated kind.
func IsUnauthenticated(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryAuth
}

// IsForbidden reports whether err is the forbidden kind.
func IsForbidden(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryAuthz
}
