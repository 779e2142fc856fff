package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an error for callers that need to branch on the category
// rather than the HTTP status code.
type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindAlreadyExists       Kind = "already_exists"
	KindProviderError       Kind = "provider_error"
	KindPermissionDenied    Kind = "permission_denied"
	KindInvalidImage        Kind = "invalid_image"
	KindBootstrapIncomplete Kind = "bootstrap_incomplete"
	KindNotFound            Kind = "not_found"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindUnknown             Kind = "unknown"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Kind:    KindUnknown,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{Kind: KindBadRequest, Code: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: http.StatusForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindUnknown, Code: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
}

// InvalidCredentials covers every sign-in mismatch uniformly. Wrong password
// and unknown account are intentionally indistinguishable to the caller.
func InvalidCredentials(message string) *AppError {
	return &AppError{Kind: KindInvalidCredentials, Code: http.StatusUnauthorized, Message: message}
}

func AlreadyExists(message string) *AppError {
	return &AppError{Kind: KindAlreadyExists, Code: http.StatusConflict, Message: message}
}

// ProviderError carries the identity provider's message verbatim. The
// federated path does not leak enumeration-sensitive detail, so pass-through
// is acceptable there.
func ProviderError(message string, err error) *AppError {
	return &AppError{Kind: KindProviderError, Code: http.StatusBadGateway, Message: message, Err: err}
}

// PermissionDenied marks a document-store rule rejection. It usually means a
// misconfigured access rule rather than a user mistake, so the UI should show
// remediation guidance instead of a generic failure.
func PermissionDenied(message string, err error) *AppError {
	return &AppError{Kind: KindPermissionDenied, Code: http.StatusForbidden, Message: message, Err: err}
}

func InvalidImage(message string) *AppError {
	return &AppError{Kind: KindInvalidImage, Code: http.StatusBadRequest, Message: message}
}

// BootstrapIncomplete signals that the user record exists but the profile
// record could not be created. Sign-in still succeeds; the condition is
// surfaced so the UI can warn, and the next Ensure call heals it.
func BootstrapIncomplete(err error) *AppError {
	return &AppError{
		Kind:    KindBootstrapIncomplete,
		Code:    http.StatusInternalServerError,
		Message: "Account created but profile setup is incomplete. It will be retried on your next sign-in.",
		Err:     err,
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// LooksLikePermissionDenied is the message heuristic for stores that expose
// no structured code. Structured codes are preferred where available; this is
// the last-resort fallback.
func LooksLikePermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "insufficient")
}
