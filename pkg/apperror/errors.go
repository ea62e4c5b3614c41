package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Transfer failure kinds returned by the transfer engine.
const (
	CodeInvalidRequest      = "TXN_001"
	CodeSuspiciousRequest   = "TXN_002"
	CodeInsufficientBalance = "TXN_003"
	CodeTransactionFailed   = "TXN_004"
)

// ---- Transfers (TXN) ----

// ErrInvalidRequest signals input that the caller should have rejected.
func ErrInvalidRequest(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

// ErrSuspiciousRequest signals a policy rejection: self-transfer,
// unauthorised source wallet or a too-similar repeat.
func ErrSuspiciousRequest(message string) *AppError {
	return New(CodeSuspiciousRequest, message, http.StatusForbidden)
}

func ErrSelfTransfer() *AppError {
	return ErrSuspiciousRequest("Cannot transfer payment to own wallet")
}

func ErrUnauthorisedWallet() *AppError {
	return ErrSuspiciousRequest("Unauthorised access")
}

func ErrSimilarTransfer(retryAfterMinutes int) *AppError {
	return ErrSuspiciousRequest(fmt.Sprintf(
		"Same transaction restricted twice, please retry after %d minutes", retryAfterMinutes))
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusPaymentRequired)
}

// ErrTransactionFailed wraps any failure inside the atomic scope. Nothing was
// committed, so the whole request may be retried.
func ErrTransactionFailed(err error) *AppError {
	return Wrap(CodeTransactionFailed, "Transaction failed, something wrong", http.StatusInternalServerError, err)
}

// ---- Lookups (REQ) ----

// CodeNotFound marks a lookup that matched nothing.
const CodeNotFound = "REQ_001"

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a REQ_002 bad-request error.
func Validation(message string) *AppError {
	return New("REQ_002", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInsufficientScope(scope string) *AppError {
	return New("AUTH_004", fmt.Sprintf("Token lacks required scope: %s", scope), http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
