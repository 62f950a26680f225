package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// Code is one of the closed set of payment error codes; Details carries
// debug-only context and is never serialized to clients.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Details    string `json:"-"`
	Err        error  `json:"-"`
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

// WithDetails attaches debug context and returns the error.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
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

// ---- Input & Lookup ----

func ErrInvalidInput(message string) *AppError {
	if message == "" {
		message = "Invalid input"
	}
	return New("INVALID_INPUT", message, http.StatusBadRequest)
}

func ErrDuplicatePayment(existingID string) *AppError {
	e := New("DUPLICATE_PAYMENT", "An equivalent payment was recently created", http.StatusConflict)
	e.Details = existingID
	return e
}

func ErrInvalidPaymentMethod() *AppError {
	return New("INVALID_PAYMENT_METHOD", "Unsupported payment method or sub-provider", http.StatusBadRequest)
}

func ErrInvalidProduct() *AppError {
	return New("INVALID_PRODUCT", "Product not found", http.StatusNotFound)
}

func ErrPaymentNotFound() *AppError {
	return New("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
}

// ---- Verification & State ----

func ErrUnauthorized() *AppError {
	return New("UNAUTHORIZED", "Unauthorized payment access", http.StatusForbidden)
}

func ErrInvalidPaymentState() *AppError {
	return New("INVALID_PAYMENT_STATE", "Payment is not in a verifiable state", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("INVALID_AMOUNT", "Recomputed price does not match the stored amount", http.StatusConflict)
}

func ErrInvalidPaymentAmount() *AppError {
	return New("INVALID_PAYMENT_AMOUNT", "Gateway amount does not match the stored amount", http.StatusConflict)
}

func ErrPaymentNotCompleted() *AppError {
	return New("PAYMENT_NOT_COMPLETED", "Payment has not completed yet", http.StatusAccepted)
}

// ---- Terminal outcomes ----

func ErrPaymentCancelled(reason string) *AppError {
	e := New("PAYMENT_CANCELLED", "Payment cancelled", http.StatusConflict)
	e.Details = reason
	return e
}

func ErrPaymentFailed(reason string) *AppError {
	e := New("PAYMENT_FAILED", "Payment failed", http.StatusPaymentRequired)
	e.Details = reason
	return e
}

// ---- System & Infrastructure ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_LIMIT_EXCEEDED", "Too many requests", http.StatusTooManyRequests)
}

func ErrPaymentResponseFailed(err error) *AppError {
	return Wrap("PAYMENT_RESPONSE_FAILED", "Payment gateway returned an unusable response", http.StatusBadGateway, err)
}

func ErrDatabase(err error) *AppError {
	return Wrap("DATABASE_ERROR", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps any internal failure as INTERNAL_SERVER_ERROR.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError, err)
}
