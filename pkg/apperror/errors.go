package apperror

import (
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

// ---- Ledger & Transactions (LGR) ----

func ErrSubsidyNotFound(id string) *AppError {
	return New("LGR_001", fmt.Sprintf("Subsidy program %q not found", id), http.StatusNotFound)
}

func ErrInvalidAmount(message string) *AppError {
	if message == "" {
		message = "Invalid amount"
	}
	return New("LGR_002", message, http.StatusBadRequest)
}

func ErrIneligible(programName string) *AppError {
	return New("LGR_003", fmt.Sprintf("You are not eligible for %s", programName), http.StatusUnprocessableEntity)
}

func ErrNotClaimed(programName string) *AppError {
	return New("LGR_004", fmt.Sprintf("%s has not been claimed yet", programName), http.StatusUnprocessableEntity)
}

func ErrTransactionNotFound() *AppError {
	return New("LGR_005", "Transaction not found", http.StatusNotFound)
}

func ErrTransactionFinished() *AppError {
	return New("LGR_006", "Transaction has already reached a terminal state", http.StatusConflict)
}

// ---- Merchants (MCH) ----

func ErrMerchantNotFound(code string) *AppError {
	return New("MCH_001", fmt.Sprintf("Merchant %q not found", code), http.StatusNotFound)
}

func ErrSubsidyNotAccepted(merchantName string) *AppError {
	return New("MCH_002", fmt.Sprintf("%s does not accept this subsidy", merchantName), http.StatusUnprocessableEntity)
}

// ---- Session & Identity (AUTH) ----

func ErrInvalidCard() *AppError {
	return New("AUTH_001", "Identity card could not be read", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired session token", http.StatusUnauthorized)
}

func ErrNotAuthenticated() *AppError {
	return New("AUTH_003", "Identity verification required", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("LGR_002", message, http.StatusBadRequest)
}
