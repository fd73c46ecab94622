package ledgersdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the wire-level error shape shared by the server and this SDK.
// Code is the stable machine-readable identifier; Message is the
// human-readable text some older clients still pattern-match on, so its
// wording for the verification errors is load-bearing.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError renders the error as the endpoint's JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

var (
	ErrInvalidRequest = NewAPIError(http.StatusBadRequest,
		"invalid_request", "The request is missing a required parameter or is malformed.")
	ErrInvalidJSONBody = NewAPIError(http.StatusBadRequest,
		"invalid_request", "Request body must be valid JSON.")
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized,
		"invalid_credentials", "Invalid email or password.")
	ErrEmailNotConfirmed = NewAPIError(http.StatusForbidden,
		"email_not_confirmed", "Email not confirmed. Please verify your email before signing in.")
	ErrEmailTaken = NewAPIError(http.StatusConflict,
		"email_taken", "An account with this email already exists.")
	ErrAlreadyConfirmed = NewAPIError(http.StatusConflict,
		"already_confirmed", "This email has already been confirmed. You can sign in now.")
	ErrOTPExpired = NewAPIError(http.StatusGone,
		"otp_expired", "Email link has expired. Please request a new verification email.")
	ErrOTPInvalid = NewAPIError(http.StatusUnauthorized,
		"otp_invalid", "Verification token is invalid or has been used.")
	ErrResendThrottled = NewAPIError(http.StatusTooManyRequests,
		"resend_throttled", "A verification email was sent recently. Please wait before retrying.")
	ErrInvalidRefresh = NewAPIError(http.StatusUnauthorized,
		"invalid_refresh_token", "Refresh token is invalid, expired or revoked.")
	ErrUnauthorized = NewAPIError(http.StatusUnauthorized,
		"unauthorized", "Authentication required.")
	ErrProfileExists = NewAPIError(http.StatusConflict,
		"already_exists", "A profile already exists for this user.")
	ErrNotFound = NewAPIError(http.StatusNotFound,
		"not_found", "The requested resource does not exist.")
	ErrValidation = NewAPIError(http.StatusUnprocessableEntity,
		"validation_failed", "One or more fields failed validation.")
	ErrServerError = NewAPIError(http.StatusInternalServerError,
		"server_error", "An unexpected error occurred.")
)
