package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a model, record or other resource that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents an invalid request body or query parameter.
// Field-level record problems use RecordValidationError instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// FieldError is one problem found in a record document, keyed by field slug
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

// RecordValidationError carries every field error found in one document.
// It is never returned with an empty list.
type RecordValidationError struct {
	Errors []FieldError
}

func (e *RecordValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "record validation failed: " + strings.Join(parts, "; ")
}

func (e *RecordValidationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *RecordValidationError) Code() string {
	return "RECORD_VALIDATION_FAILED"
}

// NewRecordValidationError creates a RecordValidationError, or returns nil for an empty list
func NewRecordValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &RecordValidationError{Errors: errs}
}

// PermissionError represents a caller outside the owning workspace.
// Lookups of a missing model or record return it too, so existence is never revealed.
type PermissionError struct {
	Action   string
	Resource string
	Message  string
}

func (e *PermissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permission denied: cannot %s %s", e.Action, e.Resource)
}

func (e *PermissionError) HTTPStatus() int {
	return http.StatusForbidden
}

func (e *PermissionError) Code() string {
	return "PERMISSION_DENIED"
}

// NewNotMemberError is the PermissionError for callers outside a workspace
func NewNotMemberError() *PermissionError {
	return &PermissionError{Action: "access", Resource: "workspace", Message: "Not a member of workspace"}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// QuotaError is returned when a model already holds its maximum number of records
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return "Record limit reached. Upgrade plan"
}

func (e *QuotaError) HTTPStatus() int {
	return http.StatusPaymentRequired
}

func (e *QuotaError) Code() string {
	return "LIMIT_REACHED"
}

// NewQuotaError creates a new QuotaError
func NewQuotaError(limit int) *QuotaError {
	return &QuotaError{Limit: limit}
}

// ConflictError represents a conflict with existing data
type ConflictError struct {
	Resource string
	Field    string
	Value    string
	Message  string
	Status   int
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return "CONFLICT"
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// NewBadRequestConflict creates a ConflictError reported as 400 with a fixed message,
// for endpoints whose clients expect duplicates to be a plain bad request
func NewBadRequestConflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message, Status: http.StatusBadRequest}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// IsRecordValidation checks if an error is a RecordValidationError
func IsRecordValidation(err error) bool {
	var rv *RecordValidationError
	return errors.As(err, &rv)
}

// FieldErrorsOf returns the field errors carried by err, or nil
func FieldErrorsOf(err error) []FieldError {
	var rv *RecordValidationError
	if errors.As(err, &rv) {
		return rv.Errors
	}
	return nil
}

// IsPermission checks if an error is a PermissionError
func IsPermission(err error) bool {
	var permission *PermissionError
	return errors.As(err, &permission)
}

// IsUnauthorized checks if an error is an UnauthorizedError
func IsUnauthorized(err error) bool {
	var unauthorized *UnauthorizedError
	return errors.As(err, &unauthorized)
}

// IsQuota checks if an error is a QuotaError
func IsQuota(err error) bool {
	var quota *QuotaError
	return errors.As(err, &quota)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse.
// Record validation failures expose their field list as details.
func ToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
	if fieldErrs := FieldErrorsOf(err); fieldErrs != nil {
		resp.Message = "validation failed"
		resp.Details = fieldErrs
	}
	return resp
}
