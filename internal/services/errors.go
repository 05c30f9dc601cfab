package services

import (
	"errors"
	"fmt"
)

// ErrorCode classifies input validation failures.
type ErrorCode string

const (
	ErrCodeMissingField        ErrorCode = "MISSING_FIELD"
	ErrCodeTooShort            ErrorCode = "TOO_SHORT"
	ErrCodeJunkInput           ErrorCode = "JUNK_INPUT"
	ErrCodeParameterOutOfRange ErrorCode = "PARAMETER_OUT_OF_RANGE"
)

var (
	ErrEmbeddingService  = errors.New("EMBEDDING_SERVICE_ERROR")
	ErrGenerationService = errors.New("GENERATION_SERVICE_ERROR")
	ErrAuditParse        = errors.New("AUDIT_PARSE_ERROR")
	ErrUnexpected        = errors.New("UNEXPECTED_ERROR")
)

// ValidationError is a client-caused rejection; the caller can fix it by resubmitting.
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code ErrorCode, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// Stage names used in errors, logs, metrics and spans.
const (
	StageValidate = "validate"
	StageScore    = "score"
	StageRetrieve = "retrieve"
	StageAudit    = "audit"
)

// PipelineError is an infrastructure failure at a named stage. Err wraps one of
// the sentinel errors above so callers can classify with errors.Is.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Code returns the sentinel name of the wrapped failure.
func (e *PipelineError) Code() string {
	for _, sentinel := range []error{ErrEmbeddingService, ErrGenerationService, ErrAuditParse} {
		if errors.Is(e.Err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrUnexpected.Error()
}
