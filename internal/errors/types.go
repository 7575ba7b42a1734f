package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeStore      ErrorType = "store"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	CodePatternEmpty        = "ERR_PATTERN_EMPTY"
	CodePatternLeadingDigit = "ERR_PATTERN_LEADING_DIGIT"
	CodeCorpusSealed        = "ERR_CORPUS_SEALED"
	CodeTexParse            = "ERR_TEX_PARSE"
	CodeDictRead            = "ERR_DICT_READ"
	CodeDictNotFound        = "ERR_DICT_NOT_FOUND"
	CodeLanguageInvalid     = "ERR_LANGUAGE_INVALID"
	CodeConfigInvalid       = "ERR_CONFIG_INVALID"
	CodeStore               = "ERR_STORE"
	CodeHTMLParse           = "ERR_HTML_PARSE"
	CodeInvalidRequest      = "ERR_INVALID_REQUEST"
	CodeInputRead           = "ERR_INPUT_READ"
	CodeInternal            = "ERR_INTERNAL"
)

// HyphenError is a structured error type with context.
type HyphenError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Source      string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *HyphenError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Source != "" {
		location := e.Source
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *HyphenError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *HyphenError) Is(target error) bool {
	var t *HyphenError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *HyphenError) WithContext(key string, value interface{}) *HyphenError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds source location information.
func (e *HyphenError) WithLocation(source string, line int) *HyphenError {
	e.Source = source
	e.Line = line

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *HyphenError {
	return &HyphenError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewParseError creates a dictionary source parse error.
func NewParseError(code, message string, cause error) *HyphenError {
	return &HyphenError{
		Type:        ErrorTypeParse,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *HyphenError {
	return &HyphenError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *HyphenError {
	return &HyphenError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewStoreError creates a dictionary store error.
func NewStoreError(message string, cause error) *HyphenError {
	return &HyphenError{
		Type:    ErrorTypeStore,
		Code:    CodeStore,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *HyphenError {
	return &HyphenError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var he *HyphenError
	if errors.As(err, &he) {
		return he.Recoverable
	}

	return false
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsIO checks if an error is an I/O error.
func IsIO(err error) bool {
	return hasType(err, ErrorTypeIO)
}

// HasCode checks whether any HyphenError in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var he *HyphenError
		if !errors.As(err, &he) {
			return false
		}
		if he.Code == code {
			return true
		}
		err = he.Cause
	}

	return false
}

func hasType(err error, t ErrorType) bool {
	var he *HyphenError
	if errors.As(err, &he) {
		return he.Type == t
	}

	return false
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// Handle logs err at a level matching its type. Recoverable errors are
// warnings.
func Handle(ctx context.Context, logger Logger, err error) {
	if err == nil || logger == nil {
		return
	}

	var he *HyphenError
	if !errors.As(err, &he) {
		logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", he.Type, "code", he.Code}
	if he.Source != "" {
		fields = append(fields, "source", he.Source, "line", he.Line)
	}
	if he.Recoverable {
		logger.Warn(ctx, he, "Recoverable error occurred", fields...)
		return
	}
	logger.Error(ctx, he, "Error occurred", fields...)
}
