package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a HyphenError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *HyphenError {
	if err == nil {
		return nil
	}

	// Keep location and context of a wrapped HyphenError
	var he *HyphenError
	if errors.As(err, &he) {
		return &HyphenError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       he,
			Context:     copyContext(he.Context),
			Source:      he.Source,
			Line:        he.Line,
			Recoverable: he.Recoverable,
		}
	}

	return &HyphenError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeParse,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *HyphenError {
	he := Wrap(err, ErrorTypeIO, code, message)
	if he != nil {
		he.Recoverable = false
	}
	return he
}

// WrapParse wraps an error as a parse error at source:line
func WrapParse(err error, source string, line int) *HyphenError {
	he := Wrap(err, ErrorTypeParse, CodeTexParse, "invalid dictionary entry")
	if he == nil {
		return nil
	}
	return he.WithLocation(source, line)
}

func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

// As is errors.As, re-exported so callers need only this package.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
