// Package errors provides structured error handling for carflow
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeFileNotFound represents a missing input file
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	// ErrorTypeInvalidFormat represents input that is not valid JSON
	ErrorTypeInvalidFormat ErrorType = "invalid_format"
	// ErrorTypeParse represents a delimited table that cannot be tokenized
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeUnexpected represents every other failure
	ErrorTypeUnexpected ErrorType = "unexpected"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Reason returns the most specific description of what went wrong: the
// underlying cause when there is one, the message otherwise.
func (e *Error) Reason() string {
	if e.Cause != nil {
		var inner *Error
		if errors.As(e.Cause, &inner) {
			return inner.Reason()
		}
		return e.Cause.Error()
	}
	return e.Message
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Path returns the "path" detail, or "" when none was attached.
func (e *Error) Path() string {
	p, _ := e.Details["path"].(string)
	return p
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Details: existingErr.Details,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Classify wraps a file-opening error, mapping a missing path to
// ErrorTypeFileNotFound and everything else to ErrorTypeUnexpected.
func Classify(err error, path string) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Wrap(err, ErrorTypeFileNotFound, "file not found").WithDetail("path", path)
	}
	return Wrap(err, ErrorTypeUnexpected, "failed to open file").WithDetail("path", path)
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// ErrorTypeUnexpected for foreign errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnexpected
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
