package stjserr

import (
	"fmt"
	"strings"

	"martianoff/stjs/internal/source"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeResolution  ErrorType = "ResolutionError"
	TypeUnsupported ErrorType = "UnsupportedError"
	TypeGeneration  ErrorType = "GenerationError"
	TypeCycle       ErrorType = "CycleError"
	TypeIO          ErrorType = "IOError"
	TypeConfig      ErrorType = "ConfigError"
)

// StjsError is the interface for all compiler errors.
type StjsError interface {
	error
	Type() ErrorType
}

// Positioned is implemented by errors that point into a source file.
type Positioned interface {
	Position() source.Position
}

// BaseError provides common fields for compiler errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// Diagnostic is an error attached to a source position.
type Diagnostic struct {
	BaseError
	Pos source.Position
}

func (e *Diagnostic) Error() string {
	if e.Pos.IsValid() || e.Pos.File != "" {
		return fmt.Sprintf("[%s] %s %s", e.ErrType, e.Pos, e.Msg)
	}
	return e.BaseError.Error()
}

func (e *Diagnostic) Position() source.Position {
	return e.Pos
}

// Message returns the bare message without category or position.
func (e *Diagnostic) Message() string {
	return e.Msg
}

// NewResolutionError reports a reference that cannot be mapped to a symbol.
func NewResolutionError(pos source.Position, format string, args ...any) *Diagnostic {
	return newDiagnostic(TypeResolution, pos, format, args...)
}

// NewUnsupportedError reports a construct without a target-language equivalent.
func NewUnsupportedError(pos source.Position, format string, args ...any) *Diagnostic {
	return newDiagnostic(TypeUnsupported, pos, format, args...)
}

// NewGenerationError reports a contributor that cannot legally emit for a node.
func NewGenerationError(pos source.Position, format string, args ...any) *Diagnostic {
	return newDiagnostic(TypeGeneration, pos, format, args...)
}

// NewIOError wraps a file system failure for one unit.
func NewIOError(pos source.Position, err error) *Diagnostic {
	return newDiagnostic(TypeIO, pos, "%v", err)
}

func newDiagnostic(t ErrorType, pos source.Position, format string, args ...any) *Diagnostic {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Diagnostic{
		BaseError: BaseError{Msg: msg, ErrType: t},
		Pos:       pos,
	}
}

// ConfigError reports an invalid project configuration.
type ConfigError struct {
	BaseError
	Path string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.ErrType, e.Path, e.Msg)
	}
	return e.BaseError.Error()
}

// NewConfigError creates a ConfigError for the given file.
func NewConfigError(path, format string, args ...any) *ConfigError {
	return &ConfigError{
		BaseError: BaseError{Msg: fmt.Sprintf(format, args...), ErrType: TypeConfig},
		Path:      path,
	}
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if se, ok := m.Errors[0].(StjsError); ok {
			return se.Type()
		}
	}
	return "MultiError"
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}
