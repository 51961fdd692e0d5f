package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrPathEscapes indicates a relative path that resolves outside its root
	ErrPathEscapes = errors.New("path escapes root directory")

	// ErrDuplicatePath indicates two entries map to the same relative path
	ErrDuplicatePath = errors.New("duplicate path")
)

// ConfigError reports an invalid or missing build setting.
// It is always raised before any output I/O takes place.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error for %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config error for %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// NotFoundError indicates the source directory does not exist
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// PermissionError indicates an entry of the source tree could not be read
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// UnknownFormatError indicates a format name absent from the registry
type UnknownFormatError struct {
	Name  string
	Known []string
}

func (e *UnknownFormatError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown format %q", e.Name)
	}
	return fmt.Sprintf("unknown format %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// RenderError reports the source path a renderer failed on
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError
func NewRenderError(path string, err error) *RenderError {
	return &RenderError{
		Path: path,
		Err:  err,
	}
}

// WriteError reports a failure to materialize the output tree
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a new WriteError
func NewWriteError(path string, err error) *WriteError {
	return &WriteError{
		Path: path,
		Err:  err,
	}
}

// PortInUseError indicates the dev server port is already bound
type PortInUseError struct {
	Port int
	Err  error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use", e.Port)
}

func (e *PortInUseError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is fatal before any I/O
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	var fmtErr *UnknownFormatError
	return errors.As(err, &cfgErr) || errors.As(err, &fmtErr)
}
