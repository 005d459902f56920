// Package errors provides standardized error handling for imgview.
// It defines the error kinds the viewer distinguishes (cancelled scans,
// unreadable directories, undecodable images, bad configuration) and helper
// functions for consistent error creation, wrapping, and classification.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrCancelled     = &ApplicationError{msg: "scan cancelled", err: context.Canceled, kind: Cancelled}
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	// Scan lifecycle
	Cancelled
	// Image error kinds
	DecodeFailed
	// Config error kinds
	InvalidConfig
	ThemeNotFound
)

var kindNames = map[ErrorKind]string{
	Unknown:          "unknown",
	FileNotFound:     "file_not_found",
	FileAccessDenied: "file_access_denied",
	InvalidPath:      "invalid_path",
	Cancelled:        "cancelled",
	DecodeFailed:     "decode_failed",
	InvalidConfig:    "invalid_config",
	ThemeNotFound:    "theme_not_found",
}

// String returns a stable, log-friendly name for the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file and directory access
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// DecodeError is returned when a file matched the image allow-list but
// could not be decoded as an image.
type DecodeError struct {
	ApplicationError
	path string
	mime string
}

// NewDecodeError creates a new decode error. mime is the content type
// sniffed from the file, or empty when it could not be determined.
func NewDecodeError(path, mime string, err error) *DecodeError {
	return &DecodeError{
		ApplicationError: ApplicationError{
			msg:  "cannot decode image",
			err:  err,
			kind: DecodeFailed,
		},
		path: path,
		mime: mime,
	}
}

// Error returns the decode error message
func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.msg, e.path)
	if e.mime != "" {
		msg += " (" + e.mime + ")"
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

// Path returns the image path
func (e *DecodeError) Path() string {
	return e.path
}

// MIME returns the sniffed content type of the file
func (e *DecodeError) MIME() string {
	return e.mime
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// NewKind creates a new error of the given kind
func NewKind(kind ErrorKind, msg string, err error) error {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first typed error in err's chain whose
// kind is not Unknown. Plain context cancellation maps to Cancelled.
func KindOf(err error) ErrorKind {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
	}
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}
	return Unknown
}

// IsCancelled checks if the error reports a cancelled scan
func IsCancelled(err error) bool {
	return err != nil && KindOf(err) == Cancelled
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileAccessDenied
	}
	return false
}

// IsAccessOrNotFound reports whether a directory could not be scanned
// because it is missing, unreadable, or not a directory at all.
func IsAccessOrNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		switch fileErr.Kind() {
		case FileNotFound, FileAccessDenied, InvalidPath:
			return true
		}
	}
	return false
}

// IsDecodeError checks if the error is an image decode error
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
