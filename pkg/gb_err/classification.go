// pkg/gb_err/classification.go
//
// Error classification with exit codes for the greenboot CLI.

package gb_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation failures (exit 2)
	CategoryValidation
	// CategoryHealthCheck - required health checks failed (exit 1)
	CategoryHealthCheck
	// CategoryDependency - Missing dependencies (exit 1)
	CategoryDependency
	// CategoryPermission - Permission denied (exit 1)
	CategoryPermission
	// CategoryInternal - Bugs in greenboot itself (exit 3)
	CategoryInternal
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil, the category code for classified errors, 2 for expected
// user errors and 1 for everything else.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 2
	}

	return 1
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewHealthCheckError marks a failed health-check verdict.
func NewHealthCheckError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryHealthCheck,
		Message:  message,
		Cause:    cause,
	}
}

// NewDependencyError creates an error for missing dependencies
func NewDependencyError(dependency, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category: CategoryDependency,
		Message: fmt.Sprintf("%s is required for %s but not found",
			dependency, operation),
		Remediation: remediation,
	}
}

// NewFilesystemError creates an error for filesystem issues
func NewFilesystemError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySystem,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewPermissionError creates an error for permission issues
func NewPermissionError(resource, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category: CategoryPermission,
		Message: fmt.Sprintf("Permission denied: cannot %s %s",
			operation, resource),
		Remediation: remediation,
	}
}

// NewInternalError creates an error for greenboot bugs
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
	}
}
