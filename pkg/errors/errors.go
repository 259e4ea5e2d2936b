// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInvalidOverride indicates customer override code could not be
	// loaded or failed while running. Fatal to the current compile only.
	ErrCodeInvalidOverride ErrorCode = "INVALID_OVERRIDE"
	// ErrCodeStackCollision indicates a user-defined stack, stack resource or
	// stack parameter clashes with a generated one.
	ErrCodeStackCollision ErrorCode = "STACK_COLLISION"
	// ErrCodePrerequisite indicates a required prior build or pull step is missing.
	ErrCodePrerequisite ErrorCode = "PREREQUISITE_MISSING"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// ContextString returns the context value stored under key as a string,
// or an empty string when it is absent or not a string.
func (e *StructuredError) ContextString(key string) string {
	if e == nil || e.Context == nil {
		return ""
	}
	s, _ := e.Context[key].(string)
	return s
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// As returns the first StructuredError in err's chain.
func As(err error) (*StructuredError, bool) {
	var se *StructuredError
	if !stderrors.As(err, &se) {
		return nil, false
	}
	return se, true
}

// HasCode reports whether err, or any error it wraps, is a StructuredError
// with the given code.
func HasCode(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}
