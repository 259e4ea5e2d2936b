// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// The compile pipeline surfaces three domain failures through this package:
// ErrCodeInvalidOverride (override load or execution failed),
// ErrCodeStackCollision (user stacks or parameters clash with generated ones)
// and ErrCodePrerequisite (a prior build or pull step is missing).
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInvalidOverride,
//	    "executing overrides failed",
//	    cause,
//	    map[string]any{
//	        "details":    cause.Error(),
//	        "resolution": "check the override file for errors",
//	    },
//	)
package errors
