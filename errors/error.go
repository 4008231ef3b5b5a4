// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package errors implements the error type used across tfgoal.
// Errors carry a Kind, a description and an optional underlying error.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind defines the kind of an error.
type Kind string

// Error is the tfgoal error type.
type Error struct {
	// Kind is the kind of error.
	Kind Kind

	// Description of the error.
	Description string

	// Err represents the underlying error.
	Err error
}

// Separator is the separator used between the error parts.
const Separator = ": "

// ErrInternal indicates an error that should never happen.
const ErrInternal Kind = "internal error"

// E builds an error value from its arguments.
// There must be at least one argument or E panics.
// The type of each argument determines its meaning:
//
//	errors.Kind
//		The kind of error.
//	error
//		The underlying error that triggered this one.
//	string
//		Treated as a format string for the error description. All arguments
//		after the format are used as its operands.
//
// Any other argument type before the format string makes E panic.
//
// If Kind is not specified, the Kind of the underlying error (if any) is
// promoted to this error.
func E(args ...any) error {
	if len(args) == 0 {
		panic("errors.E called with no args")
	}

	e := &Error{}

processArgs:
	for i, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case *Error:
			// keep a typed nil from becoming a non-nil error.
			if arg != nil {
				e.Err = arg
			}
		case error:
			e.Err = arg
		case string:
			if i+1 < len(args) {
				e.Description = fmt.Sprintf(arg, args[i+1:]...)
			} else {
				e.Description = arg
			}
			break processArgs
		default:
			panic(fmt.Errorf("errors.E called with unknown type %T", arg))
		}
	}

	if e.isEmpty() {
		if e.Err == nil {
			panic("errors.E called with empty error")
		}
		var prev *Error
		if stderrors.As(e.Err, &prev) {
			return prev
		}
		panic("errors.E called with only an underlying error")
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	if e.Kind == "" {
		e.Kind = prev.Kind
		prev.Kind = ""
	} else if prev.Kind == e.Kind {
		prev.Kind = ""
	}
	if prev.Description == e.Description {
		prev.Description = ""
	}
	if prev.isEmpty() {
		e.Err = prev.Err
	}
	return e
}

func (e *Error) isEmpty() bool {
	return e.Kind == "" && e.Description == ""
}

// Error returns the error message.
func (e *Error) Error() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, string(e.Kind))
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, Separator)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is tells if target is an *Error with the same kind as e.
// A target with no Kind matches by description.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" {
		return e.Kind == t.Kind
	}
	return t.Description != "" && e.Description == t.Description
}

// IsKind tells if err is of kind k.
// It returns false if err is nil or has no *errors.Error inside it.
// It recursively checks underlying and joined errors.
func IsKind(err error, k Kind) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *Error:
		if e.Kind == k {
			return true
		}
		return IsKind(e.Err, k)
	case interface{ Unwrap() []error }:
		for _, err := range e.Unwrap() {
			if IsKind(err, k) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsKind(e.Unwrap(), k)
	}
	return false
}

// Is is a shorthand for the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a shorthand for the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
