// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package errors provides useful assert functions for handling errors on tests
package errors

import (
	"fmt"
	"testing"

	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

// AssertKind asserts that got is of same error kind as want.
func AssertKind(t *testing.T, got, want error) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Fatalf("got error[%v] differs from want[%v]", got, want)
	}
	if want == nil {
		return
	}
	var e2 *errors.Error
	if !errors.As(want, &e2) {
		t.Fatalf("want %v is not an *errors.Error", want)
	}

	AssertIsKind(t, got, e2.Kind)
}

// AssertIsKind asserts err is of kind k.
func AssertIsKind(t *testing.T, err error, k errors.Kind) {
	t.Helper()
	if !errors.IsKind(err, k) {
		t.Fatalf("error[%v] is not of kind %q", err, k)
	}
}

// Assert err is (contains, wraps, etc) target.
func Assert(t *testing.T, err, target error, args ...any) {
	t.Helper()
	fmtctx := ""

	if len(args) > 0 {
		fmtctx = fmt.Sprintf(args[0].(string), args[1:]...)
	}

	if !errors.Is(err, target) {
		t.Fatalf("error[%s] is not target[%s]%s", errstr(err), errstr(target), fmtctx)
	}
}

// AssertErrorList will check that the given err is an *errors.List
// and that all given errors on targets are contained on it
// using errors.Is.
func AssertErrorList(t *testing.T, err error, targets []error) {
	t.Helper()

	var errs *errors.List
	if !errors.As(err, &errs) {
		t.Fatalf("error %v doesn't match type %T", err, errs)
	}
	for _, target := range targets {
		Assert(t, err, target)
	}
}

func errstr(err error) string {
	if err == nil {
		return "<nil>"
	}
	if e, ok := err.(interface{ Detailed() string }); ok {
		return e.Detailed()
	}
	return err.Error()
}
