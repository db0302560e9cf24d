// Package assert provides the small set of test assertions used across the
// ledger and channel packages. Every helper stops the test on failure.
package assert

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/iov-one/unichan/errors"
)

// Tester is the minimal subset of testing.TB needed to run most assert commands
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil. Typed nil pointers, slices
// and maps stored in an interface are considered nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of errors that carry one.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails the test if two values are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// AmountEqual fails the test if given amount is not equal to want. A nil
// amount is only equal to zero.
func AmountEqual(t Tester, want int64, got *big.Int) {
	t.Helper()
	if got == nil {
		if want != 0 {
			t.Fatalf("want amount %d, got nil", want)
		}
		return
	}
	if !got.IsInt64() || got.Int64() != want {
		t.Fatalf("want amount %d, got %s", want, got)
	}
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError ensures that err carries exactly one error for the field (or
// any of its nested fields) and that this error is of the wanted kind. Use
// nil as want to ensure the field is free of errors.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	if want == nil {
		if len(errs) != 0 {
			logErrors(t, errs)
			t.Fatalf("want no %q error, got %d", fieldName, len(errs))
		}
		return
	}

	switch len(errs) {
	case 0:
		t.Fatalf("no %q error found in %v", fieldName, err)
	case 1:
		if !want.Is(errs[0]) {
			t.Fatalf("unexpected %q error: %q", fieldName, errs[0])
		}
	default:
		logErrors(t, errs)
		t.Fatalf("want one %q error, got %d", fieldName, len(errs))
	}
}

func logErrors(t testing.TB, errs []error) {
	t.Helper()
	for i, e := range errs {
		t.Logf("\terror %d: %q", i+1, e)
	}
}

// IsErr fails the test unless got is of the same kind as want. A nil want
// only matches a nil got.
func IsErr(t testing.TB, want, got error) {
	t.Helper()

	if want == got {
		return
	}
	if e, ok := want.(*errors.Error); ok && e.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
