package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field returns an error instance that wraps the original error with
// additional information. It returns `nil` if provided error is `nil`.
//
// Use Go naming for the field name, for example Recipient or Amount. When
// err is itself a field error, for example the result of validating a
// nested Signature, the paths are joined with a dot (Signature.R).
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}

	if inner, ok := err.(*fieldError); ok {
		desc := inner.desc
		if description != "" {
			desc = joinDesc(description, desc)
		}
		return &fieldError{
			parent: inner.parent,
			path:   fieldName + "." + inner.path,
			desc:   desc,
		}
	}

	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &fieldError{
		parent: err,
		path:   fieldName,
		desc:   description,
	}
}

func joinDesc(outer, inner string) string {
	if inner == "" {
		return outer
	}
	return outer + ": " + inner
}

// AppendField is a shortcut function to club together error(s) with a given
// field error. Multi errors are unpacked so that every element carries the
// field path.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	if u, ok := fieldErrOrNil.(unpacker); ok {
		for _, e := range u.Unpack() {
			errorsOrNil = Append(errorsOrNil, Field(fieldName, e, ""))
		}
		return errorsOrNil
	}
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	path   string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.path, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.path, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// Field returns the full dotted path of the field.
func (err *fieldError) Field() string {
	return err.path
}

// FieldErrors returns the list of all errors that are created for the given
// field or any of its nested fields. Asking for Signature returns errors of
// Signature and Signature.R alike.
func FieldErrors(err error, fieldName string) []error {
	var res []error
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && matchesPath(f.Field(), fieldName) {
			return append(res, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}

func matchesPath(path, fieldName string) bool {
	return path == fieldName || strings.HasPrefix(path, fieldName+".")
}

type fielder interface {
	// Field returns the field path that this error is created for.
	Field() string
}
