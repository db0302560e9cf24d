/*
Package errors implements the error kinds used across the payment channel
code.

Every failure returned by this module wraps one of the root errors declared
in this package. Root errors carry a stable numeric code so that clients can
tell the rejection reason apart without parsing messages. Use
Register(code, description) to declare a new root error and ErrXyz.New or
Wrap(ErrXyz, "...") at the point of failure to attach context.

A stack trace is recorded on the first wrap. Use fmt with
	%s to print the message
	%+v to print the message followed by the stack trace
*/
package errors
