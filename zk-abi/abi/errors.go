package abi

import (
	"fmt"
	"strings"
)

// Kind categorizes a codec or boundary failure.
type Kind string

const (
	KindEncodingOverflow    Kind = "encoding_overflow"
	KindDecodingTruncated   Kind = "decoding_truncated"
	KindDecodingMalformed   Kind = "decoding_malformed"
	KindBoundaryCallFailure Kind = "boundary_call_failure"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrEncodingOverflow    = &Error{Kind: KindEncodingOverflow}
	ErrDecodingTruncated   = &Error{Kind: KindDecodingTruncated}
	ErrDecodingMalformed   = &Error{Kind: KindDecodingMalformed}
	ErrBoundaryCallFailure = &Error{Kind: KindBoundaryCallFailure}
)

// Error is the structured error returned by the codec, the conversion layer
// and the boundary client.
type Error struct {
	Cause  error
	Kind   Kind
	Record string
	Field  string
	Detail string
	// Slot is the record index inside a buffer, -1 when not applicable.
	Slot int
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))

	if e.Record != "" {
		b.WriteString(": ")
		b.WriteString(e.Record)
		if e.Slot >= 0 {
			fmt.Fprintf(&b, "[%d]", e.Slot)
		}
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind Kind, record string, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Record: record,
		Slot:   -1,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Overflow reports a record or batch that does not fit its declared layout.
func Overflow(record string, format string, args ...any) *Error {
	return newError(KindEncodingOverflow, record, format, args...)
}

// Truncated reports a buffer shorter than the layout requires.
func Truncated(record string, want, got int) *Error {
	return newError(KindDecodingTruncated, record, "need %d bytes, got %d", want, got)
}

// Malformed reports a field that does not form a valid value.
func Malformed(record, field string, cause error) *Error {
	return &Error{
		Kind:   KindDecodingMalformed,
		Record: record,
		Field:  field,
		Slot:   -1,
		Cause:  cause,
	}
}

// BoundaryFailure reports a host call that returned false.
func BoundaryFailure(call string) *Error {
	return newError(KindBoundaryCallFailure, "", "host rejected %s", call)
}

// AtSlot annotates err with the slot index when it is an *Error without one.
func AtSlot(err error, slot int) error {
	if e, ok := err.(*Error); ok && e.Slot < 0 {
		c := *e
		c.Slot = slot
		return &c
	}
	return err
}
