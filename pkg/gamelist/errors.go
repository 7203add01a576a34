package gamelist

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the decoder.
var (
	// ErrTruncatedBuffer matches every *TruncatedBufferError.
	ErrTruncatedBuffer = errors.New("truncated buffer")
	// ErrHeaderTooShort is returned when the buffer cannot hold the 8-byte header.
	ErrHeaderTooShort = errors.New("cache header too short")
	// ErrInvalidOffset is returned by the offset-based readers for a negative offset.
	ErrInvalidOffset = errors.New("invalid offset")
)

// TruncatedBufferError reports a read that needed more bytes than remained.
type TruncatedBufferError struct {
	Offset    int // where the failed read started
	Needed    int
	Available int
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("truncated buffer at offset %d: need %d bytes, %d available", e.Offset, e.Needed, e.Available)
}

func (e *TruncatedBufferError) Is(target error) bool {
	return target == ErrTruncatedBuffer
}

// RecordError wraps the failure of a single record.
type RecordError struct {
	Offset int    // start of the record
	Field  string // field being read when the record failed
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at offset %d: field %s: %v", e.Offset, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// HeaderMismatch is an advisory difference between the expected and the
// actual header value. It never stops decoding.
type HeaderMismatch struct {
	Field    string
	Expected uint32
	Actual   uint32
}

func (m HeaderMismatch) String() string {
	if m.Field == FieldSignature {
		return fmt.Sprintf("%s expected %#x but found %#x", m.Field, m.Expected, m.Actual)
	}
	return fmt.Sprintf("%s expected %d but found %d", m.Field, m.Expected, m.Actual)
}
