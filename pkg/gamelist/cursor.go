package gamelist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"golang.org/x/text/encoding"
)

// Cursor reads little-endian primitives from an in-memory buffer.
//
// Every read checks the remaining length before touching the underlying
// stream, so a read that fails leaves the offset where it was.
type Cursor struct {
	buf    []byte
	stream *kaitai.Stream
	text   encoding.Encoding
}

// NewCursor returns a cursor at offset 0 that decodes text as UTF-8.
func NewCursor(buf []byte) *Cursor {
	return newCursor(buf, defaultEncoding)
}

func newCursor(buf []byte, text encoding.Encoding) *Cursor {
	return &Cursor{
		buf:    buf,
		stream: kaitai.NewStream(bytes.NewReader(buf)),
		text:   text,
	}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	pos, err := c.stream.Pos()
	if err != nil {
		// bytes.Reader never fails to report its position
		panic(fmt.Sprintf("gamelist: cursor position: %v", err))
	}
	return int(pos)
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.Offset() }

func (c *Cursor) seek(offset int) {
	if _, err := c.stream.Seek(int64(offset), io.SeekStart); err != nil {
		panic(fmt.Sprintf("gamelist: seek to %d: %v", offset, err))
	}
}

func (c *Cursor) ensure(n int) error {
	if avail := c.Remaining(); avail < n {
		return &TruncatedBufferError{Offset: c.Offset(), Needed: n, Available: avail}
	}
	return nil
}

// U8 reads one unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.ensure(1); err != nil {
		return 0, err
	}
	v, err := c.stream.ReadU1()
	if err != nil {
		return 0, fmt.Errorf("reading u8 at offset %d: %w", c.Offset(), err)
	}
	return v, nil
}

// U32 reads a 4-byte little-endian unsigned integer.
func (c *Cursor) U32() (uint32, error) {
	if err := c.ensure(4); err != nil {
		return 0, err
	}
	v, err := c.stream.ReadU4le()
	if err != nil {
		return 0, fmt.Errorf("reading u32 at offset %d: %w", c.Offset(), err)
	}
	return v, nil
}

// U64 reads an 8-byte little-endian unsigned integer.
func (c *Cursor) U64() (uint64, error) {
	if err := c.ensure(8); err != nil {
		return 0, err
	}
	v, err := c.stream.ReadU8le()
	if err != nil {
		return 0, fmt.Errorf("reading u64 at offset %d: %w", c.Offset(), err)
	}
	return v, nil
}

// Text reads a u32 byte count followed by that many bytes of text.
// Malformed byte sequences are replaced, never rejected. If the payload is
// cut short the cursor is moved back to the start of the length field.
func (c *Cursor) Text() (string, error) {
	start := c.Offset()
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	if avail := c.Remaining(); uint64(n) > uint64(avail) {
		payload := c.Offset()
		c.seek(start)
		return "", &TruncatedBufferError{Offset: payload, Needed: int(n), Available: avail}
	}
	raw, err := c.stream.ReadBytes(int(n))
	if err != nil {
		c.seek(start)
		return "", fmt.Errorf("reading %d text bytes at offset %d: %w", n, start+4, err)
	}
	return decodeText(c.text, raw), nil
}

// ReadU8 reads a byte at offset and returns it with the offset after it.
func ReadU8(buf []byte, offset int) (uint8, int, error) {
	return readAt(buf, offset, 1, (*Cursor).U8)
}

// ReadU32 reads a little-endian u32 at offset.
func ReadU32(buf []byte, offset int) (uint32, int, error) {
	return readAt(buf, offset, 4, (*Cursor).U32)
}

// ReadU64 reads a little-endian u64 at offset.
func ReadU64(buf []byte, offset int) (uint64, int, error) {
	return readAt(buf, offset, 8, (*Cursor).U64)
}

// ReadString reads length-prefixed UTF-8 text at offset.
func ReadString(buf []byte, offset int) (string, int, error) {
	return readAt(buf, offset, 4, (*Cursor).Text)
}

// readAt runs read against a fresh cursor placed at offset. minSize is the
// fewest bytes read can consume. On failure the returned offset is the one
// passed in.
func readAt[T any](buf []byte, offset, minSize int, read func(*Cursor) (T, error)) (T, int, error) {
	var zero T
	if offset < 0 {
		return zero, offset, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	if offset > len(buf) {
		return zero, offset, &TruncatedBufferError{Offset: offset, Needed: minSize, Available: 0}
	}
	c := NewCursor(buf)
	c.seek(offset)
	v, err := read(c)
	if err != nil {
		return zero, offset, err
	}
	return v, c.Offset(), nil
}
