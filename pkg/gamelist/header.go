package gamelist

import "fmt"

const (
	// Signature is "GLCE" read as a little-endian u32.
	Signature uint32 = 0x45434C47
	// Version is the only cache layout this package understands.
	Version uint32 = 34
	// HeaderSize is the byte length of signature plus version.
	HeaderSize = 8
)

// Header field names used in mismatches and logs.
const (
	FieldSignature = "signature"
	FieldVersion   = "version"
)

// Header is the fixed prefix of a cache file.
type Header struct {
	Signature uint32 `json:"signature" yaml:"signature"`
	Version   uint32 `json:"version" yaml:"version"`
}

// Header reads the signature and version at the current offset.
func (c *Cursor) Header() (Header, error) {
	if err := c.ensure(HeaderSize); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrHeaderTooShort, err)
	}
	sig, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	ver, err := c.U32()
	if err != nil {
		return Header{}, err
	}
	return Header{Signature: sig, Version: ver}, nil
}

// ReadHeader reads the header at offset 0 of buf.
func ReadHeader(buf []byte) (Header, error) {
	return NewCursor(buf).Header()
}

// Mismatches lists each header field that differs from what this package
// expects. An empty result means the header is fully supported.
func (h Header) Mismatches() []HeaderMismatch {
	var out []HeaderMismatch
	if h.Signature != Signature {
		out = append(out, HeaderMismatch{Field: FieldSignature, Expected: Signature, Actual: h.Signature})
	}
	if h.Version != Version {
		out = append(out, HeaderMismatch{Field: FieldVersion, Expected: Version, Actual: h.Version})
	}
	return out
}

// Supported reports whether both header fields match.
func (h Header) Supported() bool {
	return h.Signature == Signature && h.Version == Version
}
