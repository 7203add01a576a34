package gamelist

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is the text encoding PCSX2 writes.
const DefaultEncoding = "UTF-8"

// unicode.UTF8 substitutes U+FFFD for invalid bytes instead of failing.
var defaultEncoding encoding.Encoding = unicode.UTF8

// lookupEncoding maps an encoding name to a decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8, nil
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "CP437", "IBM437":
		return charmap.CodePage437, nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "SHIFT_JIS", "SJIS":
		return japanese.ShiftJIS, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

// CheckEncoding reports whether name is a supported text encoding.
func CheckEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

func decodeText(enc encoding.Encoding, raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if enc == nil {
		enc = defaultEncoding
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(out)
}
