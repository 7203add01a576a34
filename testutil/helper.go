// Package testutil builds game list cache fixtures for tests.
package testutil

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

// CacheBuilder writes cache bytes in the on-disk layout.
type CacheBuilder struct {
	buf    *bytes.Buffer
	writer *kaitai.Writer
	err    error
	ends   []int // offset after each record
}

// NewCacheBuilder starts an empty buffer.
func NewCacheBuilder() *CacheBuilder {
	buf := bytes.NewBuffer(nil)
	return &CacheBuilder{buf: buf, writer: kaitai.NewWriter(buf)}
}

// Header writes a signature and version.
func (b *CacheBuilder) Header(signature, version uint32) *CacheBuilder {
	b.u32(signature)
	b.u32(version)
	return b
}

// ValidHeader writes the supported signature and version.
func (b *CacheBuilder) ValidHeader() *CacheBuilder {
	return b.Header(gamelist.Signature, gamelist.Version)
}

// Record writes r with UTF-8 text.
func (b *CacheBuilder) Record(r gamelist.Record) *CacheBuilder {
	b.Text([]byte(r.Path))
	b.Text([]byte(r.Serial))
	b.Text([]byte(r.Title))
	b.Text([]byte(r.TitleSort))
	b.Text([]byte(r.TitleEn))
	b.u8(r.Type)
	b.u8(r.Region)
	b.u64(r.TotalSize)
	b.u64(r.LastModifiedTime)
	b.u32(r.CRC)
	b.u8(r.CompatibilityRating)
	b.ends = append(b.ends, b.buf.Len())
	return b
}

// Text writes a length-prefixed byte string without any validation.
func (b *CacheBuilder) Text(raw []byte) *CacheBuilder {
	b.u32(uint32(len(raw)))
	if b.err == nil {
		b.err = b.writer.WriteBytes(raw)
	}
	return b
}

// Raw appends bytes verbatim.
func (b *CacheBuilder) Raw(raw ...byte) *CacheBuilder {
	if b.err == nil {
		b.err = b.writer.WriteBytes(raw)
	}
	return b
}

// U32 appends a little-endian u32.
func (b *CacheBuilder) U32(v uint32) *CacheBuilder {
	b.u32(v)
	return b
}

// RecordEnds returns the offset just past each record written with Record.
func (b *CacheBuilder) RecordEnds() []int {
	return append([]int(nil), b.ends...)
}

// Bytes returns the encoded buffer, failing t on any write error.
func (b *CacheBuilder) Bytes(t testing.TB) []byte {
	t.Helper()
	if b.err != nil {
		t.Fatalf("building cache fixture: %v", b.err)
	}
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *CacheBuilder) u8(v uint8) {
	if b.err == nil {
		b.err = b.writer.WriteU1(v)
	}
}

func (b *CacheBuilder) u32(v uint32) {
	if b.err == nil {
		b.err = b.writer.WriteU4le(v)
	}
}

func (b *CacheBuilder) u64(v uint64) {
	if b.err == nil {
		b.err = b.writer.WriteU8le(v)
	}
}

// SampleRecords returns a few realistic records.
func SampleRecords() []gamelist.Record {
	return []gamelist.Record{
		{
			Path:                "/games/ps2/Shadow of the Colossus.iso",
			Serial:              "SCUS-97472",
			Title:               "Shadow of the Colossus",
			TitleSort:           "Shadow of the Colossus",
			TitleEn:             "Shadow of the Colossus",
			Type:                1,
			Region:              1,
			TotalSize:           4_380_000_000,
			LastModifiedTime:    1_699_000_000,
			CRC:                 0x1A2B3C4D,
			CompatibilityRating: 6,
		},
		{
			Path:                "/games/ps2/ico.chd",
			Serial:              "SCES-50760",
			Title:               "ICO",
			TitleSort:           "ICO",
			TitleEn:             "ICO",
			Type:                1,
			Region:              4,
			TotalSize:           650_000_000,
			LastModifiedTime:    1_690_000_000,
			CRC:                 0xCAFEBABE,
			CompatibilityRating: 5,
		},
		{
			Path:                "/games/ps2/homebrew.elf",
			Serial:              "",
			Title:               "",
			Type:                0,
			Region:              0,
			TotalSize:           123_456,
			LastModifiedTime:    1_700_000_500,
			CRC:                 0,
			CompatibilityRating: 0,
		},
	}
}

// RecordsDiff reports the difference between two record lists, or "".
// A nil list equals an empty one.
func RecordsDiff(want, got []gamelist.Record) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}
