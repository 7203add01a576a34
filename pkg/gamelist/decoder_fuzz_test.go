package gamelist_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
	"github.com/twinfer/pcsx2-gamelist/testutil"
)

// FuzzDecode checks that arbitrary input never panics and that the cursor
// always stays inside the buffer.
func FuzzDecode(f *testing.F) {
	seed := testutil.NewCacheBuilder().ValidHeader()
	for _, r := range testutil.SampleRecords() {
		seed.Record(r)
	}
	f.Add(seed.Bytes(f))
	f.Add([]byte{0x47, 0x4C, 0x43, 0x45, 0x22, 0, 0, 0})
	f.Add([]byte{0x47, 0x4C, 0x43})
	f.Add([]byte{0x47, 0x4C, 0x43, 0x45, 0x22, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF})

	logger := slog.New(slog.DiscardHandler)
	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := gamelist.NewDecoder(data, gamelist.WithLogger(logger))
		if err != nil {
			if len(data) >= gamelist.HeaderSize {
				t.Fatalf("header rejected for %d byte buffer: %v", len(data), err)
			}
			return
		}

		records := d.DecodeAll(context.Background())
		if records == nil {
			t.Fatal("DecodeAll returned nil")
		}
		if off := d.Offset(); off < gamelist.HeaderSize || off > len(data) {
			t.Fatalf("offset %d outside [%d, %d]", off, gamelist.HeaderSize, len(data))
		}
		if d.Err() == nil && d.Offset() != len(data) {
			t.Fatalf("clean stop at %d before end %d", d.Offset(), len(data))
		}
		if floor := gamelist.HeaderSize + len(records)*gamelist.MinRecordSize; d.Offset() < floor {
			t.Fatalf("offset %d below minimum %d for %d records", d.Offset(), floor, len(records))
		}
	})
}
