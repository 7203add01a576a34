package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
	"github.com/twinfer/pcsx2-gamelist/testutil"
)

func TestFilterMatch(t *testing.T) {
	records := testutil.SampleRecords()

	tests := []struct {
		expr    string
		serials []string
	}{
		{`serial != ""`, []string{"SCUS-97472", "SCES-50760"}},
		{`region == 4`, []string{"SCES-50760"}},
		{`title.startsWith("Shadow") && compatibility_rating >= 6`, []string{"SCUS-97472"}},
		{`path.endsWith(".elf")`, []string{""}},
		{`total_size > 1000000000`, []string{"SCUS-97472"}},
		{`total_size == 650000000u`, []string{"SCES-50760"}},
		{`media_type == 1`, []string{"SCUS-97472", "SCES-50760"}},
		{`media_type == 0 && last_modified_time > 1699999999`, []string{""}},
		{`crc == 0xCAFEBABE`, []string{"SCES-50760"}},
		{`false`, nil},
	}

	pool, err := NewPool()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := pool.Get(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, f.String())

			kept, err := Apply(f, records)
			require.NoError(t, err)
			var serials []string
			for _, r := range kept {
				serials = append(serials, r.Serial)
			}
			assert.Equal(t, tt.serials, serials)
		})
	}
}

func TestPoolCaches(t *testing.T) {
	pool, err := NewPool()
	require.NoError(t, err)

	a, err := pool.Get(`media_type == 1`)
	require.NoError(t, err)
	b, err := pool.Get(`media_type == 1`)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(`serial ==`)
	assert.Error(t, err)

	_, err = Compile(`unknown_field == 1`)
	assert.Error(t, err)

	_, err = Compile(`title`)
	assert.ErrorContains(t, err, "must evaluate to bool")
}

func TestActivation(t *testing.T) {
	vars := Activation(gamelist.Record{Serial: "SLUS-20062", Type: 2, Region: 1, CRC: 0xFFFFFFFF, TotalSize: 1 << 63})
	assert.Equal(t, "SLUS-20062", vars[gamelist.FieldSerial])
	assert.Equal(t, int64(2), vars[VarMediaType])
	assert.NotContains(t, vars, gamelist.FieldType)
	assert.Equal(t, int64(1), vars[gamelist.FieldRegion])
	assert.Equal(t, int64(0xFFFFFFFF), vars[gamelist.FieldCRC])
	assert.Equal(t, uint64(1<<63), vars[gamelist.FieldTotalSize])
	assert.Len(t, vars, len(gamelist.FieldNames))
}

func TestLargeUnsignedFields(t *testing.T) {
	records := []gamelist.Record{
		{Serial: "BIG", TotalSize: 1 << 63, LastModifiedTime: math.MaxUint64},
		{Serial: "SMALL", TotalSize: 1},
	}

	tests := []struct {
		expr    string
		serials []string
	}{
		{`total_size > 0`, []string{"BIG", "SMALL"}},
		{`total_size >= 9223372036854775808u`, []string{"BIG"}},
		{`last_modified_time == 18446744073709551615u`, []string{"BIG"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)

			kept, err := Apply(f, records)
			require.NoError(t, err)
			var serials []string
			for _, r := range kept {
				serials = append(serials, r.Serial)
			}
			assert.Equal(t, tt.serials, serials)
		})
	}
}
