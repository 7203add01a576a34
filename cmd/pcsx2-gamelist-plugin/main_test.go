package main

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/redpanda-data/benthos/v4/public/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
	"github.com/twinfer/pcsx2-gamelist/testutil"
)

// --- Test Helpers ---

func newTestProcessor(t *testing.T, yamlConfig string) *GamelistProcessor {
	t.Helper()
	pConf, err := gamelistProcessorConfig().ParseYAML(yamlConfig, nil)
	require.NoError(t, err)

	processor, err := newGamelistProcessorFromConfig(pConf, service.MockResources())
	require.NoError(t, err)
	return processor
}

func sampleCache(t *testing.T) []byte {
	t.Helper()
	b := testutil.NewCacheBuilder().ValidHeader()
	for _, r := range testutil.SampleRecords() {
		b.Record(r)
	}
	return b.Bytes(t)
}

func structured(t *testing.T, msg *service.Message) map[string]any {
	t.Helper()
	require.NoError(t, msg.GetError())
	v, err := msg.AsStructured()
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func meta(t *testing.T, msg *service.Message, key string) string {
	t.Helper()
	v, ok := msg.MetaGet(key)
	require.True(t, ok, "missing metadata %s", key)
	return v
}

// --- Tests ---

func TestGamelistProcessor_Records(t *testing.T) {
	processor := newTestProcessor(t, "")
	ctx := context.Background()

	input := service.NewMessage(sampleCache(t))
	input.MetaSet("path", "/home/tester/.config/PCSX2/cache/gamelist.cache")

	batch, err := processor.Process(ctx, input)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	first := structured(t, batch[0])
	assert.Equal(t, "SCUS-97472", first[gamelist.FieldSerial])
	assert.Equal(t, "Shadow of the Colossus", first[gamelist.FieldTitle])
	assert.Equal(t, int64(0x1A2B3C4D), first[gamelist.FieldCRC])
	assert.Len(t, first, len(gamelist.FieldNames))

	assert.Equal(t, "0", meta(t, batch[0], metaRecordIndex))
	assert.Equal(t, "8", meta(t, batch[0], metaRecordOffset))
	assert.Equal(t, "SCUS-97472", meta(t, batch[0], metaSerial))
	assert.Equal(t, "34", meta(t, batch[0], metaCacheVersion))
	assert.Equal(t, "/home/tester/.config/PCSX2/cache/gamelist.cache", meta(t, batch[0], "path"),
		"input metadata is carried over")

	assert.Equal(t, "2", meta(t, batch[2], metaRecordIndex))
	assert.Equal(t, "", meta(t, batch[2], metaSerial), "an empty serial keeps its metadata key")
}

func TestGamelistProcessor_LargeUnsignedFields(t *testing.T) {
	processor := newTestProcessor(t, `filter: 'total_size > 0 && media_type == 2'`)

	b := testutil.NewCacheBuilder().ValidHeader()
	b.Record(gamelist.Record{Serial: "SLUS-99999", Type: 2, TotalSize: 1 << 63, LastModifiedTime: math.MaxUint64})

	batch, err := processor.Process(context.Background(), service.NewMessage(b.Bytes(t)))
	require.NoError(t, err)
	require.Len(t, batch, 1)

	out := structured(t, batch[0])
	assert.Equal(t, uint64(1<<63), out[gamelist.FieldTotalSize])
	assert.Equal(t, uint64(math.MaxUint64), out[gamelist.FieldLastModifiedTime])
	assert.Equal(t, int64(2), out[gamelist.FieldType])
}

func TestGamelistProcessor_SkipEmptySerial(t *testing.T) {
	processor := newTestProcessor(t, "skip_empty_serial: true")

	batch, err := processor.Process(context.Background(), service.NewMessage(sampleCache(t)))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "0", meta(t, batch[0], metaRecordIndex))
	assert.Equal(t, "1", meta(t, batch[1], metaRecordIndex))
}

func TestGamelistProcessor_Filter(t *testing.T) {
	processor := newTestProcessor(t, `filter: 'region == 4'`)

	batch, err := processor.Process(context.Background(), service.NewMessage(sampleCache(t)))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "SCES-50760", meta(t, batch[0], metaSerial))
	assert.Equal(t, "1", meta(t, batch[0], metaRecordIndex), "index counts every decoded record")
}

func TestGamelistProcessor_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"unknown encoding", "encoding: EBCDIC"},
		{"filter does not compile", "filter: 'serial =='"},
		{"filter is not boolean", "filter: 'title'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pConf, err := gamelistProcessorConfig().ParseYAML(tt.config, nil)
			require.NoError(t, err)
			_, err = newGamelistProcessorFromConfig(pConf, service.MockResources())
			assert.Error(t, err)
		})
	}
}

func TestGamelistProcessor_HeaderTooShort(t *testing.T) {
	processor := newTestProcessor(t, "")

	batch, err := processor.Process(context.Background(), service.NewMessage([]byte{0x47, 0x4C, 0x43}))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Error(t, batch[0].GetError(), "Expected error on the message for a short header")
	assert.True(t, errors.Is(batch[0].GetError(), gamelist.ErrHeaderTooShort))
}

func TestGamelistProcessor_HeaderMismatchContinues(t *testing.T) {
	processor := newTestProcessor(t, "")

	b := testutil.NewCacheBuilder().Header(gamelist.Signature, 33)
	b.Record(testutil.SampleRecords()[0])

	batch, err := processor.Process(context.Background(), service.NewMessage(b.Bytes(t)))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "33", meta(t, batch[0], metaCacheVersion))
}

func TestGamelistProcessor_TruncatedCache(t *testing.T) {
	processor := newTestProcessor(t, "")

	data := sampleCache(t)
	batch, err := processor.Process(context.Background(), service.NewMessage(data[:len(data)-1]))
	require.NoError(t, err)
	require.Len(t, batch, 2, "records before the truncated one are kept")
	for _, msg := range batch {
		assert.NoError(t, msg.GetError())
	}
}

func TestGamelistProcessor_HeaderOnly(t *testing.T) {
	processor := newTestProcessor(t, "")

	data := testutil.NewCacheBuilder().ValidHeader().Bytes(t)
	batch, err := processor.Process(context.Background(), service.NewMessage(data))
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestGamelistProcessor_Cancelled(t *testing.T) {
	processor := newTestProcessor(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.Process(ctx, service.NewMessage(sampleCache(t)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, processor.Close(context.Background()))
}
