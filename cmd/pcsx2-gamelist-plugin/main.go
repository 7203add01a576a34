package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/redpanda-data/benthos/v4/public/service"
	"github.com/twinfer/pcsx2-gamelist/internal/filter"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

// Metadata keys set on every record message.
const (
	metaRecordIndex  = "pcsx2_record_index"
	metaRecordOffset = "pcsx2_record_offset"
	metaSerial       = "pcsx2_serial"
	metaCacheVersion = "pcsx2_cache_version"
)

// GamelistProcessor is a Benthos processor that splits a PCSX2 game list
// cache into one structured message per record.
type GamelistProcessor struct {
	config     GamelistConfig
	filter     *filter.Filter
	logger     *service.Logger
	mRecords   *service.MetricCounter
	mTruncated *service.MetricCounter
	mMismatch  *service.MetricCounter
	mErrors    *service.MetricCounter
}

// GamelistConfig contains configuration parameters for the processor.
type GamelistConfig struct {
	Encoding        string `json:"encoding" yaml:"encoding"`
	Filter          string `json:"filter" yaml:"filter"`
	SkipEmptySerial bool   `json:"skip_empty_serial" yaml:"skip_empty_serial"`
}

func init() {
	err := service.RegisterProcessor(
		"pcsx2_gamelist",
		gamelistProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newGamelistProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

func main() {
	service.RunCLI(context.Background())
}

// gamelistProcessorConfig returns a config spec for a pcsx2_gamelist processor.
func gamelistProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Decodes a PCSX2 gamelist.cache file into one message per game record.").
		Description("Each input message must hold the full cache file. Header mismatches are logged and decoding continues; a record that cannot be decoded ends the batch and the records before it are still emitted.").
		Field(service.NewStringField("encoding").
			Description("Text encoding of the record strings.").
			Default(gamelist.DefaultEncoding).
			Example("SHIFT_JIS")).
		Field(service.NewStringField("filter").
			Description("Optional CEL expression over the record fields. Only records for which it returns true are emitted. Fields keep their names except `type`, which is `media_type`; `total_size` and `last_modified_time` are uints.").
			Default("").
			Example(`region == 1 && compatibility_rating >= 5`)).
		Field(service.NewBoolField("skip_empty_serial").
			Description("Drop records without a serial, as game libraries do.").
			Default(false)).
		Version("0.1.0")
}

// newGamelistProcessorFromConfig creates a new GamelistProcessor from a parsed config.
func newGamelistProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*GamelistProcessor, error) {
	encoding, err := conf.FieldString("encoding")
	if err != nil {
		return nil, err
	}

	expr, err := conf.FieldString("filter")
	if err != nil {
		return nil, err
	}

	skipEmpty, err := conf.FieldBool("skip_empty_serial")
	if err != nil {
		return nil, err
	}

	config := GamelistConfig{
		Encoding:        encoding,
		Filter:          expr,
		SkipEmptySerial: skipEmpty,
	}

	if err := gamelist.CheckEncoding(encoding); err != nil {
		return nil, err
	}

	var f *filter.Filter
	if expr != "" {
		if f, err = filter.Compile(expr); err != nil {
			return nil, err
		}
	}

	metrics := mgr.Metrics()

	return &GamelistProcessor{
		config:     config,
		filter:     f,
		logger:     mgr.Logger(),
		mRecords:   metrics.NewCounter("pcsx2_gamelist_records"),
		mTruncated: metrics.NewCounter("pcsx2_gamelist_truncated_caches"),
		mMismatch:  metrics.NewCounter("pcsx2_gamelist_header_mismatches"),
		mErrors:    metrics.NewCounter("pcsx2_gamelist_errors"),
	}, nil
}

var discardLogger = slog.New(slog.DiscardHandler)

// Process decodes the cache held by msg.
func (g *GamelistProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		g.logger.Errorf("Failed to get binary data from message: %v", err)
		g.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to get binary data from message: %w", err))
		return service.MessageBatch{msg}, nil
	}

	dec, err := gamelist.NewDecoder(data,
		gamelist.WithEncoding(g.config.Encoding),
		gamelist.WithLogger(discardLogger))
	if err != nil {
		g.logger.Errorf("Failed to read game list cache header of %d bytes: %v", len(data), err)
		g.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to read game list cache header: %w", err))
		return service.MessageBatch{msg}, nil
	}

	for _, m := range dec.Mismatches() {
		g.logger.Warnf("Game list cache %s", m)
		g.mMismatch.Incr(1)
	}

	version := strconv.FormatUint(uint64(dec.Header().Version), 10)
	batch := service.MessageBatch{}

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		offset := dec.Offset()
		r, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			g.logger.Errorf("Error reading game record at offset %d: %v", offset, err)
			if errors.Is(err, gamelist.ErrTruncatedBuffer) {
				g.mTruncated.Incr(1)
			} else {
				g.mErrors.Incr(1)
			}
			break
		}

		keep, err := g.keep(r)
		if err != nil {
			g.logger.Errorf("Failed to evaluate filter for record at offset %d: %v", offset, err)
			g.mErrors.Incr(1)
			continue
		}
		if !keep {
			continue
		}

		out := msg.Copy()
		out.SetStructured(recordStructure(r))
		out.MetaSet(metaRecordIndex, strconv.Itoa(index))
		out.MetaSet(metaRecordOffset, strconv.Itoa(offset))
		// MetaSet drops keys with empty values
		out.MetaSetMut(metaSerial, r.Serial)
		out.MetaSet(metaCacheVersion, version)
		batch = append(batch, out)
	}

	g.logger.Debugf("Decoded %d game records from %d bytes", dec.Decoded(), len(data))
	g.mRecords.Incr(int64(len(batch)))

	return batch, nil
}

func (g *GamelistProcessor) keep(r gamelist.Record) (bool, error) {
	if g.config.SkipEmptySerial && r.Serial == "" {
		return false, nil
	}
	if g.filter == nil {
		return true, nil
	}
	return g.filter.Match(r)
}

// recordStructure returns the record with the narrow integer fields widened
// to int64. The u64 fields stay uint64 so values past 2^63 keep their sign.
func recordStructure(r gamelist.Record) map[string]any {
	fields := r.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case uint8:
			m[f.Name] = int64(v)
		case uint32:
			m[f.Name] = int64(v)
		default:
			m[f.Name] = v
		}
	}
	return m
}

// Close the processor resources
func (g *GamelistProcessor) Close(ctx context.Context) error {
	return nil
}
