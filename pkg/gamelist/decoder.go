package gamelist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// options holds configuration for the decoder
type options struct {
	logger    *slog.Logger
	encoding  string
	debugMode bool
}

// Option is a function that configures decoder options
type Option func(*options)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEncoding selects the text encoding used for the string fields
func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithDebugMode enables per-record debug logging
func WithDebugMode(enabled bool) Option {
	return func(o *options) {
		o.debugMode = enabled
	}
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		encoding: DefaultEncoding,
	}
}

// Decoder walks the records of a cache buffer.
type Decoder struct {
	cursor     *Cursor
	header     Header
	mismatches []HeaderMismatch
	logger     *slog.Logger
	debug      bool
	decoded    int
	err        error
}

// NewDecoder reads and checks the header of buf. Header mismatches are logged
// as warnings and do not fail; only a buffer too short to hold a header or an
// unknown encoding name is an error.
func NewDecoder(buf []byte, opts ...Option) (*Decoder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.debugMode {
		o.logger = o.logger.With("debug", true)
	}

	text, err := lookupEncoding(o.encoding)
	if err != nil {
		return nil, err
	}

	c := newCursor(buf, text)
	h, err := c.Header()
	if err != nil {
		o.logger.Error("Cannot read game list cache header", "size", len(buf), "error", err)
		return nil, err
	}

	d := &Decoder{
		cursor:     c,
		header:     h,
		mismatches: h.Mismatches(),
		logger:     o.logger,
		debug:      o.debugMode,
	}
	for _, m := range d.mismatches {
		d.logger.Warn(fmt.Sprintf("Game list cache %s mismatch", m.Field),
			"field", m.Field, "expected", m.Expected, "actual", m.Actual)
	}
	return d, nil
}

// Header returns the header read by NewDecoder.
func (d *Decoder) Header() Header { return d.header }

// Mismatches returns the advisory header differences, if any.
func (d *Decoder) Mismatches() []HeaderMismatch { return d.mismatches }

// Offset returns the cursor position.
func (d *Decoder) Offset() int { return d.cursor.Offset() }

// Decoded returns how many records have been decoded so far.
func (d *Decoder) Decoded() int { return d.decoded }

// Err returns the error that stopped decoding, or nil if the buffer was
// consumed cleanly.
func (d *Decoder) Err() error { return d.err }

// More reports whether another record can be attempted.
func (d *Decoder) More() bool {
	return d.err == nil && d.cursor.Remaining() > 0
}

// Next decodes the next record. It returns io.EOF once the buffer is consumed
// and keeps returning the first record error after a failure.
func (d *Decoder) Next() (Record, error) {
	if d.err != nil {
		return Record{}, d.err
	}
	if d.cursor.Remaining() == 0 {
		return Record{}, io.EOF
	}
	r, err := d.cursor.Record()
	if err != nil {
		d.err = err
		return Record{}, err
	}
	d.decoded++
	return r, nil
}

// DecodeAll decodes records until the buffer is exhausted or one fails. A
// failure is logged with its offset and ends the loop; the records decoded
// before it are returned. The result is never nil.
func (d *Decoder) DecodeAll(ctx context.Context) []Record {
	records := make([]Record, 0)
	for d.More() {
		if err := ctx.Err(); err != nil {
			d.err = err
			d.logger.WarnContext(ctx, "Game list decoding cancelled", "offset", d.Offset(), "decoded", d.decoded)
			break
		}
		offset := d.Offset()
		r, err := d.Next()
		if err != nil {
			d.logger.ErrorContext(ctx, "Error reading game record", "offset", offset, "error", err)
			break
		}
		if d.debug {
			d.logger.DebugContext(ctx, "Decoded game record", "offset", offset, "serial", r.Serial, "path", r.Path)
		}
		records = append(records, r)
	}
	return records
}

// Decode reads every record of buf. The only error it returns is a header
// failure; a corrupt record ends the list early instead.
func Decode(ctx context.Context, buf []byte, opts ...Option) ([]Record, error) {
	d, err := NewDecoder(buf, opts...)
	if err != nil {
		return nil, err
	}
	return d.DecodeAll(ctx), nil
}
