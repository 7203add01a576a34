// Package gamelist decodes the PCSX2 game list cache (gamelist.cache).
//
// # Format
//
// The file starts with an 8-byte header, a little-endian u32 signature
// (0x45434C47) followed by a u32 version (34). Records follow back to back
// until the end of the file, each made of five length-prefixed strings
// (path, serial, title, title_sort, title_en) and a fixed tail:
//
//	type                 u1
//	region               u1
//	total_size           u8le
//	last_modified_time   u8le
//	crc                  u4le
//	compatibility_rating u1
//
// There is no record count and no separator.
//
// # Quick Start
//
//	records, err := gamelist.Decode(ctx, data)
//	if err != nil {
//	    // the buffer could not hold a header
//	    log.Fatal(err)
//	}
//	for _, r := range records {
//	    fmt.Println(r.Serial, r.Title)
//	}
//
// # Error Handling
//
// A signature or version mismatch is logged as a warning and decoding goes on.
// A record that runs past the end of the buffer stops decoding: the failure is
// logged and the records decoded before it are returned. Use a Decoder
// directly to inspect the stopping error:
//
//	d, err := gamelist.NewDecoder(data, gamelist.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	records := d.DecodeAll(ctx)
//	if err := d.Err(); err != nil {
//	    var rerr *gamelist.RecordError
//	    if errors.As(err, &rerr) {
//	        logger.Warn("cache truncated", "offset", rerr.Offset, "field", rerr.Field)
//	    }
//	}
//
// Only a buffer shorter than the header fails outright, with ErrHeaderTooShort.
//
// # Text
//
// Strings are UTF-8 by default. Invalid byte sequences are replaced with
// U+FFFD rather than rejected, for every string field including path.
// WithEncoding selects another decoder.
//
// # Thread Safety
//
// A Decoder is not safe for concurrent use. Decoders over different buffers
// share nothing and may run in parallel.
package gamelist
