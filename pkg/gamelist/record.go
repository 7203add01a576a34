package gamelist

// Record field names, in encoding order.
const (
	FieldPath                = "path"
	FieldSerial              = "serial"
	FieldTitle               = "title"
	FieldTitleSort           = "title_sort"
	FieldTitleEn             = "title_en"
	FieldType                = "type"
	FieldRegion              = "region"
	FieldTotalSize           = "total_size"
	FieldLastModifiedTime    = "last_modified_time"
	FieldCRC                 = "crc"
	FieldCompatibilityRating = "compatibility_rating"
)

// FieldNames lists the record fields in the order they are encoded.
var FieldNames = []string{
	FieldPath,
	FieldSerial,
	FieldTitle,
	FieldTitleSort,
	FieldTitleEn,
	FieldType,
	FieldRegion,
	FieldTotalSize,
	FieldLastModifiedTime,
	FieldCRC,
	FieldCompatibilityRating,
}

// fixedRecordSize is the width of the integer tail of every record.
const fixedRecordSize = 1 + 1 + 8 + 8 + 4 + 1

// MinRecordSize is the encoded size of a record whose texts are all empty.
const MinRecordSize = 5*4 + fixedRecordSize

// Record is one game entry of the cache.
type Record struct {
	Path                string `json:"path" yaml:"path"`
	Serial              string `json:"serial" yaml:"serial"`
	Title               string `json:"title" yaml:"title"`
	TitleSort           string `json:"title_sort" yaml:"title_sort"`
	TitleEn             string `json:"title_en" yaml:"title_en"`
	Type                uint8  `json:"type" yaml:"type"`
	Region              uint8  `json:"region" yaml:"region"`
	TotalSize           uint64 `json:"total_size" yaml:"total_size"`
	LastModifiedTime    uint64 `json:"last_modified_time" yaml:"last_modified_time"`
	CRC                 uint32 `json:"crc" yaml:"crc"`
	CompatibilityRating uint8  `json:"compatibility_rating" yaml:"compatibility_rating"`
}

// Field is a named record value.
type Field struct {
	Name  string
	Value any
}

// Fields returns the record as name/value pairs in encoding order.
func (r Record) Fields() []Field {
	return []Field{
		{FieldPath, r.Path},
		{FieldSerial, r.Serial},
		{FieldTitle, r.Title},
		{FieldTitleSort, r.TitleSort},
		{FieldTitleEn, r.TitleEn},
		{FieldType, r.Type},
		{FieldRegion, r.Region},
		{FieldTotalSize, r.TotalSize},
		{FieldLastModifiedTime, r.LastModifiedTime},
		{FieldCRC, r.CRC},
		{FieldCompatibilityRating, r.CompatibilityRating},
	}
}

// Map returns the record keyed by field name.
func (r Record) Map() map[string]any {
	fields := r.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}

// recordReader threads a cursor through the record schema, remembering the
// first failure and the field it happened in.
type recordReader struct {
	c     *Cursor
	field string
	err   error
}

func (rr *recordReader) text(field string) string {
	if rr.err != nil {
		return ""
	}
	rr.field = field
	v, err := rr.c.Text()
	rr.err = err
	return v
}

func (rr *recordReader) u8(field string) uint8 {
	if rr.err != nil {
		return 0
	}
	rr.field = field
	v, err := rr.c.U8()
	rr.err = err
	return v
}

func (rr *recordReader) u32(field string) uint32 {
	if rr.err != nil {
		return 0
	}
	rr.field = field
	v, err := rr.c.U32()
	rr.err = err
	return v
}

func (rr *recordReader) u64(field string) uint64 {
	if rr.err != nil {
		return 0
	}
	rr.field = field
	v, err := rr.c.U64()
	rr.err = err
	return v
}

// Record decodes one record at the current offset. On failure the cursor is
// moved back to where the record started and a *RecordError is returned.
func (c *Cursor) Record() (Record, error) {
	start := c.Offset()
	rr := &recordReader{c: c}

	var r Record
	r.Path = rr.text(FieldPath)
	r.Serial = rr.text(FieldSerial)
	r.Title = rr.text(FieldTitle)
	r.TitleSort = rr.text(FieldTitleSort)
	r.TitleEn = rr.text(FieldTitleEn)
	r.Type = rr.u8(FieldType)
	r.Region = rr.u8(FieldRegion)
	r.TotalSize = rr.u64(FieldTotalSize)
	r.LastModifiedTime = rr.u64(FieldLastModifiedTime)
	r.CRC = rr.u32(FieldCRC)
	r.CompatibilityRating = rr.u8(FieldCompatibilityRating)

	if rr.err != nil {
		c.seek(start)
		return Record{}, &RecordError{Offset: start, Field: rr.field, Err: rr.err}
	}
	return r, nil
}

// ReadRecord decodes the record at offset and returns the offset after it.
func ReadRecord(buf []byte, offset int) (Record, int, error) {
	return readAt(buf, offset, MinRecordSize, (*Cursor).Record)
}
