package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Envelope is the JSON shape results are served in.
type Envelope struct {
	OK   bool             `json:"ok"`
	Msg  string           `json:"msg"`
	Data []map[string]any `json:"data"`
}

// GetDataTypes returns the oid to type name map of the server. It is loaded
// once; a failed load is retried on the next call.
func (db *DB) GetDataTypes(ctx context.Context) map[uint32]string {
	if types := db.types.Load(); types != nil {
		return *types
	}
	db.typesMu.Lock()
	defer db.typesMu.Unlock()
	if types := db.types.Load(); types != nil {
		return *types
	}

	r := db.Exec(ctx, queryDataTypes)
	if !r.OK {
		return map[uint32]string{}
	}
	types := make(map[uint32]string, len(r.Rows))
	for _, row := range r.Rows {
		oid := asInt(row[0], -1)
		if oid < 0 {
			continue
		}
		types[uint32(oid)] = asString(row[1])
	}
	db.types.Store(&types)
	return types
}

// ConvertRowsToJSON renders each row as an object keyed by field name.
func (db *DB) ConvertRowsToJSON(ctx context.Context, r QResult) []map[string]any {
	data := make([]map[string]any, 0, len(r.Rows))
	if len(r.Rows) == 0 {
		return data
	}
	types := db.GetDataTypes(ctx)
	for _, row := range r.Rows {
		data = append(data, RowToJSON(r.Fields, row, types))
	}
	return data
}

// ConvertQResultToJSON wraps the rows with the ok flag and message.
func (db *DB) ConvertQResultToJSON(ctx context.Context, r QResult) Envelope {
	env := Envelope{OK: r.OK, Msg: r.Msg, Data: []map[string]any{}}
	if r.OK {
		env.Data = db.ConvertRowsToJSON(ctx, r)
	}
	return env
}

// RowToJSON maps one row: integers to int64, numeric and floating point to
// float64, booleans and single bits to bool, NULL to nil, everything else to
// its string form.
func RowToJSON(fields []pgconn.FieldDescription, values []any, types map[uint32]string) map[string]any {
	obj := make(map[string]any, len(fields))
	for i, f := range fields {
		if i >= len(values) {
			break
		}
		obj[f.Name] = fieldValue(types[f.DataTypeOID], values[i])
	}
	return obj
}

func fieldValue(typname string, v any) any {
	if v == nil {
		return nil
	}
	switch typname {
	case "int2", "int4", "int8":
		if n, ok := toInt64(v); ok {
			return n
		}
	case "numeric", "float4", "float8":
		if f, ok := toFloat64(v); ok {
			return f
		}
	case "bool":
		if b, ok := v.(bool); ok {
			return b
		}
	case "bit":
		if b, ok := singleBit(v); ok {
			return b
		}
	}
	return toString(v)
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case pgtype.Numeric:
		f, err := t.Float64Value()
		return f.Float64, err == nil && f.Valid
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

func singleBit(v any) (bool, bool) {
	switch t := v.(type) {
	case pgtype.Bits:
		if t.Valid && t.Len == 1 && len(t.Bytes) > 0 {
			return t.Bytes[0]&0x80 != 0, true
		}
	case string:
		if len(t) == 1 {
			return t == "1", true
		}
	}
	return false, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case [16]byte:
		return uuid.UUID(t).String()
	case uuid.UUID:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case pgtype.Numeric:
		if f, ok := toFloat64(t); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case pgtype.Bits:
		return bitString(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}

func bitString(b pgtype.Bits) string {
	buf := make([]byte, b.Len)
	for i := range buf {
		if b.Bytes[i/8]&(0x80>>(uint(i)%8)) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// FormatValue renders a decoded value as display text. NULL renders as
// "NULL".
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return toString(v)
}
