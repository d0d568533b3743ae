// Package payload encodes loosely typed sensor records into the compact
// uplink byte layout. Pure: no I/O, no modem state.
package payload

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
)

// Kind enumerates the recognized field encodings.
type Kind int

const (
	KindTemperature Kind = iota // int16 big endian, 0.1 degC steps
	KindHumidity                // one byte, 0.5 % steps, clamped
	KindPressure                // uint16 big endian, 0.1 hPa steps
	KindBattery                 // one byte, clamped 0..255
	KindInt                     // low byte only
	KindFloat                   // int16 big endian, 0.01 steps
	KindString                  // raw UTF-8 bytes
)

// Field is one tagged record entry. Number carries every numeric kind;
// Text carries KindString.
type Field struct {
	Kind   Kind
	Name   string
	Number float64
	Text   string
}

func Temperature(v float64) Field {
	return Field{Kind: KindTemperature, Name: "temperature", Number: v}
}

func Humidity(v float64) Field {
	return Field{Kind: KindHumidity, Name: "humidity", Number: v}
}

func Pressure(v float64) Field {
	return Field{Kind: KindPressure, Name: "pressure", Number: v}
}

func Battery(v int) Field {
	return Field{Kind: KindBattery, Name: "battery", Number: float64(v)}
}

func Int(name string, v int) Field {
	return Field{Kind: KindInt, Name: name, Number: float64(v)}
}

func Float(name string, v float64) Field {
	return Field{Kind: KindFloat, Name: name, Number: v}
}

func String(name, v string) Field {
	return Field{Kind: KindString, Name: name, Text: v}
}

// Encode renders fields in order. A field whose scaled value does not fit
// its wire width is skipped with a warning, never an error; record
// producers are loosely typed and a single bad reading must not poison
// the rest of the uplink.
func Encode(fields ...Field) []byte {
	var out []byte
	for _, f := range fields {
		switch f.Kind {
		case KindTemperature:
			v := int64(f.Number * 10)
			if v < math.MinInt16 || v > math.MaxInt16 {
				skip(f)
				continue
			}
			out = binary.BigEndian.AppendUint16(out, uint16(int16(v)))
		case KindHumidity:
			out = append(out, clampByte(int64(f.Number*2)))
		case KindPressure:
			v := int64(f.Number * 10)
			if v < 0 || v > math.MaxUint16 {
				skip(f)
				continue
			}
			out = binary.BigEndian.AppendUint16(out, uint16(v))
		case KindBattery:
			out = append(out, clampByte(int64(f.Number)))
		case KindInt:
			out = append(out, byte(int64(f.Number)&0xFF))
		case KindFloat:
			v := int64(f.Number * 100)
			if v < math.MinInt16 || v > math.MaxInt16 {
				skip(f)
				continue
			}
			out = binary.BigEndian.AppendUint16(out, uint16(int16(v)))
		case KindString:
			out = append(out, f.Text...)
		default:
			skip(f)
		}
	}
	return out
}

// FromMap classifies a loosely typed record into fields. The well-known
// keys temp/temperature, humidity, pressure and battery map to their
// dedicated encodings; every other value classifies by dynamic type.
// Values of unsupported types are skipped with a warning. Keys are
// visited in sorted order so the byte layout is deterministic.
func FromMap(record map[string]any) []Field {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		f, ok := classify(k, record[k])
		if !ok {
			log.Warn().Str("key", k).Msg("payload: unsupported record value, skipped")
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func classify(key string, value any) (Field, bool) {
	switch key {
	case "temp", "temperature":
		if n, ok := asNumber(value); ok {
			return Temperature(n), true
		}
		return Field{}, false
	case "humidity":
		if n, ok := asNumber(value); ok {
			return Humidity(n), true
		}
		return Field{}, false
	case "pressure":
		if n, ok := asNumber(value); ok {
			return Pressure(n), true
		}
		return Field{}, false
	case "battery":
		if n, ok := asNumber(value); ok {
			return Battery(int(n)), true
		}
		return Field{}, false
	}

	switch v := value.(type) {
	case string:
		return String(key, v), true
	case float64:
		return Float(key, v), true
	case float32:
		return Float(key, float64(v)), true
	case int:
		return Int(key, v), true
	case int8:
		return Int(key, int(v)), true
	case int16:
		return Int(key, int(v)), true
	case int32:
		return Int(key, int(v)), true
	case int64:
		return Int(key, int(v)), true
	case uint:
		return Int(key, int(v)), true
	case uint8:
		return Int(key, int(v)), true
	case uint16:
		return Int(key, int(v)), true
	case uint32:
		return Int(key, int(v)), true
	case uint64:
		return Int(key, int(v)), true
	}
	return Field{}, false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func clampByte(v int64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func skip(f Field) {
	log.Warn().Str("field", f.Name).Msg("payload: value out of range, skipped")
}
