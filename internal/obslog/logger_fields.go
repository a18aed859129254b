package obslog

import "time"

// Str builds a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Bool builds a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Err builds the standard "error" field from an error value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Latency builds the standard "latency_ms" field.
func Latency(d time.Duration) Field {
	return Field{Key: "latency_ms", Value: float64(d) / float64(time.Millisecond)}
}

// IndexName builds a field naming the index a planning decision concerns.
func IndexName(name string) Field { return Field{Key: "index", Value: name} }

// RecordType builds a field naming the record type a planning decision
// concerns.
func RecordType(name string) Field { return Field{Key: "type", Value: name} }
