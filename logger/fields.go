package logger

import (
	"time"
)

// Standard field keys for structured logging.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldSessionID    = "session_id"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldProvider     = "provider"
	FieldSpeaker      = "speaker"
	FieldSegment      = "segment"
	FieldBlockLen     = "block_len"
	FieldCompressRate = "compress_rate"
	FieldRealtimeCoef = "realtime_coef"
	FieldFallback     = "fallback"
	FieldDeviceFlags  = "device_flags"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("converted", logger.Fields("segment", 3, "samples", 8000))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}
