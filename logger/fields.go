package logger

import "time"

// Standard field keys for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldUsername  = "username"
	FieldRole      = "role"
	FieldOperation = "operation"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldReason    = "reason"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs.
//
//	logger.Info("registered", logger.Fields("username", name, "role", role))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]any {
	return map[string]any{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}
