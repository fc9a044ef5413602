package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldNotifType  = "notification_type"
	FieldDedupeKey  = "dedupe_key"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentWorker = "worker"
	ComponentSweep  = "sweeper"
)

// Operations defines standard operation names
const (
	OpSweep   = "sweep"
	OpConsume = "consume"
	OpExport  = "export"
)
