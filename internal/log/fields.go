package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldGroupID   = "group_id"
	FieldMemberID  = "member_id"
	FieldAmount    = "amount"
	FieldView      = "view"
	FieldBackend   = "backend"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentEngine    = "engine"
	ComponentStorage   = "storage"
	ComponentPersister = "persister"
	ComponentSeed      = "seed"
)
