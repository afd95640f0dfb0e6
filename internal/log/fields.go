package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldSuccess   = "success"

	FieldUserID      = "user_id"
	FieldBudgetID    = "budget_id"
	FieldBudgetName  = "budget_name"
	FieldCategoryID  = "category_id"
	FieldExpenseID   = "expense_id"
	FieldIncomeID    = "income_id"
	FieldPeriodID    = "period_id"
	FieldAmount      = "amount"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldState       = "state"
	FieldTranscript  = "transcript"
	FieldSpreadsheet = "spreadsheet_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStore    = "store"
	ComponentSync     = "sync"
	ComponentArchive  = "archive"
	ComponentMutation = "mutation"
	ComponentDocStore = "docstore"
	ComponentVoice    = "voice"
	ComponentAMQP     = "amqp"
	ComponentExport   = "export"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpPersist   = "persist"
	OpMigrate   = "migrate"
	OpSubscribe = "subscribe"
	OpSwitch    = "switch"
	OpArchive   = "archive"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
