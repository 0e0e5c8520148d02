package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldAccountID   = "account_id"
	FieldUsername    = "username"
	FieldTxID        = "transaction_id"
	FieldKind        = "type"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldBudgetID    = "budget_id"
	FieldLimitCents  = "limit_cents"
	FieldSpentCents  = "spent_cents"
	FieldExceeded    = "exceeded"
	FieldMonth       = "month"
	FieldYear        = "year"
	FieldPath        = "path"
	FieldMode        = "mode"
	FieldBytes       = "bytes"
	FieldStatements  = "statements"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentStorage  = "storage"
	ComponentLedger   = "ledger"
	ComponentBudget   = "budget"
	ComponentReport   = "report"
	ComponentAuth     = "auth"
	ComponentSnapshot = "snapshot"
	ComponentAMQP     = "amqp"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpCheck    = "check"
	OpReport   = "report"
	OpBackup   = "backup"
	OpRestore  = "restore"
	OpRegister = "register"
	OpLogin    = "login"
	OpPublish  = "publish"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeRestore       = "restore_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(t string) LogFields {
	f[FieldErrorType] = t
	return f
}

func (f LogFields) WithAccount(accountID int64) LogFields {
	f[FieldAccountID] = accountID
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id int64, kind string, amountCents int64, category, date string) LogFields {
	f[FieldTxID] = id
	f[FieldKind] = kind
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	if date != "" {
		f[FieldDate] = date
	}
	return f
}

// WithBudget adds budget evaluation fields
func (f LogFields) WithBudget(id int64, category string, limitCents, spentCents int64, exceeded bool) LogFields {
	f[FieldBudgetID] = id
	f[FieldCategory] = category
	f[FieldLimitCents] = limitCents
	f[FieldSpentCents] = spentCents
	f[FieldExceeded] = exceeded
	return f
}

func (f LogFields) WithPeriod(month, year string) LogFields {
	if month != "" {
		f[FieldMonth] = month
	}
	f[FieldYear] = year
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
