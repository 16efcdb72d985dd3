package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldDebtor      = "debtor"
	FieldCreditor    = "creditor"
	FieldAmountCents = "amount_cents"
	FieldEntries     = "entries"
	FieldPairs       = "pairs"
	FieldSettled     = "settled"
	FieldSkipped     = "skipped"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentSheets  = "sheets"
	ComponentAMQP    = "amqp"
	ComponentBackend = "backend"
	ComponentService = "service"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpNet      = "net"
	OpPublish  = "publish"
	OpStatus   = "status"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithDebt adds the fields describing one directed debt
func (f LogFields) WithDebt(debtor, creditor string, amountCents int64) LogFields {
	f[FieldDebtor] = debtor
	f[FieldCreditor] = creditor
	f[FieldAmountCents] = amountCents
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
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
