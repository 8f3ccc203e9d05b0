package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the application's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldChain      = "chain"
	FieldAddress    = "address"
	FieldProvider   = "provider"
	FieldCategory   = "category"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldCount      = "count"
	FieldCurrency   = "currency"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
