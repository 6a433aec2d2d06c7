package logging

// Standardized field names for structured logging.
// Every component logs with these keys so a run can be filtered by payee,
// transaction or run id.
const (
	FieldFile       = "file_path"
	FieldRunID      = "run_id"
	FieldIndex      = "index"
	FieldAccount    = "account"
	FieldDate       = "date"
	FieldAmount     = "amount_milliunits"
	FieldRawPayee   = "raw_payee"
	FieldNormalized = "normalized"
	FieldPayee      = "payee"
	FieldPayeeID    = "payee_id"
	FieldCandidate  = "candidate"
	FieldScore      = "score"
	FieldState      = "state"
	FieldImportID   = "import_id"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
