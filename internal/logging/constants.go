package logging

// Standardized field names for structured logging.
// Services and handlers use these keys so that log lines can be filtered
// by user, entity and operation regardless of where they were emitted.
const (
	FieldUserID        = "user_id"
	FieldAccountID     = "account_id"
	FieldTransactionID = "transaction_id"
	FieldGoalID        = "goal_id"
	FieldBudgetID      = "budget_id"
	FieldOrgID         = "organization_id"
	FieldProjectID     = "project_id"
	FieldReportID      = "report_id"
	FieldReportType    = "report_type"
	FieldAmount        = "amount"
	FieldPeriod        = "period"
	FieldStatus        = "status"
	FieldOperation     = "operation"
	FieldRequestID     = "request_id"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldFormat        = "format"
	FieldOutputFile    = "output_file"
)

// F builds a Field. It keeps call sites short:
//
//	logger.Info("deposit applied", logging.F(logging.FieldAccountID, id))
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
