package db

// Logger receives store diagnostics. *slog.Logger satisfies it.
//
// Debug level: generated SQL and elastic requests
// Info level: schema and index setup
// Error level: failed store operations
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const (
	logMsgBuildQueryFailed = "failed to build query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgDBExecFailed     = "database execution failed"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgSchemaReady      = "book schema ready"
	logMsgSQLExecuted      = "executed sql"
	logMsgElasticFailed    = "elastic request failed"
	logMsgIndexReady       = "book index ready"
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrOperation       = "operation"
	logAttrTable           = "table"
	logAttrIndex           = "index"
	logAttrBookId          = "book_id"
)
