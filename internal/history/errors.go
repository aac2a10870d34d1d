package history

import "codeberg.org/mutker/rogctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("history_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("history_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("history_schema_validation_failed")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("history_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("history_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("history_storage_close_failed")

	// Record Errors
	ErrInvalidEntry     = errors.ErrorCode("history_invalid_entry")
	ErrOperationTimeout = errors.ErrorCode("history_operation_timeout")
)
