package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CreateFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError
	SchemaIndexError

	// Sources errors
	SourcesConfigError
	SourcesUnknownVersionError
	SourcesDownloadError

	// Convert errors
	ConvertCSVOpenError
	ConvertCSVHeaderError
	ConvertCSVReadError
	ConvertEmptyTreeError
	ConvertUpsertError

	// Enrich errors
	EnrichProgressError
	EnrichTargetsError
	EnrichUpdateError
	EnrichCacheError

	// Sync errors
	SyncAPIKeyError
	SyncRequestError
	SyncCursorError
	SyncStageError

	// Verify errors
	VerifyQueryError
	VerifyFailedError
)
