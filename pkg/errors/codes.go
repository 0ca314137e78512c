package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: reading or writing the log/index/delete files, or
	// renaming the vacuum output over the log.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints, such as a
	// record holding a value that cannot be JSON-encoded or an engine config
	// without a storage directory.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories: bugs, assertion failures, or other programming
	// errors that shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodeCorruption indicates malformed persisted data: an invalid JSON
	// line in the log, an invalid tree encoding in the index file, or a
	// deletion file that doesn't parse as a JSON array of offsets.
	ErrorCodeCorruption ErrorCode = "CORRUPTION"

	// ErrorCodeInvariantViolation indicates a red-black invariant failed to
	// hold after a mutation. This is a bug, not a recoverable condition: the
	// operation aborts and the tree must not be trusted.
	ErrorCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes of the append-only log and its sibling files.
const (
	// ErrorCodeLogCorrupted indicates the data log's content is damaged or
	// in an inconsistent state (an unparseable line outside the tolerated
	// missing-trailing-newline case).
	ErrorCodeLogCorrupted ErrorCode = "LOG_CORRUPTED"

	// ErrorCodeRecoveryFailed indicates that an attempt to recover from a
	// previous failure (e.g. rebuilding the index set after a crash between
	// vacuum's rename and its rebuild) was unsuccessful.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// a resource. Distinct from a generic IO error because it has a specific
	// resolution path: adjust file/directory permissions.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes address failure modes of the RBTree-backed
// FieldIndex and IndexSet.
const (
	// ErrorCodeIndexCorrupted indicates the index file's tree encoding
	// violates the level-order dump contract (wrong triple shape, unknown
	// color literal, or a sentinel where a node was expected).
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"

	// ErrorCodeIndexFieldUnknown indicates a lookup against a field name the
	// IndexSet has never seen. Not used as a hard error in the current API
	// (lookups against unknown fields degrade to an empty FieldIndex),
	// retained for callers that want to distinguish the case.
	ErrorCodeIndexFieldUnknown ErrorCode = "INDEX_FIELD_UNKNOWN"
)
