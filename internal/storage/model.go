package storage

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// Record is a decoded document: a finite mapping from field name to a
// JSON-serializable value. `_id` is always present on a persisted record;
// `_char_no`, when present, is a synthetic field carrying the record's
// starting byte offset and is never itself persisted to the log.
type Record map[string]any

// ScannedRecord is one element yielded while walking the log, either via a
// full scan or a targeted read of specific offsets. Err carries a
// corruption error for a line that failed to decode, letting a range-over
// caller observe the failure and decide whether to stop rather than having
// the iterator panic.
type ScannedRecord struct {
	Record Record
	Offset int64
	Err    error
}

// Storage is the append-only log file: one record per line, addressed by
// the byte offset each line starts at. There is exactly one file here —
// offsets are absolute positions within it, and there is no rotation.
type Storage struct {
	path   string
	file   *os.File
	closed atomic.Bool
	log    *zap.SugaredLogger
}

// Config encapsulates the parameters required to initialize a Storage.
type Config struct {
	Path   string
	Logger *zap.SugaredLogger
}
