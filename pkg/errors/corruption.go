package errors

// CorruptionError is a specialized error type for malformed persisted data:
// an unparseable log line, a tree encoding that doesn't round-trip, or a
// red-black invariant that failed to hold after a mutation. These never
// leave a partial mutation committed; the operation aborts and the error
// propagates unchanged to the caller.
type CorruptionError struct {
	*baseError
	path      string // File path involved, if the corruption was detected on disk.
	component string // Which component detected the corruption (e.g. "rbtree", "log", "deletion").
}

// NewCorruptionError creates a new corruption-specific error.
func NewCorruptionError(err error, code ErrorCode, msg string) *CorruptionError {
	return &CorruptionError{baseError: NewBaseError(err, code, msg)}
}

// WithPath records the file path involved, if any.
func (ce *CorruptionError) WithPath(path string) *CorruptionError {
	ce.path = path
	return ce
}

// WithComponent records which component detected the corruption.
func (ce *CorruptionError) WithComponent(component string) *CorruptionError {
	ce.component = component
	return ce
}

// WithDetail adds contextual information while preserving the CorruptionError type.
func (ce *CorruptionError) WithDetail(key string, value any) *CorruptionError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// Path returns the file path involved in the corruption, if any.
func (ce *CorruptionError) Path() string {
	return ce.path
}

// Component returns which component detected the corruption.
func (ce *CorruptionError) Component() string {
	return ce.component
}

// NewInvariantViolationError marks a red-black tree invariant failure. This
// is a bug rather than a recoverable condition: callers should treat the
// tree as poisoned and rebuild from the log rather than retry.
func NewInvariantViolationError(component, detail string) *CorruptionError {
	return NewCorruptionError(nil, ErrorCodeInvariantViolation, "red-black invariant violated after mutation").
		WithComponent(component).
		WithDetail("invariant", detail)
}
