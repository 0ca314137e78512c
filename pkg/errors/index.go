package errors

// IndexError provides specialized error handling for FieldIndex/IndexSet
// operations. It extends the base error system with index-specific context
// while properly supporting method chaining through all base error methods.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which indexed field was being processed when the error
	// occurred (e.g. "a", "_id"). This tells you exactly which FieldIndex
	// was involved in the failed operation.
	field string

	// The field value (stringified) being looked up or inserted, if
	// applicable to the failure.
	value string

	// Describes what index operation was being performed when the error
	// occurred (e.g. "Add", "Lookup", "Serialize", "Rebuild"). This context
	// helps understand the system state that led to the failure.
	operation string

	// Captures the size of the FieldIndex (number of distinct keys) at the
	// time of the error, when known.
	indexSize int
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithField records which indexed field was being processed.
func (ie *IndexError) WithField(field string) *IndexError {
	ie.field = field
	return ie
}

// WithValue records the field value involved in the failed operation.
func (ie *IndexError) WithValue(value string) *IndexError {
	ie.value = value
	return ie
}

// WithOperation records what index operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// WithIndexSize captures the size of the FieldIndex when the error occurred.
func (ie *IndexError) WithIndexSize(size int) *IndexError {
	ie.indexSize = size
	return ie
}

// Field returns the indexed field name involved in the error.
func (ie *IndexError) Field() string {
	return ie.field
}

// Value returns the field value involved in the error, if any.
func (ie *IndexError) Value() string {
	return ie.value
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// IndexSize returns the size of the FieldIndex when the error occurred.
func (ie *IndexError) IndexSize() int {
	return ie.indexSize
}

// NewIndexCorruptionError creates an error for a malformed index file: an
// encoding that doesn't round-trip through rbtree.Load.
func NewIndexCorruptionError(field, operation string, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexCorrupted, "index data structure corrupted").
		WithField(field).
		WithOperation(operation).
		WithDetail("recovery_hint", "rebuild the index set from the log")
}
