package errors

import "errors"

// ErrOptimisticLock indicates the record was modified by another operation
// since it was read.
var ErrOptimisticLock = errors.New("record was modified by another operation, retry with fresh data")

// ErrConcurrentClock indicates a newer time record for the same staff member
// was inserted between the history snapshot and the write.
var ErrConcurrentClock = errors.New("a concurrent clock action was recorded first")
