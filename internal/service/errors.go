package service

import (
	"fmt"
)

// PersistenceError every store attempted for an operation failed.
// Remote is nil when the remote store was not attempted.
// PersistenceError 操作尝试的所有存储均失败；未尝试远端时 Remote 为 nil
type PersistenceError struct {
	Op     string
	Remote error
	Local  error
}

func (e *PersistenceError) Error() string {
	if e.Remote != nil {
		return fmt.Sprintf("%s note: remote: %v; local: %v", e.Op, e.Remote, e.Local)
	}
	return fmt.Sprintf("%s note: local: %v", e.Op, e.Local)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Remote != nil {
		return []error{e.Remote, e.Local}
	}
	return []error{e.Local}
}
