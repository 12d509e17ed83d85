package postgres

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConnection is returned when the pool cannot produce a connection.
	ErrNoConnection = errors.New("failed to get a database connection")

	// ErrPoolClosed is returned by Get after Close.
	ErrPoolClosed = errors.New("connection pool closed")

	// ErrTaskPanicked is reported by a Future whose task panicked.
	ErrTaskPanicked = errors.New("task panicked")
)

// QueryError is the error form of a failed QResult.
type QueryError struct {
	SQL string
	Msg string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %s", e.Msg)
}

// MigrationError reports a table or procedure that could not be converged.
type MigrationError struct {
	Kind  string // "table" or "procedure"
	Name  string
	SQL   string // failing statement, if any
	Cause error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate %s %s: %v", e.Kind, e.Name, e.Cause)
}

func (e *MigrationError) Unwrap() error {
	return e.Cause
}
