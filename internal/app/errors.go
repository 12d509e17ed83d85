package app

import "fmt"

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Alias string
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error (%s): %v", e.Alias, e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a statement that the server rejected.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// ErrUnknownDatabase is returned for an alias no engine is registered under.
type ErrUnknownDatabase struct {
	Alias string
}

func (e *ErrUnknownDatabase) Error() string {
	return fmt.Sprintf("unknown database alias %q", e.Alias)
}
