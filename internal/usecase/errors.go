package usecase

import "fmt"

// EmbedError wraps a failed embedding call. When upsert fails with an
// EmbedError, no store mutation has happened.
type EmbedError struct {
	Err error
}

func (e *EmbedError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbedError) Unwrap() error { return e.Err }

// StoreError wraps a failed vector store call. After a StoreError from
// upsert the operation is not guaranteed applied; the previous point
// state may or may not survive.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError reports caller input outside declared constraints.
// Raised before any external call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg) }
