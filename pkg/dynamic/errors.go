package dynamic

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for relation resolution.
var (
	// ErrRelationNotFound is returned when a requested relation name is not
	// dynamic, not cached, and not a defined relation method.
	ErrRelationNotFound = errors.New("dynrel: relation not found")

	// ErrInvalidRelationship is returned when a relationship method yields
	// something other than a relation descriptor.
	ErrInvalidRelationship = errors.New("dynrel: relationship method must return a relation descriptor")

	// ErrMethodNotFound is returned when an intercepted method call matches
	// nothing on the model.
	ErrMethodNotFound = errors.New("dynrel: method not found")
)

// RelationNotFoundError reports the relation name that failed to resolve.
type RelationNotFoundError struct {
	Model string
	Name  string
}

// Error returns the error string.
func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("dynrel: relation %q not found on %s", e.Name, e.Model)
}

// Is reports whether the target error matches RelationNotFoundError.
// This allows errors.Is(err, ErrRelationNotFound) to return true.
func (e *RelationNotFoundError) Is(err error) bool {
	return err == ErrRelationNotFound
}

// IsRelationNotFound returns true if the error is a RelationNotFoundError.
func IsRelationNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *RelationNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrRelationNotFound)
}

// InvalidRelationshipError reports a relationship method that broke the
// relation-descriptor contract. Got holds the offending value.
type InvalidRelationshipError struct {
	Model string
	Name  string
	Got   any
}

// Error returns the error string.
func (e *InvalidRelationshipError) Error() string {
	return fmt.Sprintf("dynrel: relationship %s.%s must return a relation descriptor, got %T", e.Model, e.Name, e.Got)
}

// Is reports whether the target error matches InvalidRelationshipError.
func (e *InvalidRelationshipError) Is(err error) bool {
	return err == ErrInvalidRelationship
}

// IsInvalidRelationship returns true if the error is an InvalidRelationshipError.
func IsInvalidRelationship(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidRelationshipError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidRelationship)
}

// MethodNotFoundError reports an intercepted call to an undefined method.
type MethodNotFoundError struct {
	Model string
	Name  string
}

// Error returns the error string.
func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("dynrel: method %q not found on %s", e.Name, e.Model)
}

// Is reports whether the target error matches MethodNotFoundError.
func (e *MethodNotFoundError) Is(err error) bool {
	return err == ErrMethodNotFound
}
