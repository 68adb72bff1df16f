package expression

import (
	stderrors "errors"
	"fmt"

	"github.com/c360/streampump/errors"
)

// DeclarationError is a failure raised while evaluating a tree, annotated with
// the declarative clause that raised it.
type DeclarationError struct {
	Location Location
	Err      error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("declaration error at %s: %v", e.Location, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// ErrorClass classifies evaluation failures as invalid input.
func (e *DeclarationError) ErrorClass() errors.ErrorClass {
	return errors.ErrorInvalid
}

// declarationError annotates err with loc. An error that already carries a
// declarative location keeps the innermost one.
func declarationError(err error, loc Location) error {
	var declErr *DeclarationError
	if stderrors.As(err, &declErr) {
		return err
	}
	return &DeclarationError{Location: loc, Err: err}
}

// CompileError reports a malformed declaration.
type CompileError struct {
	Location Location
	Message  string
	Err      error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compile error at %s: %s: %v", e.Location, e.Message, e.Err)
	}
	return fmt.Sprintf("compile error at %s: %s", e.Location, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ErrorClass classifies compile failures as invalid input.
func (e *CompileError) ErrorClass() errors.ErrorClass {
	return errors.ErrorInvalid
}

// TypeError reports a child whose outlet type does not match the type its
// parent expects.
type TypeError struct {
	Location Location
	Key      string
	Expected Type
	Actual   Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: '%s' expects %s, got %s",
		e.Location, e.Key, e.Expected, e.Actual)
}

// ErrorClass classifies type mismatches as invalid input.
func (e *TypeError) ErrorClass() errors.ErrorClass {
	return errors.ErrorInvalid
}
