// Package errors provides standardized error handling patterns for streampump components.
//
// # Overview
//
// The errors package implements a three-class error classification system: Transient
// (temporary, retryable), Invalid (bad input or declaration, non-retryable), and Fatal
// (unrecoverable, stop processing).
//
// Segment construction and declaration compilation report Invalid errors: a definition
// file that names an unknown class or contains a malformed expression will never succeed
// on retry. Evaluation errors raised while walking an expression tree are Invalid as well,
// and abort only the event being processed.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "SegmentBuilder", "ConstructSegment", "construct lookup")
//
// # Typed Errors
//
// Typed errors from other packages (for example expression.DeclarationError) participate
// in classification by implementing Classifier:
//
//	type Classifier interface {
//	    ErrorClass() ErrorClass
//	}
//
// Classification walks the Unwrap chain and uses the outermost ClassifiedError or
// Classifier it finds, falling back to the standard error variables and finally to
// message patterns.
//
// # Standard Error Variables
//
//   - Pipeline: ErrPipelineNotFound, ErrNoTerminal, ErrLookupNotFound, ErrConnectionNotFound
//   - Declaration: ErrUnknownClass, ErrUnknownExpression, ErrInvalidDefinition, ErrEmptySequence
//   - Evaluation: ErrNotIndexable, ErrInvalidIndex, ErrUnhashableKey, ErrNotNumeric,
//     ErrIncomparable, ErrDivisionByZero
//   - Configuration: ErrInvalidConfig, ErrMissingConfig, ErrConfigNotFound
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access.
package errors
