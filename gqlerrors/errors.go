// Package gqlerrors implements the error taxonomy described in spec §7:
// every engine error carries a Kind, a source position, and an optional
// response path.
package gqlerrors

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// Kind enumerates the taxonomy of spec §7.
type Kind int

const (
	ParseError Kind = iota
	NotSupported
	MissingOperation
	NotConfiguredMutations
	NotConfiguredSubscriptions
	FieldNotFound
	MustHaveSubFields
	UnknownDirective
	RequiredDirectiveArgs
	UnknownFragment
	VarNotDefined
	ExpectedType
	TooComplex
	TooDeep
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case NotSupported:
		return "NotSupported"
	case MissingOperation:
		return "MissingOperation"
	case NotConfiguredMutations:
		return "NotConfiguredMutations"
	case NotConfiguredSubscriptions:
		return "NotConfiguredSubscriptions"
	case FieldNotFound:
		return "FieldNotFound"
	case MustHaveSubFields:
		return "MustHaveSubFields"
	case UnknownDirective:
		return "UnknownDirective"
	case RequiredDirectiveArgs:
		return "RequiredDirectiveArgs"
	case UnknownFragment:
		return "UnknownFragment"
	case VarNotDefined:
		return "VarNotDefined"
	case ExpectedType:
		return "ExpectedType"
	case TooComplex:
		return "TooComplex"
	case TooDeep:
		return "TooDeep"
	default:
		return "Unknown"
	}
}

// Error is the single user-visible error type the engine raises,
// wrapping the Kind taxonomy with position and response-path context
// (spec §7: "a single Error::Query { pos, path, err } wrapping the
// taxonomy above").
type Error struct {
	Kind Kind
	Pos  ast.Position
	Path []interface{}

	// Detail carries kind-specific context (offending field name,
	// object name, directive name, expected/actual type strings, ...).
	Detail string

	// cause is the underlying Go error this wraps, when the Kind came
	// from an external collaborator (e.g. ParseError wraps the
	// gqlparser parse error).
	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("graphql: %s: %s", e.Kind, e.Detail)
	if e.Pos.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Pos.Line)
	}
	if len(e.Path) > 0 {
		msg += fmt.Sprintf(" path=%v", e.Path)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Wrap attaches pos/path context to an existing error taxonomy Kind
// (mirrors async-graphql's QueryError::into_error).
func Wrap(kind Kind, pos ast.Position, detail string) *Error {
	return &Error{Kind: kind, Pos: pos, Detail: detail}
}

// WrapCause wraps an external error (e.g. from the parser) preserving
// the original via github.com/pkg/errors so %+v retains a stack trace.
func WrapCause(kind Kind, pos ast.Position, detail string, cause error) *Error {
	return &Error{Kind: kind, Pos: pos, Detail: detail, cause: errors.WithStack(cause)}
}

// WithPath returns a copy of e with the path set, used once the
// resolver engine knows the field path at the failure site.
func (e *Error) WithPath(path []interface{}) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// MultiError is an ordered collection of *Error, the wire-level error
// list a transport renders in the standard GraphQL error envelope.
type MultiError []*Error

func (m MultiError) Error() string {
	if len(m) == 0 {
		return "<no errors>"
	}
	s := m[0].Error()
	for _, e := range m[1:] {
		s += "; " + e.Error()
	}
	return s
}

// FieldNotFoundErr builds the FieldNotFound taxonomy member.
func FieldNotFoundErr(pos ast.Position, field, object string) *Error {
	return Wrap(FieldNotFound, pos, fmt.Sprintf("field %q not found on %q", field, object))
}

// MustHaveSubFieldsErr builds the MustHaveSubFields taxonomy member.
func MustHaveSubFieldsErr(pos ast.Position, object string) *Error {
	return Wrap(MustHaveSubFields, pos, fmt.Sprintf("object %q must have subfields", object))
}

// UnknownDirectiveErr builds the UnknownDirective taxonomy member.
func UnknownDirectiveErr(pos ast.Position, name string) *Error {
	return Wrap(UnknownDirective, pos, fmt.Sprintf("unknown directive %q", name))
}

// RequiredDirectiveArgsErr builds the RequiredDirectiveArgs taxonomy member.
func RequiredDirectiveArgsErr(pos ast.Position, directive, argName, argType string) *Error {
	return Wrap(RequiredDirectiveArgs, pos, fmt.Sprintf("directive %s requires argument %s: %s", directive, argName, argType))
}

// UnknownFragmentErr builds the UnknownFragment taxonomy member.
func UnknownFragmentErr(pos ast.Position, name string) *Error {
	return Wrap(UnknownFragment, pos, fmt.Sprintf("unknown fragment %q", name))
}

// VarNotDefinedErr builds the VarNotDefined taxonomy member.
func VarNotDefinedErr(pos ast.Position, name string) *Error {
	return Wrap(VarNotDefined, pos, fmt.Sprintf("variable %q is not defined", name))
}

// ExpectedTypeErr builds the ExpectedType taxonomy member.
func ExpectedTypeErr(pos ast.Position, expect string, actual string) *Error {
	return Wrap(ExpectedType, pos, fmt.Sprintf("expected type %s, found %s", expect, actual))
}
