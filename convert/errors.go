package convert

import (
	"fmt"
	"reflect"
)

// CastError reports that raw text could not be cast into any of the
// declared built-in scalar kinds of a field.
type CastError struct {
	Raw        string
	Candidates []string
	Path       string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot convert %q to any of the accepted types %v", e.Raw, e.Candidates)
}

// LiteralValidationError reports raw text that matches none of a literal
// field's allowed values.
type LiteralValidationError struct {
	Raw     string
	Allowed []string
	Path    string
}

func (e *LiteralValidationError) Error() string {
	return fmt.Sprintf("%q is not one of the allowed literal values %v", e.Raw, e.Allowed)
}

// ConstructionError wraps a failure raised by the target constructor itself,
// attributed to the field path of the record being materialized.
type ConstructionError struct {
	Class reflect.Type
	Path  string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing %s at %s: %v", e.Class, e.Path, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// CyclicDefinitionError reports a record that directly or indirectly
// references itself. It is fatal to the conversion pass that found it only.
type CyclicDefinitionError struct {
	Class reflect.Type
	Path  string
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("cyclic definition: %s at %s references itself", e.Class, e.Path)
}

// UnknownTypeError reports a dictionary or template whose type path resolves
// to no registered class, e.g. after a rename.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q: not registered under that name", e.Name)
}

// AttributeMissingError reports an object attribute a conversion rule (or
// the default name-equals-parameter rule) expected but could not read.
type AttributeMissingError struct {
	Class reflect.Type
	Param string
	Attr  string
}

func (e *AttributeMissingError) Error() string {
	return fmt.Sprintf("object of type %s has no readable attribute %q for parameter %q", e.Class, e.Attr, e.Param)
}
