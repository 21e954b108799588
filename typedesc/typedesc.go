package typedesc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates the Descriptor variants.
type Kind int

const (
	KindInvalid Kind = iota
	KindScalar
	KindLiteral
	KindFlagEnum
	KindStructured
	KindGeneric
	KindIterable
	KindUnion
	KindTypeVar
	KindUndefined
)

// ScalarKind enumerates the built-in scalar kinds a raw text value can be
// cast into.
type ScalarKind int

const (
	ScalarNone ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarString
	ScalarBool
)

// FlagMember is one named bit value of a flag enum, in declaration order.
type FlagMember struct {
	Name string
	Bit  uint64
}

// Descriptor is the resolved shape of a parameter annotation. The zero value
// is invalid; use the constructor functions.
type Descriptor struct {
	Kind Kind

	// Scalar is set for KindScalar.
	Scalar ScalarKind

	// Values holds the allowed strings of a KindLiteral, declaration order.
	Values []string

	// Class is the structured class, generic origin, or flag enum type.
	Class reflect.Type

	// Subclasses is the definable set of a KindStructured: the class itself
	// (when concrete) plus every registered non-abstract descendant. It is
	// computed live at resolution time and is excluded from Equal.
	Subclasses []reflect.Type

	// Members holds the flag enum members of a KindFlagEnum.
	Members []FlagMember

	// Args holds the type arguments of a KindGeneric, the members of a
	// KindUnion, or the single element type of a KindIterable.
	Args []*Descriptor

	// Var is the variable name of a KindTypeVar.
	Var string
}

// Scalar returns a scalar descriptor of the given kind.
func Scalar(k ScalarKind) *Descriptor {
	return &Descriptor{Kind: KindScalar, Scalar: k}
}

// None returns the scalar descriptor marking optionality inside a union.
func None() *Descriptor { return Scalar(ScalarNone) }

// Literal returns a literal descriptor with the allowed values in the given
// order.
func Literal(values ...string) *Descriptor {
	return &Descriptor{Kind: KindLiteral, Values: values}
}

// FlagEnum returns a flag enum descriptor for the given Go type and its
// ordered members.
func FlagEnum(t reflect.Type, members []FlagMember) *Descriptor {
	return &Descriptor{Kind: KindFlagEnum, Class: t, Members: members}
}

// Structured returns a structured descriptor for class with the given
// definable subclass set.
func Structured(class reflect.Type, subclasses []reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindStructured, Class: class, Subclasses: subclasses}
}

// Generic returns a generic descriptor binding args to origin's type
// parameters positionally.
func Generic(origin reflect.Type, args ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindGeneric, Class: origin, Args: args}
}

// Iterable returns an iterable descriptor over elem.
func Iterable(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindIterable, Args: []*Descriptor{elem}}
}

// Union returns a union descriptor over members, declaration order preserved.
func Union(members ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindUnion, Args: members}
}

// Optional returns union(d, none).
func Optional(d *Descriptor) *Descriptor { return Union(d, None()) }

// TypeVar returns an open type-variable descriptor.
func TypeVar(name string) *Descriptor {
	return &Descriptor{Kind: KindTypeVar, Var: name}
}

// Undefined returns the marker descriptor for a parameter whose annotation
// could not be resolved. It is reported in-band, never as an error.
func Undefined() *Descriptor { return &Descriptor{Kind: KindUndefined} }

// Elem returns the element descriptor of an iterable, or nil.
func (d *Descriptor) Elem() *Descriptor {
	if d.Kind == KindIterable && len(d.Args) == 1 {
		return d.Args[0]
	}
	return nil
}

// IsOptional reports whether d is a union containing a none member.
func (d *Descriptor) IsOptional() bool {
	if d.Kind != KindUnion {
		return false
	}
	for _, m := range d.Args {
		if m.Kind == KindScalar && m.Scalar == ScalarNone {
			return true
		}
	}
	return false
}

// NonNone returns the union members that are not none, in declaration order.
// For non-union descriptors it returns d itself.
func (d *Descriptor) NonNone() []*Descriptor {
	if d.Kind != KindUnion {
		return []*Descriptor{d}
	}
	out := make([]*Descriptor, 0, len(d.Args))
	for _, m := range d.Args {
		if m.Kind == KindScalar && m.Scalar == ScalarNone {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CtyType returns the cty type used to cast raw text into this scalar kind.
// It returns cty.NilType for none and for non-scalar descriptors.
func (d *Descriptor) CtyType() cty.Type {
	if d.Kind != KindScalar {
		return cty.NilType
	}
	switch d.Scalar {
	case ScalarInt, ScalarFloat:
		return cty.Number
	case ScalarString:
		return cty.String
	case ScalarBool:
		return cty.Bool
	default:
		return cty.NilType
	}
}

// Equal reports structural equality. The live subclass set of a structured
// descriptor is derived state and is not compared.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Scalar != o.Scalar || d.Var != o.Var || d.Class != o.Class {
		return false
	}
	if len(d.Values) != len(o.Values) || len(d.Args) != len(o.Args) || len(d.Members) != len(o.Members) {
		return false
	}
	for i, v := range d.Values {
		if o.Values[i] != v {
			return false
		}
	}
	for i, m := range d.Members {
		if o.Members[i] != m {
			return false
		}
	}
	for i, a := range d.Args {
		if !a.Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// String renders a readable form, used in errors and CLI output.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case KindScalar:
		switch d.Scalar {
		case ScalarInt:
			return "int"
		case ScalarFloat:
			return "float"
		case ScalarString:
			return "string"
		case ScalarBool:
			return "bool"
		default:
			return "none"
		}
	case KindLiteral:
		quoted := make([]string, len(d.Values))
		for i, v := range d.Values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return "literal(" + strings.Join(quoted, ", ") + ")"
	case KindFlagEnum:
		return "flags(" + d.Class.String() + ")"
	case KindStructured:
		return d.Class.String()
	case KindGeneric:
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = a.String()
		}
		return d.Class.String() + "(" + strings.Join(args, ", ") + ")"
	case KindIterable:
		return "list(" + d.Args[0].String() + ")"
	case KindUnion:
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = a.String()
		}
		return "union(" + strings.Join(args, ", ") + ")"
	case KindTypeVar:
		return d.Var
	case KindUndefined:
		return "undefined"
	default:
		return "invalid"
	}
}
