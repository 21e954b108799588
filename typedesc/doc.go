// Package typedesc defines the descriptor model for resolved parameter
// types. A Descriptor is the format-agnostic shape of one constructor
// parameter's annotation: a scalar, a literal set, a flag enum, a structured
// class (with its definable subclass set), a generic instantiation, an
// iterable, or a union of those.
//
// Descriptors are plain immutable values. They are produced by the resolve
// package and consumed by the conversion engine and by anything that renders
// forms from them.
package typedesc
