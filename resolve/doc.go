// Package resolve turns a registered class into the ordered list of its
// constructor parameters with fully resolved type descriptors.
//
// Resolution walks the class's params struct with reflection, classifies
// every field into a typedesc.Descriptor, merges supplemental annotations
// from the registry for fields whose Go type is not self-describing, expands
// structured types to their live non-abstract subclass closure, and
// substitutes generic type variables from explicitly supplied type
// arguments.
//
// Supplemental annotations may be textual type expressions,
// e.g. "union(string, float)", "optional(list(Wheel))" or
// `literal("A", "B")`; they are parsed with hclsyntax.
//
// Results are cached per (class, type arguments) and invalidated whenever
// the registry's generation counter moves.
package resolve
