// Package template reads and writes the persisted template format: a JSON
// document whose top level is either a single object of the shape
// {"type": <qualified type name>, "data": {...}} or a sequence of such
// objects. Data values are primitives, nested objects of the same shape, or
// sequences thereof.
//
// Type names are resolved against the registry at load time; an entry whose
// type no longer resolves fails with UnknownTypeError without taking the
// rest of a sequence document down with it.
package template
