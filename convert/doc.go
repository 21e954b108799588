// Package convert implements the bidirectional transforms between abstract
// records, concrete Go objects and plain-data dictionaries, together with
// the leaf-value validator used while materializing raw text input.
//
// All transforms are synchronous and run entirely within the calling
// goroutine. Constructor failures are caught at exactly one boundary, the
// materialization call, and wrapped with the field path where they occurred;
// no other layer catches them.
package convert
