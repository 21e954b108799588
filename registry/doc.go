// Package registry provides the central lookup tables of the definition
// engine.
//
// A Registry stores everything that cannot be derived from a Go type alone:
// which types are definable classes, their ancestor/descendant links, display
// aliases, supplemental parameter annotations for types whose fields are not
// self-describing, deprecation marks, object-to-record conversion rules,
// custom repr functions, flag-enum members, parameter defaults and secret
// parameters.
//
// During application startup the registry is populated, typically through
// self-registering Modules, and is then treated as read-only. Mutation from
// multiple goroutines is unsupported; callers that must mutate concurrently
// have to serialize. Tests construct isolated instances with New instead of
// touching the process-wide Default registry.
package registry
