// Package session tracks one in-progress object definition: the record a
// user is filling in, field by field, until it is saved to a return target
// or cancelled and discarded.
//
// A session owns its record exclusively. All calls happen on the caller's
// goroutine in response to discrete user events; there is no engine-owned
// loop and nothing to roll back on cancel.
package session
