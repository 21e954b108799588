// Package objinfo defines ObjectInfo, the abstract record standing for a
// not-yet-materialized object: a target class plus an ordered mapping of
// constructor parameter names to values. The GUI layer, the template codec
// and the conversion engine all move ObjectInfo values between each other;
// nothing else crosses those boundaries.
package objinfo
