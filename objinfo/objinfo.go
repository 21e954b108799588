package objinfo

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Value is one field value of a record: a Go primitive, a nested
// *ObjectInfo, a []Value sequence, or a FlagSet.
type Value = any

// FlagSet is the abstract value of a flag-enum field: the enum type plus the
// chosen member names, in the order they were chosen.
type FlagSet struct {
	Type  reflect.Type
	Names []string
}

// ObjectInfo is the abstract record for one object definition. A record is
// owned exclusively by the definition session that created it until it is
// handed to a return target; after handoff it is treated as immutable input.
//
// Records are never merged: every definition action creates a distinct
// record with its own identity.
type ObjectInfo struct {
	id       uuid.UUID
	class    reflect.Type
	nickname string
	order    []string
	fields   map[string]Value
}

// New creates an empty record targeting the given class. The sample may be a
// reflect.Type, a value of the class, or a pointer to it.
func New(sample any) *ObjectInfo {
	return &ObjectInfo{
		id:     uuid.New(),
		class:  classOf(sample),
		fields: make(map[string]Value),
	}
}

func classOf(sample any) reflect.Type {
	if t, ok := sample.(reflect.Type); ok {
		return t
	}
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		panic("objinfo: nil class sample")
	}
	return t
}

// ID returns the record's identity, used by diagnostics. Equality ignores it.
func (o *ObjectInfo) ID() uuid.UUID { return o.id }

// Class returns the target type the record describes.
func (o *ObjectInfo) Class() reflect.Type { return o.class }

// Nickname returns the user-assigned nickname, or "".
func (o *ObjectInfo) Nickname() string { return o.nickname }

// SetNickname assigns a nickname for easier recognition in lists.
func (o *ObjectInfo) SetNickname(nick string) { o.nickname = nick }

// Set stores a field value, appending to the field order on first set.
func (o *ObjectInfo) Set(name string, v Value) {
	if _, ok := o.fields[name]; !ok {
		o.order = append(o.order, name)
	}
	o.fields[name] = v
}

// Field returns a field value. The second result is false for unset fields;
// unset is distinct from a stored nil.
func (o *ObjectInfo) Field(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

// Has reports whether the field is set.
func (o *ObjectInfo) Has(name string) bool {
	_, ok := o.fields[name]
	return ok
}

// Unset removes a field. It stays absent through conversion round-trips.
func (o *ObjectInfo) Unset(name string) {
	if _, ok := o.fields[name]; !ok {
		return
	}
	delete(o.fields, name)
	for i, n := range o.order {
		if n == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// FieldNames returns the set field names in insertion order.
func (o *ObjectInfo) FieldNames() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Len returns the number of set fields.
func (o *ObjectInfo) Len() int { return len(o.fields) }

// Clone deep-copies the record. The copy gets a fresh identity; edit
// sessions mutate the clone so cancel can discard it without touching the
// original.
func (o *ObjectInfo) Clone() *ObjectInfo {
	c := New(o.class)
	c.nickname = o.nickname
	for _, name := range o.order {
		c.Set(name, cloneValue(o.fields[name]))
	}
	return c
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case *ObjectInfo:
		return val.Clone()
	case []Value:
		out := make([]Value, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case FlagSet:
		names := make([]string, len(val.Names))
		copy(names, val.Names)
		return FlagSet{Type: val.Type, Names: names}
	default:
		return v
	}
}

// Equal reports whether two records target the same class and hold equal
// values for every set field. Identity and nickname are not compared.
func (o *ObjectInfo) Equal(other *ObjectInfo) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.class != other.class || len(o.fields) != len(other.fields) {
		return false
	}
	for name, v := range o.fields {
		ov, ok := other.fields[name]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case *ObjectInfo:
		bv, ok := b.(*ObjectInfo)
		return ok && av.Equal(bv)
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// String renders a bare debugging form. Display strings for users come from
// the registry's repr lookup instead.
func (o *ObjectInfo) String() string {
	var b strings.Builder
	b.WriteString(o.class.Name())
	b.WriteString("(")
	for i, name := range o.order {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", name, o.fields[name])
	}
	b.WriteString(")")
	return b.String()
}
