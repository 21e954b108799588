package registry

import (
	"fmt"
	"reflect"
	"strings"
)

// reprCharacterLimit caps the length of a default repr string.
const reprCharacterLimit = 150

// Record is the read-only view of an abstract record that repr functions
// receive. objinfo.ObjectInfo implements it.
type Record interface {
	Class() reflect.Type
	Nickname() string
	FieldNames() []string
	Field(name string) (any, bool)
}

// ReprFunc renders a record into its display string.
type ReprFunc func(Record) string

type reprEntry struct {
	fn                ReprFunc
	includeSubclasses bool
}

// RegisterRepr stores a display function for a class. With includeSubclasses
// the function also applies to descendants that have no registration of
// their own.
func (r *Registry) RegisterRepr(sample any, fn ReprFunc, includeSubclasses bool) {
	r.reprs[TypeOf(sample)] = reprEntry{fn: fn, includeSubclasses: includeSubclasses}
}

// ReprFor looks up the display function for a type: the type's own
// registration first, then the nearest ancestor registered with
// includeSubclasses.
func (r *Registry) ReprFor(t reflect.Type) (ReprFunc, bool) {
	if e, ok := r.reprs[t]; ok {
		return e.fn, true
	}
	// Breadth-first over ancestors so the nearest match wins.
	frontier := r.Parents(t)
	seen := map[reflect.Type]struct{}{t: {}}
	for len(frontier) > 0 {
		var next []reflect.Type
		for _, p := range frontier {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			if e, ok := r.reprs[p]; ok && e.includeSubclasses {
				return e.fn, true
			}
			next = append(next, r.Parents(p)...)
		}
		frontier = next
	}
	return nil, false
}

// Repr renders the display string for a record, using a registered repr
// function when one matches and the default form otherwise.
func (r *Registry) Repr(rec Record) string {
	if fn, ok := r.ReprFor(rec.Class()); ok {
		return fn(rec)
	}
	return r.defaultRepr(rec)
}

// defaultRepr produces "ClassName(param1=val1, ...)", prefixed with the
// nickname, substituting the alias when one is registered, masking secret
// parameters, and truncating past the character limit.
func (r *Registry) defaultRepr(rec Record) string {
	var b strings.Builder
	if nick := rec.Nickname(); nick != "" {
		fmt.Fprintf(&b, "(%s) ", nick)
	}

	t := rec.Class()
	if alias, ok := r.AliasedName(t); ok {
		fmt.Fprintf(&b, "%s(%s)", alias, t.Name())
	} else {
		b.WriteString(t.Name())
	}
	b.WriteString("(")

	var cls *Class
	if c, ok := r.Class(t); ok {
		cls = c
	}

	first := true
	for _, name := range rec.FieldNames() {
		if b.Len() > reprCharacterLimit {
			break
		}
		v, ok := rec.Field(name)
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(r.formatValue(v, cls != nil && cls.IsSecret(name)))
	}
	b.WriteString(")")

	out := b.String()
	if len(out) > reprCharacterLimit {
		out = out[:reprCharacterLimit] + "...)"
	}
	return out
}

func (r *Registry) formatValue(v any, secret bool) string {
	switch val := v.(type) {
	case Record:
		return r.Repr(val)
	case string:
		if secret {
			return `"` + strings.Repeat("*", len(val)) + `"`
		}
		return fmt.Sprintf("%q", val)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			parts := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts = append(parts, r.formatValue(rv.Index(i).Interface(), secret))
			}
			return "[" + strings.Join(parts, ", ") + "]"
		}
		return fmt.Sprint(v)
	}
}
