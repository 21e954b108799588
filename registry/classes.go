package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Class is one registered definable type together with the registration-time
// facts resolution and conversion need.
type Class struct {
	Type     reflect.Type
	Abstract bool

	// TypeParams names the declared type variables of a generic origin, in
	// order. Supplemental annotations may reference them.
	TypeParams []string

	// factory is an optional constructor. Its single input parameter is a
	// params struct whose fields define the class's constructor parameters;
	// without a factory the class type's own fields do.
	factory     reflect.Value
	paramsType  reflect.Type
	annotations map[string]any
	defaults    map[string]any
	secrets     map[string]struct{}

	parents  []reflect.Type
	children []reflect.Type
}

// ParamsType returns the struct type whose fields are the class's
// constructor parameters.
func (c *Class) ParamsType() reflect.Type { return c.paramsType }

// Factory returns the registered constructor function value, or an invalid
// value when the class is constructed by populating its own fields.
func (c *Class) Factory() reflect.Value { return c.factory }

// Default returns the registered default for a parameter.
func (c *Class) Default(param string) (any, bool) {
	v, ok := c.defaults[param]
	return v, ok
}

// IsSecret reports whether a parameter was registered as secret. Secret
// values are masked by the default repr.
func (c *Class) IsSecret(param string) bool {
	_, ok := c.secrets[param]
	return ok
}

// ClassOption configures a class registration.
type ClassOption func(*Class)

// Abstract marks the class as not directly definable. Interfaces are
// abstract implicitly.
func Abstract() ClassOption {
	return func(c *Class) { c.Abstract = true }
}

// Parent links the class under an explicitly named ancestor, in addition to
// the interface-satisfaction and embedding links discovered automatically.
func Parent(sample any) ClassOption {
	t := TypeOf(sample)
	return func(c *Class) { c.parents = append(c.parents, t) }
}

// TypeParams declares the type variables of a generic origin class.
func TypeParams(names ...string) ClassOption {
	return func(c *Class) { c.TypeParams = names }
}

// Factory registers a constructor fn of shape func(P) (T, error) or
// func(P) T. P is a struct whose fields become the class's constructor
// parameters.
func Factory(fn any) ClassOption {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() < 1 || t.NumOut() > 2 {
		panic(fmt.Sprintf("registry: factory must be func(P) (T[, error]), got %s", t))
	}
	in := t.In(0)
	if in.Kind() == reflect.Pointer {
		in = in.Elem()
	}
	if in.Kind() != reflect.Struct {
		panic(fmt.Sprintf("registry: factory input must be a struct, got %s", t.In(0)))
	}
	return func(c *Class) {
		c.factory = v
		c.paramsType = in
	}
}

// Default registers a default value for one constructor parameter. Records
// that leave the parameter unset materialize with the default.
func Default(param string, value any) ClassOption {
	return func(c *Class) { c.defaults[param] = value }
}

// Secret marks parameters whose values the default repr masks.
func Secret(params ...string) ClassOption {
	return func(c *Class) {
		for _, p := range params {
			c.secrets[p] = struct{}{}
		}
	}
}

// RegisterClass enters a type into the class graph and the qualified-name
// table. Registering the same type twice panics, matching the other
// registries' duplicate policy.
func (r *Registry) RegisterClass(sample any, opts ...ClassOption) *Class {
	t := TypeOf(sample)
	if _, exists := r.classes[t]; exists {
		panic(fmt.Sprintf("registry: class %s already registered", t))
	}

	c := &Class{
		Type:        t,
		paramsType:  t,
		annotations: make(map[string]any),
		defaults:    make(map[string]any),
		secrets:     make(map[string]struct{}),
	}
	if t.Kind() == reflect.Interface {
		c.Abstract = true
	}
	for _, opt := range opts {
		opt(c)
	}

	r.classes[t] = c
	r.order = append(r.order, t)
	r.names[t.String()] = t
	r.linkAncestry(c)
	r.bump()
	slog.Debug("Registered class.", "type", t.String(), "abstract", c.Abstract)
	return c
}

// linkAncestry wires the new class into the subclass graph: explicit Parent
// links, interface satisfaction against every registered interface, struct
// embedding, and (for a new interface) satisfaction by every registered
// struct.
func (r *Registry) linkAncestry(c *Class) {
	t := c.Type

	for _, p := range c.parents {
		if pc, ok := r.classes[p]; ok {
			pc.children = append(pc.children, t)
		}
	}

	if t.Kind() == reflect.Interface {
		for _, ot := range r.order {
			if ot == t || ot.Kind() == reflect.Interface {
				continue
			}
			if implements(ot, t) {
				c.children = append(c.children, ot)
			}
		}
		return
	}

	for _, ot := range r.order {
		if ot.Kind() == reflect.Interface && implements(t, ot) {
			r.classes[ot].children = append(r.classes[ot].children, t)
		}
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			if pc, ok := r.classes[f.Type]; ok {
				pc.children = append(pc.children, t)
			}
		}
	}
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// Class returns the registration entry for a type.
func (r *Registry) Class(t reflect.Type) (*Class, bool) {
	c, ok := r.classes[t]
	return c, ok
}

// ClassByName resolves a fully-qualified type name ("pkg.Type") back to its
// registered type. Names are entered at registration; a renamed or
// unregistered class is simply absent.
func (r *Registry) ClassByName(name string) (reflect.Type, bool) {
	t, ok := r.names[name]
	return t, ok
}

// LookupName resolves a type name to a registered type, accepting either
// the fully-qualified "pkg.Type" form or a bare type name or alias when it
// is unambiguous among registrations.
func (r *Registry) LookupName(name string) (reflect.Type, bool) {
	if t, ok := r.names[name]; ok {
		return t, true
	}
	var found reflect.Type
	for qualified, t := range r.names {
		if dot := lastDot(qualified); dot >= 0 && qualified[dot+1:] == name {
			if found != nil && found != t {
				return nil, false // ambiguous
			}
			found = t
		}
	}
	if found == nil {
		for t, alias := range r.aliases {
			if alias == name {
				if found != nil && found != t {
					return nil, false
				}
				found = t
			}
		}
	}
	return found, found != nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// Descendants returns the transitive non-abstract descendants of t, in
// registration order, deduplicated. It walks the live graph on every call so
// classes registered after a first resolution are included.
func (r *Registry) Descendants(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := map[reflect.Type]struct{}{t: {}}
	var walk func(reflect.Type)
	walk = func(cur reflect.Type) {
		c, ok := r.classes[cur]
		if !ok {
			return
		}
		for _, child := range c.children {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			if cc, ok := r.classes[child]; ok && !cc.Abstract {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(t)
	return out
}

// Definable returns the definable set for a declared class: the class itself
// when concrete, plus its non-abstract descendant closure.
func (r *Registry) Definable(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	if c, ok := r.classes[t]; ok && !c.Abstract {
		out = append(out, t)
	}
	return append(out, r.Descendants(t)...)
}

// Parents returns the direct registered ancestors of t, nearest first:
// explicit Parent links, embedded structs, then satisfied interfaces in
// their registration order.
func (r *Registry) Parents(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := make(map[reflect.Type]struct{})
	add := func(p reflect.Type) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if c, ok := r.classes[t]; ok {
		for _, p := range c.parents {
			add(p)
		}
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				if _, ok := r.classes[f.Type]; ok {
					add(f.Type)
				}
			}
		}
	}
	for _, other := range r.order {
		if other.Kind() == reflect.Interface && other != t && implements(t, other) {
			add(other)
		}
	}
	return out
}
