package registry

import (
	"reflect"

	"github.com/vk/objwiz/typedesc"
)

// Module is the interface a package implements to register its classes,
// annotations and rules with a Registry.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered classes and cross-cutting rules for a single
// engine instance.
type Registry struct {
	classes map[reflect.Type]*Class
	// order lists registered types in registration order; ancestry walks use
	// it instead of the classes map so lookups are deterministic.
	order   []reflect.Type
	names   map[string]reflect.Type
	aliases map[reflect.Type]string
	enums   map[reflect.Type][]typedesc.FlagMember
	rules   map[reflect.Type]map[string]ConversionRule
	reprs   map[reflect.Type]reprEntry

	deprecatedClasses    map[reflect.Type]struct{}
	deprecatedParams     map[reflect.Type]map[string]struct{}
	deprecatedParamTypes map[reflect.Type]map[string]map[reflect.Type]struct{}

	// generation increments on every mutation that can change resolution
	// results. Resolver caches key on it.
	generation uint64
}

// New creates an empty, isolated Registry instance.
func New() *Registry {
	return &Registry{
		classes:              make(map[reflect.Type]*Class),
		names:                make(map[string]reflect.Type),
		aliases:              make(map[reflect.Type]string),
		enums:                make(map[reflect.Type][]typedesc.FlagMember),
		rules:                make(map[reflect.Type]map[string]ConversionRule),
		reprs:                make(map[reflect.Type]reprEntry),
		deprecatedClasses:    make(map[reflect.Type]struct{}),
		deprecatedParams:     make(map[reflect.Type]map[string]struct{}),
		deprecatedParamTypes: make(map[reflect.Type]map[string]map[reflect.Type]struct{}),
	}
}

var globalRegistry = New()

// Global returns the process-wide registry. It is initialized at startup and
// lives for the whole process.
func Global() *Registry { return globalRegistry }

// Use lets a Module perform its registrations against this registry.
func (r *Registry) Use(m Module) { m.Register(r) }

// Generation returns the mutation counter. Any registration that can change a
// resolution result bumps it.
func (r *Registry) Generation() uint64 { return r.generation }

func (r *Registry) bump() { r.generation++ }

// TypeOf normalizes a registration sample into the class type it stands for.
// Accepted samples: a reflect.Type, a value of the class, or a pointer to it.
func TypeOf(sample any) reflect.Type {
	if t, ok := sample.(reflect.Type); ok {
		return t
	}
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		panic("registry: nil sample")
	}
	return t
}

// InterfaceOf returns the reflect.Type of the interface I, for registering
// interfaces as abstract classes.
func InterfaceOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}
