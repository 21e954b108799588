package registry

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/objwiz/typedesc"
)

// RegisterFlagEnum records the named bit values of a flag enum type, in
// declaration order. The type must have an unsigned or signed integer kind.
// Registering the same enum twice panics.
func (r *Registry) RegisterFlagEnum(sample any, members ...typedesc.FlagMember) {
	t := TypeOf(sample)
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		panic(fmt.Sprintf("registry: flag enum %s must have an integer kind, got %s", t, t.Kind()))
	}
	if _, exists := r.enums[t]; exists {
		panic(fmt.Sprintf("registry: flag enum %s already registered", t))
	}
	r.enums[t] = members
	r.names[t.String()] = t
	r.bump()
	slog.Debug("Registered flag enum.", "type", t.String(), "members", len(members))
}

// FlagMembers returns the ordered members of a registered flag enum.
func (r *Registry) FlagMembers(sample any) ([]typedesc.FlagMember, bool) {
	members, ok := r.enums[TypeOf(sample)]
	return members, ok
}
