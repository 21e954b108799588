package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/objwiz/typedesc"
)

// RegisterAnnotations merges supplemental parameter annotations into a
// registered class. A value is either a textual type expression (parsed by
// the resolver, e.g. "union(string, float)", "list(Wheel)") or a prebuilt
// *typedesc.Descriptor.
//
// Supplements only take effect for parameters whose Go field type is not
// self-describing (interface-typed fields and declared type variables); a
// field with a usable declared type is never overridden.
func (r *Registry) RegisterAnnotations(sample any, annotations map[string]any) {
	t := TypeOf(sample)
	c, ok := r.classes[t]
	if !ok {
		panic(fmt.Sprintf("registry: annotations for unregistered class %s", t))
	}
	for param, ann := range annotations {
		switch ann.(type) {
		case string, *typedesc.Descriptor:
		default:
			panic(fmt.Sprintf("registry: annotation for %s.%s must be a type expression string or *typedesc.Descriptor, got %T", t, param, ann))
		}
		c.annotations[param] = ann
	}
	r.bump()
	slog.Debug("Registered supplemental annotations.", "type", t.String(), "count", len(annotations))
}

// Annotation returns the supplemental annotation registered for one
// parameter of a class.
func (r *Registry) Annotation(sample any, param string) (any, bool) {
	c, ok := r.classes[TypeOf(sample)]
	if !ok {
		return nil, false
	}
	ann, ok := c.annotations[param]
	return ann, ok
}
