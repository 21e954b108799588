package resolve

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/typedesc"
)

// defaultCacheSize bounds the resolved-signature cache.
const defaultCacheSize = 512

// Param is one resolved constructor parameter.
type Param struct {
	Name       string
	Type       *typedesc.Descriptor
	HasDefault bool
	Deprecated bool
}

// Definable reports whether the parameter can be edited: parameters whose
// annotation could not be resolved stay in the output, flagged undefined,
// so callers can surface them as non-editable.
func (p Param) Definable() bool {
	return p.Type != nil && p.Type.Kind != typedesc.KindUndefined
}

type cacheKey struct {
	class      reflect.Type
	args       string
	generation uint64
}

// Resolver resolves class signatures against one registry.
type Resolver struct {
	reg   *registry.Registry
	cache *lru.Cache[cacheKey, []Param]
}

// New creates a Resolver bound to reg.
func New(reg *registry.Registry) *Resolver {
	cache, err := lru.New[cacheKey, []Param](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &Resolver{reg: reg, cache: cache}
}

// Registry returns the registry the resolver consults.
func (r *Resolver) Registry() *registry.Registry { return r.reg }

// Resolve returns the ordered constructor parameters of a class. For a
// generic origin, typeArgs bind its declared type parameters positionally;
// missing arguments leave the corresponding variables open rather than
// failing.
func (r *Resolver) Resolve(ctx context.Context, sample any, typeArgs ...*typedesc.Descriptor) ([]Param, error) {
	t := registry.TypeOf(sample)

	key := cacheKey{class: t, args: argsKey(typeArgs), generation: r.reg.Generation()}
	if params, ok := r.cache.Get(key); ok {
		return params, nil
	}

	logger := ctxlog.FromContext(ctx).With("class", t.String())

	cls, registered := r.reg.Class(t)
	paramsType := t
	var typeParams []string
	if registered {
		paramsType = cls.ParamsType()
		typeParams = cls.TypeParams
	}
	if paramsType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot resolve parameters of %s: params type %s is not a struct", t, paramsType)
	}

	binding := make(map[string]*typedesc.Descriptor, len(typeParams))
	for i, name := range typeParams {
		if i < len(typeArgs) {
			binding[name] = typeArgs[i]
		} else {
			binding[name] = nil // open
		}
	}

	scope := &exprScope{reg: r.reg, binding: binding}
	var params []Param

	for i := 0; i < paramsType.NumField(); i++ {
		field := paramsType.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := ParamName(field)
		if name == "" {
			continue
		}

		desc := r.resolveField(ctx, t, field, name, scope)
		if desc.Kind == typedesc.KindUndefined {
			logger.Debug("Parameter has no resolvable annotation.", "param", name)
		}

		params = append(params, Param{
			Name:       name,
			Type:       desc,
			HasDefault: registered && hasDefault(cls, name),
			Deprecated: r.reg.IsDeprecatedParam(t, name),
		})
	}

	r.cache.Add(key, params)
	return params, nil
}

// resolveField produces the descriptor for one params-struct field. A usable
// declared field type always wins; supplemental annotations apply only to
// fields typed `any` or named type variables of the origin class.
func (r *Resolver) resolveField(ctx context.Context, class reflect.Type, field reflect.StructField, name string, scope *exprScope) *typedesc.Descriptor {
	logger := ctxlog.FromContext(ctx)

	if isOpenField(field.Type) {
		if ann, ok := r.reg.Annotation(class, name); ok {
			desc, err := r.annotationDescriptor(ctx, ann, scope)
			if err != nil {
				logger.Warn("Supplemental annotation is invalid, parameter stays undefined.",
					"class", class.String(), "param", name, "error", err)
				return typedesc.Undefined()
			}
			return desc
		}
		return typedesc.Undefined()
	}

	return r.classify(field.Type, scope)
}

// annotationDescriptor resolves one supplemental annotation: either a
// prebuilt descriptor (type variables substituted against the current
// binding) or a textual type expression.
func (r *Resolver) annotationDescriptor(ctx context.Context, ann any, scope *exprScope) (*typedesc.Descriptor, error) {
	switch a := ann.(type) {
	case *typedesc.Descriptor:
		return r.substitute(a, scope), nil
	case string:
		return r.parseTypeExpr(ctx, a, scope)
	default:
		return nil, fmt.Errorf("unsupported annotation %T", ann)
	}
}

// substitute rebinds type variables inside a prebuilt descriptor and
// refreshes live subclass sets.
func (r *Resolver) substitute(d *typedesc.Descriptor, scope *exprScope) *typedesc.Descriptor {
	switch d.Kind {
	case typedesc.KindTypeVar:
		if bound, ok := scope.binding[d.Var]; ok && bound != nil {
			return bound
		}
		return d
	case typedesc.KindStructured:
		return typedesc.Structured(d.Class, r.definable(d.Class))
	case typedesc.KindIterable:
		return typedesc.Iterable(r.substitute(d.Args[0], scope))
	case typedesc.KindUnion, typedesc.KindGeneric:
		args := make([]*typedesc.Descriptor, len(d.Args))
		for i, a := range d.Args {
			args[i] = r.substitute(a, scope)
		}
		if d.Kind == typedesc.KindUnion {
			return typedesc.Union(args...)
		}
		return typedesc.Generic(d.Class, args...)
	default:
		return d
	}
}

// classify maps a declared Go type onto a descriptor.
func (r *Resolver) classify(t reflect.Type, scope *exprScope) *typedesc.Descriptor {
	if members, ok := r.reg.FlagMembers(t); ok {
		return typedesc.FlagEnum(t, members)
	}
	if _, ok := r.reg.Class(t); ok {
		return typedesc.Structured(t, r.definable(t))
	}

	switch t.Kind() {
	case reflect.String:
		return typedesc.Scalar(typedesc.ScalarString)
	case reflect.Bool:
		return typedesc.Scalar(typedesc.ScalarBool)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typedesc.Scalar(typedesc.ScalarInt)
	case reflect.Float32, reflect.Float64:
		return typedesc.Scalar(typedesc.ScalarFloat)
	case reflect.Pointer:
		return typedesc.Optional(r.classify(t.Elem(), scope))
	case reflect.Slice, reflect.Array:
		return typedesc.Iterable(r.classify(t.Elem(), scope))
	case reflect.Struct:
		return typedesc.Structured(t, r.definable(t))
	case reflect.Interface:
		// Non-empty interfaces are abstract classes; `any` is handled by
		// the supplemental-annotation path before classify runs.
		if t.NumMethod() > 0 {
			return typedesc.Structured(t, r.definable(t))
		}
		return typedesc.Undefined()
	default:
		return typedesc.Undefined()
	}
}

// definable computes the live definable set for a declared class. An
// unregistered concrete type is definable as itself; registered types follow
// the registry's abstractness and descendant graph.
func (r *Resolver) definable(t reflect.Type) []reflect.Type {
	if _, ok := r.reg.Class(t); ok {
		return r.reg.Definable(t)
	}
	if t.Kind() == reflect.Interface {
		return nil
	}
	return []reflect.Type{t}
}

func isOpenField(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func hasDefault(c *registry.Class, param string) bool {
	_, ok := c.Default(param)
	return ok
}

// ParamName derives the constructor parameter name for a field: the wiz tag
// when present, a lower-camel form of the field name otherwise. A "-" tag
// excludes the field.
func ParamName(field reflect.StructField) string {
	tag := field.Tag.Get("wiz")
	tag = strings.Split(tag, ",")[0]
	if tag == "-" {
		return ""
	}
	if tag != "" {
		return tag
	}
	r, size := utf8.DecodeRuneInString(field.Name)
	return string(unicode.ToLower(r)) + field.Name[size:]
}

func argsKey(args []*typedesc.Descriptor) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
