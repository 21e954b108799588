package convert

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/resolve"
	"github.com/vk/objwiz/typedesc"
)

// pass carries the per-conversion state: the memo of records already
// materialized (a record referenced twice produces one object) and the set
// of records currently being resolved, for cycle detection.
type pass struct {
	done   map[*objinfo.ObjectInfo]any
	active map[*objinfo.ObjectInfo]struct{}
}

func newPass() *pass {
	return &pass{
		done:   make(map[*objinfo.ObjectInfo]any),
		active: make(map[*objinfo.ObjectInfo]struct{}),
	}
}

// ToObject materializes a record into a concrete object: nested records
// depth-first, leaves first, then the target constructor with the resolved
// field values.
func (c *Converter) ToObject(ctx context.Context, rec *objinfo.ObjectInfo) (any, error) {
	return c.materialize(ctx, rec, newPass(), rec.Class().Name())
}

func (c *Converter) materialize(ctx context.Context, rec *objinfo.ObjectInfo, p *pass, path string) (any, error) {
	if obj, ok := p.done[rec]; ok {
		return obj, nil
	}
	if _, busy := p.active[rec]; busy {
		return nil, &CyclicDefinitionError{Class: rec.Class(), Path: path}
	}
	p.active[rec] = struct{}{}
	defer delete(p.active, rec)

	params, err := c.res.Resolve(ctx, rec.Class())
	if err != nil {
		return nil, fmt.Errorf("resolving %s at %s: %w", rec.Class(), path, err)
	}

	cls, registered := c.reg.Class(rec.Class())

	values := make(map[string]any, len(params))
	for _, param := range params {
		raw, set := rec.Field(param.Name)
		if !set {
			if registered {
				if def, ok := cls.Default(param.Name); ok {
					values[param.Name] = def
				}
			}
			continue
		}
		v, err := c.resolveValue(ctx, raw, param.Type, p, path+"."+param.Name)
		if err != nil {
			return nil, err
		}
		values[param.Name] = v
	}

	obj, err := c.construct(ctx, rec, cls, values, path)
	if err != nil {
		return nil, err
	}
	p.done[rec] = obj
	return obj, nil
}

// resolveValue turns one field value into its concrete form: nested records
// materialize, sequences recurse, flag sets combine, and raw strings pass
// through the validator when the declared type wants a cast.
func (c *Converter) resolveValue(ctx context.Context, v objinfo.Value, desc *typedesc.Descriptor, p *pass, path string) (any, error) {
	switch val := v.(type) {
	case *objinfo.ObjectInfo:
		return c.materialize(ctx, val, p, path)

	case []objinfo.Value:
		var elemDesc *typedesc.Descriptor
		if desc != nil {
			elemDesc = desc.Elem()
		}
		out := make([]any, len(val))
		for i, e := range val {
			ev, err := c.resolveValue(ctx, e, elemDesc, p, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	case objinfo.FlagSet:
		return c.combineFlags(val, path)

	case string:
		if desc == nil {
			return val, nil
		}
		switch desc.Kind {
		case typedesc.KindLiteral, typedesc.KindUnion:
		case typedesc.KindScalar:
			if desc.Scalar == typedesc.ScalarString {
				return val, nil
			}
		default:
			return val, nil
		}
		cast, deferred, err := CastRaw(val, desc)
		if err != nil {
			attachPath(err, path)
			return nil, err
		}
		if deferred {
			ctxlog.FromContext(ctx).Debug("Raw value deferred past validation.", "path", path)
			return val, nil
		}
		return cast, nil

	default:
		return v, nil
	}
}

// combineFlags folds the chosen member names of a flag set into the combined
// bit value, validated against the registered members.
func (c *Converter) combineFlags(fs objinfo.FlagSet, path string) (any, error) {
	members, ok := c.reg.FlagMembers(fs.Type)
	if !ok {
		return nil, fmt.Errorf("at %s: %s is not a registered flag enum", path, fs.Type)
	}
	byName := make(map[string]uint64, len(members))
	names := make([]string, len(members))
	for i, m := range members {
		byName[m.Name] = m.Bit
		names[i] = m.Name
	}
	var combined uint64
	for _, name := range fs.Names {
		bit, ok := byName[name]
		if !ok {
			return nil, &CastError{Raw: name, Candidates: names, Path: path}
		}
		combined |= bit
	}
	return combined, nil
}

// construct is the single constructor boundary: whatever the registered
// factory or the populated struct's Validate hook raises is caught here and
// wrapped with path context. No other layer catches constructor failures.
func (c *Converter) construct(ctx context.Context, rec *objinfo.ObjectInfo, cls *registry.Class, values map[string]any, path string) (obj any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConstructionError{Class: rec.Class(), Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	if cls != nil && cls.Factory().IsValid() {
		factory := cls.Factory()
		in := reflect.New(cls.ParamsType()).Elem()
		if err := populate(in, values); err != nil {
			return nil, fmt.Errorf("at %s: %w", path, err)
		}
		arg := in
		if factory.Type().In(0).Kind() == reflect.Pointer {
			arg = in.Addr()
		}
		outs := factory.Call([]reflect.Value{arg})
		if len(outs) == 2 && !outs[1].IsNil() {
			return nil, &ConstructionError{Class: rec.Class(), Path: path, Err: outs[1].Interface().(error)}
		}
		return outs[0].Interface(), nil
	}

	if rec.Class().Kind() != reflect.Struct {
		return nil, fmt.Errorf("at %s: cannot materialize %s without a registered factory", path, rec.Class())
	}
	target := reflect.New(rec.Class()).Elem()
	if err := populate(target, values); err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	if validator, ok := target.Addr().Interface().(interface{ Validate() error }); ok {
		if verr := validator.Validate(); verr != nil {
			return nil, &ConstructionError{Class: rec.Class(), Path: path, Err: verr}
		}
	}
	return target.Interface(), nil
}

// populate assigns resolved parameter values onto the fields of a params
// struct, matching fields by their derived parameter names.
func populate(structVal reflect.Value, values map[string]any) error {
	t := structVal.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := resolve.ParamName(field)
		v, ok := values[name]
		if !ok {
			continue
		}
		if err := assign(structVal.Field(i), v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

// assign adapts a resolved value onto one struct field, handling pointer
// wrapping, slice element recursion, numeric width conversion and interface
// satisfaction.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)

	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.Slice:
		if rv.Kind() != reflect.Slice {
			break
		}
		out := reflect.MakeSlice(dst.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := assign(out.Index(i), rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case reflect.Interface:
		if rv.Type().Implements(dst.Type()) {
			dst.Set(rv)
			return nil
		}
		if reflect.PointerTo(rv.Type()).Implements(dst.Type()) {
			ptr := reflect.New(rv.Type())
			ptr.Elem().Set(rv)
			dst.Set(ptr)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if isNumeric(rv.Kind()) && rv.Type().ConvertibleTo(dst.Type()) {
			dst.Set(rv.Convert(dst.Type()))
			return nil
		}
	}

	return fmt.Errorf("cannot assign value of type %s to %s", rv.Type(), dst.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// attachPath fills the Path of a validation error raised for one field.
func attachPath(err error, path string) {
	switch e := err.(type) {
	case *CastError:
		e.Path = path
	case *LiteralValidationError:
		e.Path = path
	}
}
