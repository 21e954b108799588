// This file derives abstract records back from live objects, the inverse of
// materialization.

package convert

import (
	"context"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/resolve"
	"github.com/vk/objwiz/typedesc"
)

// ToObjectInfo derives a record from a live object. For each constructor
// parameter the registered conversion rule applies when one exists;
// otherwise the attribute is assumed to carry the parameter's name and is
// read directly.
func (c *Converter) ToObjectInfo(ctx context.Context, obj any) (*objinfo.ObjectInfo, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot derive a record from a nil pointer")
		}
		rv = rv.Elem()
	}
	t := rv.Type()

	params, err := c.res.Resolve(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", t, err)
	}
	rules, _ := c.reg.ConversionRules(t)

	rec := objinfo.New(t)
	for _, param := range params {
		raw, err := c.readParam(rv, obj, t, param.Name, rules)
		if err != nil {
			return nil, err
		}
		v, err := c.infoValue(ctx, raw, param.Type)
		if err != nil {
			return nil, fmt.Errorf("in parameter %q of %s: %w", param.Name, t, err)
		}
		rec.Set(param.Name, v)
	}
	return rec, nil
}

func (c *Converter) readParam(rv reflect.Value, obj any, t reflect.Type, param string, rules map[string]registry.ConversionRule) (any, error) {
	if rule, ok := rules[param]; ok {
		if rule.Getter != nil {
			v, err := rule.Getter(obj)
			if err != nil {
				return nil, fmt.Errorf("conversion rule for %s.%s: %w", t, param, err)
			}
			return v, nil
		}
		return readAttr(rv, t, param, rule.Attr)
	}
	return readAttr(rv, t, param, param)
}

// readAttr reads an attribute off a struct value: an exact field name, a
// field whose derived parameter name matches, or a no-argument method as the
// getter of last resort.
func readAttr(rv reflect.Value, t reflect.Type, param, attr string) (any, error) {
	if rv.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(attr); ok && f.IsExported() {
			return rv.FieldByIndex(f.Index).Interface(), nil
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Anonymous {
				continue
			}
			if resolve.ParamName(field) == attr {
				return rv.Field(i).Interface(), nil
			}
		}
	}
	for _, name := range []string{attr, exportedName(attr)} {
		if m := rv.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
			return m.Call(nil)[0].Interface(), nil
		}
	}
	return nil, &AttributeMissingError{Class: t, Param: param, Attr: attr}
}

// exportedName upper-cases the first rune, mapping a parameter name back to
// the exported method that would carry it.
func exportedName(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// infoValue normalizes an attribute value into its abstract form: structured
// values recurse into nested records, sequences map element-wise, flag enums
// decompose into member names, numbers canonicalize to int64/float64.
func (c *Converter) infoValue(ctx context.Context, v any, desc *typedesc.Descriptor) (objinfo.Value, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)

	if desc != nil {
		for _, d := range desc.NonNone() {
			if d.Kind == typedesc.KindFlagEnum && rv.Type() == d.Class {
				return c.decomposeFlags(rv, d.Class)
			}
		}
	}
	if members, ok := c.reg.FlagMembers(rv.Type()); ok && len(members) > 0 {
		return c.decomposeFlags(rv, rv.Type())
	}

	// Registered classes recurse regardless of their underlying kind, so
	// types like time.Duration resolve through their rules and not as bare
	// integers.
	if _, isClass := c.reg.Class(rv.Type()); isClass {
		return c.ToObjectInfo(ctx, v)
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return c.infoValue(ctx, rv.Elem().Interface(), desc)

	case reflect.Struct, reflect.Interface:
		return c.ToObjectInfo(ctx, v)

	case reflect.Slice, reflect.Array:
		var elemDesc *typedesc.Descriptor
		if desc != nil {
			elemDesc = desc.Elem()
		}
		out := make([]objinfo.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := c.infoValue(ctx, rv.Index(i).Interface(), elemDesc)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil

	default:
		return v, nil
	}
}

func (c *Converter) decomposeFlags(rv reflect.Value, t reflect.Type) (objinfo.Value, error) {
	members, ok := c.reg.FlagMembers(t)
	if !ok {
		return nil, fmt.Errorf("%s is not a registered flag enum", t)
	}
	var combined uint64
	switch {
	case rv.CanUint():
		combined = rv.Uint()
	case rv.CanInt():
		combined = uint64(rv.Int())
	default:
		return nil, fmt.Errorf("flag enum value of %s has non-integer kind %s", t, rv.Kind())
	}
	var names []string
	for _, m := range members {
		if m.Bit != 0 && combined&m.Bit == m.Bit {
			names = append(names, m.Name)
		}
	}
	return objinfo.FlagSet{Type: t, Names: names}, nil
}
