// This file implements the dictionary (plain-data) representation of
// records, the shape the template format persists.

package convert

import (
	"context"
	"fmt"

	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/typedesc"
)

// ToDict converts a record into its plain-data form:
// {"type": <qualified name>, "data": {field: value-or-nested-dict}},
// recursively. Unset fields are simply absent.
func (c *Converter) ToDict(rec *objinfo.ObjectInfo) map[string]any {
	data := make(map[string]any, rec.Len())
	for _, name := range rec.FieldNames() {
		v, _ := rec.Field(name)
		data[name] = c.dictValue(v)
	}
	out := map[string]any{
		"type": rec.Class().String(),
		"data": data,
	}
	if nick := rec.Nickname(); nick != "" {
		out["nickname"] = nick
	}
	return out
}

func (c *Converter) dictValue(v objinfo.Value) any {
	switch val := v.(type) {
	case *objinfo.ObjectInfo:
		return c.ToDict(val)
	case []objinfo.Value:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = c.dictValue(e)
		}
		return out
	case objinfo.FlagSet:
		var combined uint64
		if members, ok := c.reg.FlagMembers(val.Type); ok {
			byName := make(map[string]uint64, len(members))
			for _, m := range members {
				byName[m.Name] = m.Bit
			}
			for _, name := range val.Names {
				combined |= byName[name]
			}
		}
		return map[string]any{"type": val.Type.String(), "value": int64(combined)}
	default:
		return v
	}
}

// FromDict reconstructs a record from its plain-data form. The type name is
// resolved through the registry (UnknownTypeError when it no longer resolves,
// e.g. after a rename) and the class's parameters are re-resolved to decide
// which nested values become records and which stay primitives. Data keys
// that match no parameter are logged and skipped; fields that were unset
// stay unset.
func (c *Converter) FromDict(ctx context.Context, d map[string]any) (*objinfo.ObjectInfo, error) {
	name, _ := d["type"].(string)
	if name == "" {
		return nil, fmt.Errorf("dictionary has no type name")
	}
	t, ok := c.reg.ClassByName(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}

	params, err := c.res.Resolve(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}

	rec := objinfo.New(t)
	if nick, ok := d["nickname"].(string); ok {
		rec.SetNickname(nick)
	}

	data, _ := d["data"].(map[string]any)
	known := make(map[string]struct{}, len(params))

	for _, param := range params {
		known[param.Name] = struct{}{}
		raw, present := data[param.Name]
		if !present {
			continue
		}
		v, err := c.fromDictValue(ctx, raw, param.Type)
		if err != nil {
			return nil, fmt.Errorf("in field %q of %s: %w", param.Name, name, err)
		}
		rec.Set(param.Name, v)
	}

	logger := ctxlog.FromContext(ctx)
	for key := range data {
		if _, ok := known[key]; !ok {
			logger.Warn("Template field matches no parameter, ignoring.", "type", name, "field", key)
		}
	}
	return rec, nil
}

func (c *Converter) fromDictValue(ctx context.Context, v any, desc *typedesc.Descriptor) (objinfo.Value, error) {
	switch val := v.(type) {
	case map[string]any:
		if value, isEnum := val["value"]; isEnum {
			return c.flagsFromDict(val, value)
		}
		return c.FromDict(ctx, val)

	case []any:
		var elemDesc *typedesc.Descriptor
		if desc != nil {
			elemDesc = desc.Elem()
		}
		out := make([]objinfo.Value, len(val))
		for i, e := range val {
			ev, err := c.fromDictValue(ctx, e, elemDesc)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil

	case float64:
		// JSON numbers arrive as float64; an int-typed parameter gets its
		// integer form back.
		if wantsInt(desc) && val == float64(int64(val)) {
			return int64(val), nil
		}
		return val, nil

	case int:
		if wantsInt(desc) {
			return int64(val), nil
		}
		return val, nil

	default:
		return v, nil
	}
}

// flagsFromDict decodes the {"type":..., "value": n} form back into a
// FlagSet by decomposing the combined bits against the registered members.
func (c *Converter) flagsFromDict(d map[string]any, value any) (objinfo.Value, error) {
	name, _ := d["type"].(string)
	t, ok := c.reg.ClassByName(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	members, ok := c.reg.FlagMembers(t)
	if !ok {
		return nil, fmt.Errorf("type %q is not a registered flag enum", name)
	}

	var combined uint64
	switch n := value.(type) {
	case float64:
		combined = uint64(n)
	case int64:
		combined = uint64(n)
	case int:
		combined = uint64(n)
	default:
		return nil, fmt.Errorf("flag value for %q must be a number, got %T", name, value)
	}

	var names []string
	for _, m := range members {
		if combined&m.Bit == m.Bit && m.Bit != 0 {
			names = append(names, m.Name)
		}
	}
	return objinfo.FlagSet{Type: t, Names: names}, nil
}

func wantsInt(desc *typedesc.Descriptor) bool {
	if desc == nil {
		return false
	}
	switch desc.Kind {
	case typedesc.KindScalar:
		return desc.Scalar == typedesc.ScalarInt
	case typedesc.KindUnion:
		for _, m := range desc.NonNone() {
			if m.Kind == typedesc.KindScalar && m.Scalar == typedesc.ScalarInt {
				return true
			}
		}
	}
	return false
}

