// This file holds the leaf-value validator: literal checks and scalar casts
// applied to raw text while a record materializes.

package convert

import (
	"github.com/zclconf/go-cty/cty"
	ctyconvert "github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/typedesc"
)

// CastRaw validates raw text against a resolved descriptor and casts it into
// the matching Go value.
//
// Union branches are tried in declaration order and the first successful
// literal match or scalar cast wins. Only when no branch is a built-in scalar
// or literal is the raw value returned with deferred set: routing it into a
// structured sub-definition is the caller's job, not a validation failure.
// With castable branches present, text that every one of them rejects is a
// validation error.
func CastRaw(raw string, desc *typedesc.Descriptor) (value objinfo.Value, deferred bool, err error) {
	switch desc.Kind {
	case typedesc.KindLiteral:
		for _, allowed := range desc.Values {
			if raw == allowed {
				return raw, false, nil
			}
		}
		return nil, false, &LiteralValidationError{Raw: raw, Allowed: desc.Values}

	case typedesc.KindScalar:
		v, ok := castScalar(raw, desc.Scalar)
		if !ok {
			return nil, false, &CastError{Raw: raw, Candidates: []string{desc.String()}}
		}
		return v, false, nil

	case typedesc.KindUnion:
		var (
			candidates []string
			allowed    []string
			sawLiteral bool
			sawScalar  bool
			structured bool
		)
		for _, member := range desc.NonNone() {
			switch member.Kind {
			case typedesc.KindLiteral:
				sawLiteral = true
				for _, a := range member.Values {
					if raw == a {
						return raw, false, nil
					}
				}
				allowed = append(allowed, member.Values...)
			case typedesc.KindScalar:
				sawScalar = true
				candidates = append(candidates, member.String())
				if v, ok := castScalar(raw, member.Scalar); ok {
					return v, false, nil
				}
			default:
				// Structured branch: raw text cannot be cast here; the
				// caller routes it as a sub-definition, but only when no
				// castable branch exists at all.
				structured = true
			}
		}
		if structured && !sawScalar && !sawLiteral {
			return raw, true, nil
		}
		if sawLiteral && !sawScalar {
			return nil, false, &LiteralValidationError{Raw: raw, Allowed: allowed}
		}
		return nil, false, &CastError{Raw: raw, Candidates: append(candidates, allowed...)}

	default:
		// Casting raw text into user-defined classes is never attempted;
		// only the structured-definition path reaches them.
		return raw, true, nil
	}
}

// castScalar attempts one cast of raw text into a built-in scalar kind,
// going through cty's conversion rules.
func castScalar(raw string, kind typedesc.ScalarKind) (objinfo.Value, bool) {
	switch kind {
	case typedesc.ScalarString:
		return raw, true
	case typedesc.ScalarInt:
		num, err := ctyconvert.Convert(cty.StringVal(raw), cty.Number)
		if err != nil {
			return nil, false
		}
		bf := num.AsBigFloat()
		if !bf.IsInt() {
			return nil, false
		}
		i, _ := bf.Int64()
		return i, true
	case typedesc.ScalarFloat:
		num, err := ctyconvert.Convert(cty.StringVal(raw), cty.Number)
		if err != nil {
			return nil, false
		}
		f, _ := num.AsBigFloat().Float64()
		return f, true
	case typedesc.ScalarBool:
		b, err := ctyconvert.Convert(cty.StringVal(raw), cty.Bool)
		if err != nil {
			return nil, false
		}
		return b.True(), true
	default:
		return nil, false
	}
}
