// This file parses textual type annotations (e.g. `string`,
// `union(float, none)`, `list(Wheel)`, `literal("A", "B")`) into descriptors.

package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/typedesc"
)

// exprScope carries what identifier resolution needs: the registry's name
// tables and the type-variable binding of the class being resolved.
type exprScope struct {
	reg     *registry.Registry
	binding map[string]*typedesc.Descriptor
}

// parseTypeExpr parses one annotation string into a descriptor.
func (r *Resolver) parseTypeExpr(ctx context.Context, src string, scope *exprScope) (*typedesc.Descriptor, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "annotation", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid type expression %q: %w", src, diags)
	}
	return r.typeExprToDescriptor(ctx, expr, scope)
}

// typeExprToDescriptor converts a parsed type expression into its descriptor
// equivalent. A type switch over the concrete hclsyntax expression types is
// the supported way to take them apart.
func (r *Resolver) typeExprToDescriptor(ctx context.Context, expr hcl.Expression, scope *exprScope) (*typedesc.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a constructor call.", "call", v.Name)

		switch v.Name {
		case "list", "set", "tuple":
			if len(v.Args) != 1 {
				return nil, fmt.Errorf("%s() requires exactly one argument, got %d", v.Name, len(v.Args))
			}
			elem, err := r.typeExprToDescriptor(ctx, v.Args[0], scope)
			if err != nil {
				return nil, err
			}
			return typedesc.Iterable(elem), nil

		case "optional":
			if len(v.Args) != 1 {
				return nil, fmt.Errorf("optional() requires exactly one argument, got %d", len(v.Args))
			}
			inner, err := r.typeExprToDescriptor(ctx, v.Args[0], scope)
			if err != nil {
				return nil, err
			}
			return typedesc.Optional(inner), nil

		case "union":
			if len(v.Args) < 1 {
				return nil, fmt.Errorf("union() requires at least one member")
			}
			members := make([]*typedesc.Descriptor, 0, len(v.Args))
			for i, arg := range v.Args {
				m, err := r.typeExprToDescriptor(ctx, arg, scope)
				if err != nil {
					return nil, fmt.Errorf("in union member %d: %w", i, err)
				}
				members = append(members, m)
			}
			return typedesc.Union(members...), nil

		case "literal":
			values := make([]string, 0, len(v.Args))
			for i, arg := range v.Args {
				s, ok := literalString(arg)
				if !ok {
					return nil, fmt.Errorf("literal() argument %d must be a quoted string", i)
				}
				values = append(values, s)
			}
			if len(values) == 0 {
				return nil, fmt.Errorf("literal() requires at least one value")
			}
			return typedesc.Literal(values...), nil

		default:
			// ClassName(args...) binds type arguments to a generic origin.
			origin, ok := scope.reg.LookupName(v.Name)
			if !ok {
				return nil, fmt.Errorf("unknown type constructor or class %q", v.Name)
			}
			args := make([]*typedesc.Descriptor, 0, len(v.Args))
			for i, arg := range v.Args {
				a, err := r.typeExprToDescriptor(ctx, arg, scope)
				if err != nil {
					return nil, fmt.Errorf("in type argument %d of %s: %w", i, v.Name, err)
				}
				args = append(args, a)
			}
			return typedesc.Generic(origin, args...), nil
		}

	case *hclsyntax.ScopeTraversalExpr:
		name := traversalName(v)
		if name == "" {
			return nil, fmt.Errorf("invalid type keyword: not a simple identifier")
		}
		return r.resolveIdent(name, scope)

	case *hclsyntax.TemplateExpr:
		// A quoted name like "pkg.Type" parses as a template.
		if s, ok := literalString(v); ok {
			return r.resolveIdent(s, scope)
		}
		return nil, fmt.Errorf("unsupported template expression in type annotation")

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// resolveIdent resolves a bare identifier: a scalar keyword, a bound or open
// type variable of the origin class, or a registered class name.
func (r *Resolver) resolveIdent(name string, scope *exprScope) (*typedesc.Descriptor, error) {
	switch name {
	case "int":
		return typedesc.Scalar(typedesc.ScalarInt), nil
	case "float", "number":
		return typedesc.Scalar(typedesc.ScalarFloat), nil
	case "string", "str":
		return typedesc.Scalar(typedesc.ScalarString), nil
	case "bool":
		return typedesc.Scalar(typedesc.ScalarBool), nil
	case "none", "null":
		return typedesc.None(), nil
	case "any":
		return typedesc.Undefined(), nil
	}

	if bound, ok := scope.binding[name]; ok {
		if bound != nil {
			return bound, nil
		}
		return typedesc.TypeVar(name), nil
	}

	if t, ok := scope.reg.LookupName(name); ok {
		if members, isEnum := scope.reg.FlagMembers(t); isEnum {
			return typedesc.FlagEnum(t, members), nil
		}
		return typedesc.Structured(t, r.definable(t)), nil
	}
	return nil, fmt.Errorf("unknown type name %q", name)
}

// traversalName flattens a traversal like `Wheel` or `mymod.Car` into its
// dotted name.
func traversalName(expr *hclsyntax.ScopeTraversalExpr) string {
	parts := make([]string, 0, len(expr.Traversal))
	for _, step := range expr.Traversal {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			parts = append(parts, s.Name)
		case hcl.TraverseAttr:
			parts = append(parts, s.Name)
		default:
			return ""
		}
	}
	return strings.Join(parts, ".")
}

// literalString unwraps an expression that is a plain quoted string.
func literalString(expr hcl.Expression) (string, bool) {
	switch e := expr.(type) {
	case *hclsyntax.TemplateExpr:
		if len(e.Parts) != 1 {
			return "", false
		}
		return literalString(e.Parts[0])
	case *hclsyntax.LiteralValueExpr:
		if e.Val.Type().Equals(cty.String) {
			return e.Val.AsString(), true
		}
	}
	return "", false
}
