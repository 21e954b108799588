package resolve

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/typedesc"
)

type Wheel struct {
	Diameter float64
	Brand    string
}

type Car struct {
	Name   string
	Speed  float64
	Wheels []Wheel
	Spare  *Wheel
	Extra  any
	hidden int    // unexported, never a parameter
	Skip   string `wiz:"-"`
	Owner  string `wiz:"owner_name"`
}

type Engine interface{ Displacement() float64 }

type PetrolEngine struct{ Liters float64 }

func (e PetrolEngine) Displacement() float64 { return e.Liters }

type Garage struct {
	Motor Engine
}

// Pair is a generic origin: its element types come from supplemental
// annotations over declared type variables.
type Pair struct {
	First  any
	Second any
}

func paramNames(params []Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func byName(t *testing.T, params []Param, name string) Param {
	t.Helper()
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no parameter %q in %v", name, paramNames(params))
	return Param{}
}

func TestResolve_StructFields(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Wheel{})
	reg.RegisterClass(Car{})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)
	require.Equal(t, []string{"name", "speed", "wheels", "spare", "extra", "owner_name"}, paramNames(params))

	require.Equal(t, typedesc.KindScalar, byName(t, params, "name").Type.Kind)
	require.Equal(t, typedesc.ScalarString, byName(t, params, "name").Type.Scalar)
	require.Equal(t, typedesc.ScalarFloat, byName(t, params, "speed").Type.Scalar)

	wheels := byName(t, params, "wheels").Type
	require.Equal(t, typedesc.KindIterable, wheels.Kind)
	require.Equal(t, typedesc.KindStructured, wheels.Elem().Kind)
	require.Equal(t, reflect.TypeOf(Wheel{}), wheels.Elem().Class)

	spare := byName(t, params, "spare").Type
	require.True(t, spare.IsOptional(), "pointer fields are optional")
	require.Equal(t, typedesc.KindStructured, spare.NonNone()[0].Kind)
}

func TestResolve_QualifiedClassName(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)

	// The record addresses its class by the fully-qualified type name.
	name := reflect.TypeOf(Car{}).String()
	require.Equal(t, "resolve.Car", name)
	got, ok := reg.ClassByName(name)
	require.True(t, ok)
	require.Equal(t, reflect.TypeOf(Car{}), got)
	require.NotEmpty(t, params)
}

func TestResolve_UnannotatedAnyIsUndefined(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)

	extra := byName(t, params, "extra")
	require.Equal(t, typedesc.KindUndefined, extra.Type.Kind)
	require.False(t, extra.Definable())
}

func TestResolve_SupplementalAnnotations(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Wheel{})
	reg.RegisterClass(Car{})
	reg.RegisterAnnotations(Car{}, map[string]any{
		"extra": "union(string, float)",
	})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)

	extra := byName(t, params, "extra").Type
	require.Equal(t, typedesc.KindUnion, extra.Kind)
	require.Equal(t, typedesc.ScalarString, extra.Args[0].Scalar)
	require.Equal(t, typedesc.ScalarFloat, extra.Args[1].Scalar)
}

func TestResolve_AnnotationNeverOverridesDeclaredType(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	reg.RegisterAnnotations(Car{}, map[string]any{
		"name": "union(int, float)", // silently inert: the field is a string
	})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)
	require.Equal(t, typedesc.ScalarString, byName(t, params, "name").Type.Scalar)
}

func TestResolve_InvalidAnnotationStaysUndefined(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	reg.RegisterAnnotations(Car{}, map[string]any{
		"extra": "list(NoSuchClass)",
	})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err, "a bad annotation is reported in-band, not as an error")
	require.Equal(t, typedesc.KindUndefined, byName(t, params, "extra").Type.Kind)
}

func TestResolve_TypeExpressions(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Wheel{})
	reg.RegisterClass(Car{})
	res := New(reg)
	scope := &exprScope{reg: reg, binding: map[string]*typedesc.Descriptor{}}

	cases := []struct {
		name string
		src  string
		want *typedesc.Descriptor
	}{
		{"scalar keyword", "int", typedesc.Scalar(typedesc.ScalarInt)},
		{"python style aliases", "union(str, null)", typedesc.Union(typedesc.Scalar(typedesc.ScalarString), typedesc.None())},
		{"list of class", "list(Wheel)", typedesc.Iterable(typedesc.Structured(reflect.TypeOf(Wheel{}), nil))},
		{"optional sugar", "optional(float)", typedesc.Optional(typedesc.Scalar(typedesc.ScalarFloat))},
		{"literal values", `literal("A", "B")`, typedesc.Literal("A", "B")},
		{"qualified name", "resolve.Car", typedesc.Structured(reflect.TypeOf(Car{}), nil)},
		{"generic call", "Pair(int, string)", nil}, // registered below
	}

	reg.RegisterClass(Pair{}, registry.TypeParams("K", "V"))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := res.parseTypeExpr(context.Background(), tc.src, scope)
			require.NoError(t, err)
			if tc.want != nil {
				require.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
			} else {
				require.Equal(t, typedesc.KindGeneric, got.Kind)
				require.Equal(t, reflect.TypeOf(Pair{}), got.Class)
				require.Len(t, got.Args, 2)
			}
		})
	}

	_, err := res.parseTypeExpr(context.Background(), "union()", scope)
	require.Error(t, err)
	_, err = res.parseTypeExpr(context.Background(), "list(int, int)", scope)
	require.Error(t, err)
	_, err = res.parseTypeExpr(context.Background(), "NoSuchClass", scope)
	require.Error(t, err)
}

func TestResolve_GenericBinding(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Pair{}, registry.TypeParams("K", "V"))
	reg.RegisterAnnotations(Pair{}, map[string]any{
		"first":  "K",
		"second": "V",
	})
	res := New(reg)

	// Bound: Pair(float, string).
	params, err := res.Resolve(context.Background(), Pair{},
		typedesc.Scalar(typedesc.ScalarFloat),
		typedesc.Scalar(typedesc.ScalarString))
	require.NoError(t, err)
	require.Equal(t, typedesc.ScalarFloat, byName(t, params, "first").Type.Scalar)
	require.Equal(t, typedesc.ScalarString, byName(t, params, "second").Type.Scalar)

	// Unparameterized origin: the variables stay open, not errors.
	open, err := res.Resolve(context.Background(), Pair{})
	require.NoError(t, err)
	require.Equal(t, typedesc.KindTypeVar, byName(t, open, "first").Type.Kind)
	require.Equal(t, "K", byName(t, open, "first").Type.Var)

	// Partially bound: missing trailing arguments stay open too.
	partial, err := res.Resolve(context.Background(), Pair{}, typedesc.Scalar(typedesc.ScalarInt))
	require.NoError(t, err)
	require.Equal(t, typedesc.ScalarInt, byName(t, partial, "first").Type.Scalar)
	require.Equal(t, typedesc.KindTypeVar, byName(t, partial, "second").Type.Kind)
}

func TestResolve_AbstractFieldDefinableSet(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(registry.InterfaceOf[Engine]())
	reg.RegisterClass(Garage{})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Garage{})
	require.NoError(t, err)
	motor := byName(t, params, "motor").Type
	require.Equal(t, typedesc.KindStructured, motor.Kind)
	require.Empty(t, motor.Subclasses, "no concrete subclass registered yet")

	// Registration invalidates the cache through the generation counter.
	reg.RegisterClass(PetrolEngine{})
	params, err = res.Resolve(context.Background(), Garage{})
	require.NoError(t, err)
	motor = byName(t, params, "motor").Type
	require.Equal(t, []reflect.Type{reflect.TypeOf(PetrolEngine{})}, motor.Subclasses)
}

func TestResolve_FactoryParams(t *testing.T) {
	t.Parallel()

	type brakeParams struct {
		Radius   float64
		Vented   bool `wiz:"vented"`
		Internal int  `wiz:"-"`
	}
	type brake struct{ radius float64 }

	reg := registry.New()
	reg.RegisterClass(brake{},
		registry.Factory(func(p brakeParams) brake { return brake{radius: p.Radius} }),
		registry.Default("vented", false),
	)
	res := New(reg)

	params, err := res.Resolve(context.Background(), brake{})
	require.NoError(t, err)
	require.Equal(t, []string{"radius", "vented"}, paramNames(params))
	require.False(t, byName(t, params, "radius").HasDefault)
	require.True(t, byName(t, params, "vented").HasDefault)
}

func TestResolve_DeprecatedParam(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	reg.RegisterDeprecatedParam(Car{}, "speed")
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)
	require.True(t, byName(t, params, "speed").Deprecated)
	require.False(t, byName(t, params, "name").Deprecated)
}

func TestResolve_DeprecationMarkInvalidatesCache(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.RegisterClass(Car{})
	res := New(reg)

	params, err := res.Resolve(context.Background(), Car{})
	require.NoError(t, err)
	require.False(t, byName(t, params, "speed").Deprecated)

	// Marks registered after a first resolution bump the generation counter,
	// so the cached entry is not served stale.
	reg.RegisterDeprecatedParam(Car{}, "speed")
	params, err = res.Resolve(context.Background(), Car{})
	require.NoError(t, err)
	require.True(t, byName(t, params, "speed").Deprecated)
}

func TestResolve_NonStructFails(t *testing.T) {
	t.Parallel()

	res := New(registry.New())
	_, err := res.Resolve(context.Background(), 42)
	require.Error(t, err)
}

func TestParamName(t *testing.T) {
	t.Parallel()

	field := func(name, tag string) reflect.StructField {
		return reflect.StructField{Name: name, Tag: reflect.StructTag(tag)}
	}

	require.Equal(t, "diameter", ParamName(field("Diameter", "")))
	require.Equal(t, "owner_name", ParamName(field("Owner", `wiz:"owner_name"`)))
	require.Equal(t, "", ParamName(field("Skip", `wiz:"-"`)))
	require.Equal(t, "uRL", ParamName(field("URL", "")), "only the first rune is lowered")
}
