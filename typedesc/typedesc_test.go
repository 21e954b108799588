package typedesc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type wheel struct{}
type tire struct{}

func TestDescriptor_String(t *testing.T) {
	t.Parallel()

	wheelType := reflect.TypeOf(wheel{})

	cases := []struct {
		name string
		desc *Descriptor
		want string
	}{
		{"int", Scalar(ScalarInt), "int"},
		{"float", Scalar(ScalarFloat), "float"},
		{"string", Scalar(ScalarString), "string"},
		{"bool", Scalar(ScalarBool), "bool"},
		{"none", None(), "none"},
		{"literal", Literal("A", "B"), `literal("A", "B")`},
		{"structured", Structured(wheelType, nil), "typedesc.wheel"},
		{"iterable", Iterable(Scalar(ScalarInt)), "list(int)"},
		{"union", Union(Scalar(ScalarString), None()), "union(string, none)"},
		{"optional", Optional(Scalar(ScalarFloat)), "union(float, none)"},
		{"generic", Generic(wheelType, Scalar(ScalarFloat)), "typedesc.wheel(float)"},
		{"typevar", TypeVar("T"), "T"},
		{"undefined", Undefined(), "undefined"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.desc.String())
		})
	}
}

func TestDescriptor_Optionality(t *testing.T) {
	t.Parallel()

	opt := Optional(Scalar(ScalarInt))
	require.True(t, opt.IsOptional())
	require.False(t, Scalar(ScalarInt).IsOptional())
	require.False(t, Union(Scalar(ScalarInt), Scalar(ScalarFloat)).IsOptional())

	nonNone := opt.NonNone()
	require.Len(t, nonNone, 1)
	require.Equal(t, ScalarInt, nonNone[0].Scalar)

	// Non-union descriptors report themselves.
	self := Scalar(ScalarBool)
	require.Equal(t, []*Descriptor{self}, self.NonNone())
}

func TestDescriptor_Elem(t *testing.T) {
	t.Parallel()

	it := Iterable(Scalar(ScalarString))
	require.Equal(t, ScalarString, it.Elem().Scalar)
	require.Nil(t, Scalar(ScalarString).Elem())
}

func TestDescriptor_Equal_IgnoresSubclasses(t *testing.T) {
	t.Parallel()

	wheelType := reflect.TypeOf(wheel{})
	tireType := reflect.TypeOf(tire{})

	a := Structured(wheelType, nil)
	b := Structured(wheelType, []reflect.Type{wheelType, tireType})
	require.True(t, a.Equal(b), "the live subclass set is derived state, not identity")

	require.False(t, a.Equal(Structured(tireType, nil)))
	require.False(t, Union(a).Equal(Union(a, None())))
	require.False(t, Literal("A").Equal(Literal("B")))
}

func TestDescriptor_CtyType(t *testing.T) {
	t.Parallel()

	require.Equal(t, cty.Number, Scalar(ScalarInt).CtyType())
	require.Equal(t, cty.Number, Scalar(ScalarFloat).CtyType())
	require.Equal(t, cty.String, Scalar(ScalarString).CtyType())
	require.Equal(t, cty.Bool, Scalar(ScalarBool).CtyType())
	require.Equal(t, cty.NilType, None().CtyType())
	require.Equal(t, cty.NilType, Literal("A").CtyType())
}
