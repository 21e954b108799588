package registry

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRecord is a minimal Record for display tests.
type fakeRecord struct {
	class reflect.Type
	nick  string
	order []string
	data  map[string]any
}

func (f *fakeRecord) Class() reflect.Type  { return f.class }
func (f *fakeRecord) Nickname() string     { return f.nick }
func (f *fakeRecord) FieldNames() []string { return f.order }
func (f *fakeRecord) Field(name string) (any, bool) {
	v, ok := f.data[name]
	return v, ok
}

func record(class any, nick string, kv ...any) *fakeRecord {
	f := &fakeRecord{class: TypeOf(class), nick: nick, data: make(map[string]any)}
	for i := 0; i < len(kv); i += 2 {
		name := kv[i].(string)
		f.order = append(f.order, name)
		f.data[name] = kv[i+1]
	}
	return f
}

func TestDefaultRepr(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(car{})

	got := reg.Repr(record(car{}, "", "name", "Kia", "doors", int64(5)))
	require.Equal(t, `car(name="Kia", doors=5)`, got)
}

func TestDefaultRepr_NicknameAndAlias(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(car{})
	reg.RegisterAlias(car{}, "Automobile")

	got := reg.Repr(record(car{}, "daily driver", "name", "Kia"))
	require.Equal(t, `(daily driver) Automobile(car)(name="Kia")`, got)
}

func TestDefaultRepr_MasksSecrets(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(car{}, Secret("key"))

	got := reg.Repr(record(car{}, "", "key", "hunter2"))
	require.Equal(t, `car(key="*******")`, got)
	require.NotContains(t, got, "hunter2")
}

func TestDefaultRepr_Truncates(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(car{})

	got := reg.Repr(record(car{}, "", "name", strings.Repeat("x", 400)))
	require.True(t, strings.HasSuffix(got, "...)"), "long reprs end in ...): %s", got)
	require.LessOrEqual(t, len(got), reprCharacterLimit+len("...)"))
}

func TestDefaultRepr_NestedRecordsAndSlices(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(car{})
	reg.RegisterClass(truck{})

	inner := record(truck{}, "", "axles", int64(3))
	got := reg.Repr(record(car{}, "", "trailer", inner, "tags", []any{"red", "fast"}))
	require.Equal(t, `car(trailer=truck(axles=3), tags=["red", "fast"])`, got)
}

func TestRegisterRepr_SubclassLookup(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterClass(InterfaceOf[vehicle]())
	reg.RegisterClass(car{}, Parent(InterfaceOf[vehicle]()))

	reg.RegisterRepr(InterfaceOf[vehicle](), func(r Record) string {
		return "vehicle:" + r.Class().Name()
	}, true)

	require.Equal(t, "vehicle:car", reg.Repr(record(car{}, "")))

	// An own registration wins over the inherited one.
	reg.RegisterRepr(car{}, func(Record) string { return "just a car" }, false)
	require.Equal(t, "just a car", reg.Repr(record(car{}, "")))
}

func TestRegisterRepr_StableAcrossEqualAncestors(t *testing.T) {
	t.Parallel()

	type motorized interface{ TopSpeed() float64 }

	// car satisfies both interfaces at the same distance; the one registered
	// first supplies the repr, on every lookup.
	reg := New()
	reg.RegisterClass(InterfaceOf[vehicle]())
	reg.RegisterClass(InterfaceOf[motorized]())
	reg.RegisterClass(car{})
	reg.RegisterRepr(InterfaceOf[vehicle](), func(Record) string { return "as vehicle" }, true)
	reg.RegisterRepr(InterfaceOf[motorized](), func(Record) string { return "as motorized" }, true)

	for i := 0; i < 50; i++ {
		fn, ok := reg.ReprFor(reflect.TypeOf(car{}))
		require.True(t, ok)
		require.Equal(t, "as vehicle", fn(record(car{}, "")))
	}
}
