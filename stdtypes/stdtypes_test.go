package stdtypes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/objwiz/convert"
	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/registry"
)

func newTestConverter(t *testing.T) *convert.Converter {
	t.Helper()
	reg := registry.New()
	reg.Use(Module{})
	return convert.New(reg)
}

func TestDuration_Construct(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	rec := objinfo.New(time.Duration(0))
	rec.Set("hours", 2.0)
	rec.Set("minutes", 30.0)

	obj, err := conv.ToObject(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour+30*time.Minute, obj)
}

func TestDuration_Decompose(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	d := 26*time.Hour + 30*time.Minute + 15*time.Second + 250*time.Millisecond

	rec, err := conv.ToObjectInfo(context.Background(), d)
	require.NoError(t, err)

	field := func(name string) any {
		v, ok := rec.Field(name)
		require.True(t, ok, "field %s", name)
		return v
	}
	require.Equal(t, 1.0, field("days"))
	require.Equal(t, 2.0, field("hours"))
	require.Equal(t, 30.0, field("minutes"))
	require.Equal(t, 15.0, field("seconds"))
	require.Equal(t, 250.0, field("milliseconds"))
}

func TestDuration_RoundTrip(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	cases := []time.Duration{
		0,
		time.Millisecond,
		90 * time.Minute,
		48*time.Hour + time.Second,
		73*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond,
	}

	for _, d := range cases {
		rec, err := conv.ToObjectInfo(context.Background(), d)
		require.NoError(t, err)
		back, err := conv.ToObject(context.Background(), rec)
		require.NoError(t, err)
		require.Equal(t, d, back, "round trip of %s", d)
	}
}

func TestDuration_AliasInRepr(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	rec := objinfo.New(time.Duration(0))
	rec.Set("hours", 1.0)

	require.Contains(t, conv.Repr(rec), "Duration(")
}

func TestTime_Construct(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	rec := objinfo.New(time.Time{})
	rec.Set("year", int64(2024))
	rec.Set("month", int64(6))
	rec.Set("day", int64(15))
	rec.Set("hour", int64(13))
	rec.Set("minute", int64(45))

	obj, err := conv.ToObject(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC), obj)
}

func TestTime_DefaultsMakeValidDates(t *testing.T) {
	t.Parallel()

	// Month and day default to 1: a year alone is a definable date.
	conv := newTestConverter(t)
	rec := objinfo.New(time.Time{})
	rec.Set("year", int64(2024))

	obj, err := conv.ToObject(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), obj)
}

func TestTime_RoundTrip(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	want := time.Date(2026, time.August, 28, 23, 59, 58, 0, time.UTC)

	rec, err := conv.ToObjectInfo(context.Background(), want)
	require.NoError(t, err)

	year, _ := rec.Field("year")
	require.Equal(t, int64(2026), year)

	back, err := conv.ToObject(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, want, back)
}
