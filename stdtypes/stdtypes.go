// Package stdtypes registers definition support for standard-library types
// whose Go representation is not self-describing. It implements
// registry.Module so applications opt in with reg.Use(stdtypes.Module{}).
package stdtypes

import (
	"time"

	"github.com/vk/objwiz/registry"
)

// Module wires the standard-type registrations into a registry.
type Module struct{}

// DurationParams are the constructor parameters a duration is defined from.
// The components are summed.
type DurationParams struct {
	Days         float64 `wiz:"days"`
	Hours        float64 `wiz:"hours"`
	Minutes      float64 `wiz:"minutes"`
	Seconds      float64 `wiz:"seconds"`
	Milliseconds float64 `wiz:"milliseconds"`
}

// TimeParams are the constructor parameters of a calendar timestamp (UTC).
type TimeParams struct {
	Year   int `wiz:"year"`
	Month  int `wiz:"month"`
	Day    int `wiz:"day"`
	Hour   int `wiz:"hour"`
	Minute int `wiz:"minute"`
	Second int `wiz:"second"`
}

// Register enters time.Duration and time.Time with their factories,
// conversion rules and aliases.
func (Module) Register(r *registry.Registry) {
	r.RegisterClass(time.Duration(0),
		registry.Factory(newDuration),
		registry.Default("days", 0.0),
	)
	r.RegisterAlias(time.Duration(0), "Duration")
	r.RegisterConversionRule(time.Duration(0), map[string]any{
		"days":         durationComponent(24 * time.Hour),
		"hours":        durationComponent(time.Hour),
		"minutes":      durationComponent(time.Minute),
		"seconds":      durationComponent(time.Second),
		"milliseconds": durationComponent(time.Millisecond),
	})

	r.RegisterClass(time.Time{},
		registry.Factory(newTime),
		registry.Default("month", int64(1)),
		registry.Default("day", int64(1)),
	)
	r.RegisterConversionRule(time.Time{}, map[string]any{
		"year":   timeGetter(func(t time.Time) int { return t.Year() }),
		"month":  timeGetter(func(t time.Time) int { return int(t.Month()) }),
		"day":    timeGetter(func(t time.Time) int { return t.Day() }),
		"hour":   timeGetter(func(t time.Time) int { return t.Hour() }),
		"minute": timeGetter(func(t time.Time) int { return t.Minute() }),
		"second": timeGetter(func(t time.Time) int { return t.Second() }),
	})
}

func newDuration(p DurationParams) time.Duration {
	return time.Duration(p.Days*float64(24*time.Hour) +
		p.Hours*float64(time.Hour) +
		p.Minutes*float64(time.Minute) +
		p.Seconds*float64(time.Second) +
		p.Milliseconds*float64(time.Millisecond))
}

func newTime(p TimeParams) time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, p.Second, 0, time.UTC)
}

// durationComponent extracts one whole component of a duration, leaving the
// remainder to the smaller components so the parts sum back exactly.
func durationComponent(unit time.Duration) func(obj any) (any, error) {
	return func(obj any) (any, error) {
		d := obj.(time.Duration)
		var larger time.Duration
		switch unit {
		case 24 * time.Hour:
			larger = 0
		case time.Hour:
			larger = 24 * time.Hour
		case time.Minute:
			larger = time.Hour
		case time.Second:
			larger = time.Minute
		default:
			larger = time.Second
		}
		if larger > 0 {
			d %= larger
		}
		if unit == time.Millisecond {
			return float64(d) / float64(time.Millisecond), nil
		}
		return float64(d / unit), nil
	}
}

func timeGetter(get func(time.Time) int) func(obj any) (any, error) {
	return func(obj any) (any, error) {
		return get(obj.(time.Time)), nil
	}
}
