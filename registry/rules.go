package registry

import (
	"fmt"
	"log/slog"
)

// ConversionRule tells ToObjectInfo where one constructor parameter's value
// lives on an already-constructed object: either a field name or a getter.
// Exactly one of the two is set.
type ConversionRule struct {
	Attr   string
	Getter func(obj any) (any, error)
}

// RegisterConversionRule replaces the object-to-record conversion rules for a
// class. Values are field-name strings or func(obj any) (any, error) getters.
// Each call overwrites the whole mapping for the class, it does not merge.
func (r *Registry) RegisterConversionRule(sample any, mapping map[string]any) {
	t := TypeOf(sample)
	rules := make(map[string]ConversionRule, len(mapping))
	for param, v := range mapping {
		switch rule := v.(type) {
		case string:
			rules[param] = ConversionRule{Attr: rule}
		case func(obj any) (any, error):
			rules[param] = ConversionRule{Getter: rule}
		default:
			panic(fmt.Sprintf("registry: conversion rule for %s.%s must be a field name or func(any) (any, error), got %T", t, param, v))
		}
	}
	r.rules[t] = rules
	slog.Debug("Registered conversion rules.", "type", t.String(), "count", len(rules))
}

// ConversionRules returns the rule mapping registered for a class.
func (r *Registry) ConversionRules(sample any) (map[string]ConversionRule, bool) {
	rules, ok := r.rules[TypeOf(sample)]
	return rules, ok
}
