package registry

import "log/slog"

// RegisterAlias records a display name for a type. Many types may share one
// alias; the last registration for a given type wins. Lookup is exact-type,
// never subclass-aware.
func (r *Registry) RegisterAlias(sample any, alias string) {
	t := TypeOf(sample)
	r.aliases[t] = alias
	slog.Debug("Registered alias.", "type", t.String(), "alias", alias)
}

// AliasedName returns the alias registered for a type, if any.
func (r *Registry) AliasedName(sample any) (string, bool) {
	name, ok := r.aliases[TypeOf(sample)]
	return name, ok
}
