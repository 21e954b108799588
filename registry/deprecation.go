package registry

import "reflect"

// RegisterDeprecated marks a class deprecated globally. Advisory only: the
// engine keeps resolving and converting deprecated classes, callers decide
// how to surface the mark.
func (r *Registry) RegisterDeprecated(sample any) {
	r.deprecatedClasses[TypeOf(sample)] = struct{}{}
	r.bump()
}

// RegisterDeprecatedParam marks one constructor parameter of a class
// deprecated. Re-registration is additive.
func (r *Registry) RegisterDeprecatedParam(sample any, param string) {
	t := TypeOf(sample)
	set, ok := r.deprecatedParams[t]
	if !ok {
		set = make(map[string]struct{})
		r.deprecatedParams[t] = set
	}
	set[param] = struct{}{}
	r.bump()
}

// RegisterDeprecatedParamTypes marks specific types as deprecated choices for
// a parameter, e.g. one discouraged branch of a union. Additive.
func (r *Registry) RegisterDeprecatedParamTypes(sample any, param string, types ...any) {
	t := TypeOf(sample)
	byParam, ok := r.deprecatedParamTypes[t]
	if !ok {
		byParam = make(map[string]map[reflect.Type]struct{})
		r.deprecatedParamTypes[t] = byParam
	}
	set, ok := byParam[param]
	if !ok {
		set = make(map[reflect.Type]struct{})
		byParam[param] = set
	}
	for _, dt := range types {
		set[TypeOf(dt)] = struct{}{}
	}
	r.bump()
}

// IsDeprecated reports whether a class is deprecated globally.
func (r *Registry) IsDeprecated(sample any) bool {
	_, ok := r.deprecatedClasses[TypeOf(sample)]
	return ok
}

// IsDeprecatedParam reports whether a parameter is deprecated under a class.
func (r *Registry) IsDeprecatedParam(sample any, param string) bool {
	set, ok := r.deprecatedParams[TypeOf(sample)]
	if !ok {
		return false
	}
	_, ok = set[param]
	return ok
}

// IsDeprecatedParamType reports whether choosing the given type for a
// parameter is deprecated, either by a scoped mark or because the type is
// deprecated globally.
func (r *Registry) IsDeprecatedParamType(sample any, param string, choice any) bool {
	ct := TypeOf(choice)
	if r.IsDeprecated(ct) {
		return true
	}
	byParam, ok := r.deprecatedParamTypes[TypeOf(sample)]
	if !ok {
		return false
	}
	set, ok := byParam[param]
	if !ok {
		return false
	}
	_, ok = set[ct]
	return ok
}
