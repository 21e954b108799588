package convert

import (
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/resolve"
)

// Converter is the conversion engine, bound to one registry and its
// resolver.
type Converter struct {
	reg *registry.Registry
	res *resolve.Resolver
}

// New creates a Converter over reg.
func New(reg *registry.Registry) *Converter {
	return &Converter{reg: reg, res: resolve.New(reg)}
}

// NewWithResolver creates a Converter sharing an existing resolver (and its
// signature cache).
func NewWithResolver(res *resolve.Resolver) *Converter {
	return &Converter{reg: res.Registry(), res: res}
}

// Registry returns the registry the converter consults.
func (c *Converter) Registry() *registry.Registry { return c.reg }

// Resolver returns the resolver the converter uses.
func (c *Converter) Resolver() *resolve.Resolver { return c.res }

// Repr returns the display string for a record, honoring registered repr
// functions and aliases.
func (c *Converter) Repr(rec registry.Record) string { return c.reg.Repr(rec) }
