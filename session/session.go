package session

import (
	"context"
	"fmt"

	"github.com/vk/objwiz/convert"
	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/resolve"
	"github.com/vk/objwiz/typedesc"
)

// ReturnTarget receives the finished record when a session saves. It is the
// consuming widget or collection on the GUI side; after handoff the record
// is immutable input data.
type ReturnTarget func(*objinfo.ObjectInfo)

// Session is one modal definition session over a single record.
type Session struct {
	conv     *convert.Converter
	rec      *objinfo.ObjectInfo
	params   []resolve.Param
	byName   map[string]resolve.Param
	ret      ReturnTarget
	modified bool
	closed   bool
}

// Option configures a new session.
type Option func(*Session)

// WithExisting starts the session in edit mode: the working record is a deep
// copy of rec, so cancelling leaves the original untouched.
func WithExisting(rec *objinfo.ObjectInfo) Option {
	return func(s *Session) { s.rec = rec.Clone() }
}

// WithReturnTarget sets where Save hands the finished record.
func WithReturnTarget(ret ReturnTarget) Option {
	return func(s *Session) { s.ret = ret }
}

// New starts a definition session for a class, resolving its parameters up
// front. The sample may be a reflect.Type, a value of the class, or a
// pointer to it.
func New(ctx context.Context, conv *convert.Converter, sample any, opts ...Option) (*Session, error) {
	s := &Session{conv: conv}
	for _, opt := range opts {
		opt(s)
	}
	if s.rec == nil {
		s.rec = objinfo.New(sample)
	}

	params, err := conv.Resolver().Resolve(ctx, s.rec.Class())
	if err != nil {
		return nil, err
	}
	s.params = params
	s.byName = make(map[string]resolve.Param, len(params))
	for _, p := range params {
		s.byName[p.Name] = p
	}
	return s, nil
}

// FromDict starts a session pre-populated from a template dictionary.
func FromDict(ctx context.Context, conv *convert.Converter, d map[string]any, opts ...Option) (*Session, error) {
	rec, err := conv.FromDict(ctx, d)
	if err != nil {
		return nil, err
	}
	return New(ctx, conv, rec.Class(), append([]Option{WithExisting(rec)}, opts...)...)
}

// Params returns the resolved parameters of the session's class, in
// declaration order.
func (s *Session) Params() []resolve.Param { return s.params }

// Record returns the working record. It belongs to the session until Save.
func (s *Session) Record() *objinfo.ObjectInfo { return s.rec }

// Modified reports whether any field changed since the session started.
func (s *Session) Modified() bool { return s.modified }

// SetField stores an already-shaped value (a nested record, a sequence, a
// flag set, or a primitive) into one field.
func (s *Session) SetField(name string, v objinfo.Value) error {
	if err := s.editable(name); err != nil {
		return err
	}
	s.rec.Set(name, v)
	s.modified = true
	return nil
}

// SetFieldText validates raw text against the field's resolved type and
// stores the cast value. Validation failures are per-field: they leave the
// record untouched and other fields unaffected. A deferred result stores
// the raw text for later routing into a structured sub-definition.
func (s *Session) SetFieldText(name, raw string) error {
	if err := s.editable(name); err != nil {
		return err
	}
	v, _, err := convert.CastRaw(raw, s.byName[name].Type)
	if err != nil {
		return err
	}
	s.rec.Set(name, v)
	s.modified = true
	return nil
}

// Unset clears one field; it stays absent through save and round-trips.
func (s *Session) Unset(name string) error {
	if err := s.editable(name); err != nil {
		return err
	}
	s.rec.Unset(name)
	s.modified = true
	return nil
}

// SetNickname names the record for easier recognition in lists.
func (s *Session) SetNickname(nick string) {
	s.rec.SetNickname(nick)
	s.modified = true
}

func (s *Session) editable(name string) error {
	if s.closed {
		return fmt.Errorf("session is closed")
	}
	p, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("class %s has no parameter %q", s.rec.Class(), name)
	}
	if p.Type.Kind == typedesc.KindUndefined {
		return fmt.Errorf("parameter %q has no resolvable annotation and is not editable", name)
	}
	return nil
}

// Save freezes the record, hands it to the return target, closes the
// session, and returns the record.
func (s *Session) Save() (*objinfo.ObjectInfo, error) {
	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}
	s.closed = true
	if s.ret != nil {
		s.ret(s.rec)
	}
	return s.rec, nil
}

// Cancel discards the in-progress record. Nothing was committed, so there is
// nothing to roll back.
func (s *Session) Cancel() {
	s.closed = true
}
