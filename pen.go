// Copyright 2022 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tickit

import "strings"

// AttrKind identifies one rendering attribute a Pen may carry.
type AttrKind int

const (
	AttrFg AttrKind = iota
	AttrBg
	AttrBold
	AttrUnderline
	AttrItalic
	AttrReverse
	AttrStrike
	AttrAltFont
)

var allAttrKinds = [...]AttrKind{
	AttrFg, AttrBg, AttrBold, AttrUnderline, AttrItalic, AttrReverse, AttrStrike, AttrAltFont,
}

var namedColors = map[string]int{
	"black": 0, "red": 1, "green": 2, "yellow": 3,
	"blue": 4, "magenta": 5, "cyan": 6, "white": 7,
}

// canonicalizeColor accepts an int 0-255, one of the 8 named lowercase
// colors, or "hi-NAME" (⇒ value+8).
func canonicalizeColor(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		if val < 0 || val > 255 {
			return 0, false
		}
		return val, true
	case string:
		name := strings.ToLower(val)
		hi := false
		if rest, ok := strings.CutPrefix(name, "hi-"); ok {
			hi = true
			name = rest
		}
		idx, ok := namedColors[name]
		if !ok {
			return 0, false
		}
		if hi {
			idx += 8
		}
		return idx, true
	default:
		return 0, false
	}
}

// canonicalizeValue canonicalizes v for attribute kind k. Booleans store
// exactly true or are absent; false is never stored (ok == false so the
// caller deletes the attribute instead).
func canonicalizeValue(k AttrKind, v any) (int, bool) {
	switch k {
	case AttrFg, AttrBg:
		return canonicalizeColor(v)
	case AttrBold, AttrUnderline, AttrItalic, AttrReverse, AttrStrike:
		b, ok := v.(bool)
		if !ok || !b {
			return 0, false
		}
		return 1, true
	case AttrAltFont:
		n, ok := v.(int)
		if !ok || n < 0 || n > 9 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Pen is the read-only attribute interface shared by ImmutablePen and
// MutablePen. Absent attributes mean "inherit from whatever pen this one
// is merged beneath".
type Pen interface {
	Attr(k AttrKind) (int, bool)
	HasAttr(k AttrKind) bool
}

// penEqual compares two pens attribute by attribute: equal if, for every
// kind, both are absent or both are present with the same value.
func penEqual(a, b Pen) bool {
	for _, k := range allAttrKinds {
		av, aok := a.Attr(k)
		bv, bok := b.Attr(k)
		if aok != bok {
			return false
		}
		if aok && av != bv {
			return false
		}
	}
	return true
}

// ImmutablePen is a value-semantics pen: copying an ImmutablePen never
// aliases mutable state, so it is safe to share freely across cells and
// windows. Every mutating method returns a new ImmutablePen.
type ImmutablePen struct {
	attrs map[AttrKind]int
}

// NewImmutablePen builds a pen from a set of (kind, value) pairs. Any pair
// that fails canonicalization is silently omitted (absent), matching
// MutablePen.SetAttr's behavior for invalid values.
func NewImmutablePen(values map[AttrKind]any) ImmutablePen {
	p := ImmutablePen{attrs: make(map[AttrKind]int, len(values))}
	for k, v := range values {
		if cv, ok := canonicalizeValue(k, v); ok {
			p.attrs[k] = cv
		}
	}
	return p
}

func (p ImmutablePen) clone() map[AttrKind]int {
	m := make(map[AttrKind]int, len(p.attrs)+1)
	for k, v := range p.attrs {
		m[k] = v
	}
	return m
}

// Attr returns the canonicalized value stored for k, if any.
func (p ImmutablePen) Attr(k AttrKind) (int, bool) {
	v, ok := p.attrs[k]
	return v, ok
}

// HasAttr reports whether k is set.
func (p ImmutablePen) HasAttr(k AttrKind) bool {
	_, ok := p.attrs[k]
	return ok
}

// WithAttr returns a copy of p with k set to the canonicalized form of v.
// If v fails canonicalization, the returned pen has k removed (absent)
// rather than storing a bogus value.
func (p ImmutablePen) WithAttr(k AttrKind, v any) ImmutablePen {
	cv, ok := canonicalizeValue(k, v)
	m := p.clone()
	if !ok {
		delete(m, k)
		return ImmutablePen{attrs: m}
	}
	m[k] = cv
	return ImmutablePen{attrs: m}
}

// WithoutAttr returns a copy of p with k absent.
func (p ImmutablePen) WithoutAttr(k AttrKind) ImmutablePen {
	if !p.HasAttr(k) {
		return p
	}
	m := p.clone()
	delete(m, k)
	return ImmutablePen{attrs: m}
}

// Equal reports attribute-by-attribute equality with another Pen.
func (p ImmutablePen) Equal(other Pen) bool { return penEqual(p, other) }

// Merge returns a new pen where over's attributes win wherever over defines
// them, and base's show through elsewhere.
func Merge(base, over Pen) ImmutablePen {
	p := ImmutablePen{attrs: make(map[AttrKind]int, len(allAttrKinds))}
	for _, k := range allAttrKinds {
		if v, ok := over.Attr(k); ok {
			p.attrs[k] = v
			continue
		}
		if v, ok := base.Attr(k); ok {
			p.attrs[k] = v
		}
	}
	return p
}

// DefaultFrom returns a copy of p with any attribute p itself leaves unset
// filled in from other (other never overrides an attribute p already has).
func (p ImmutablePen) DefaultFrom(other Pen) ImmutablePen {
	m := p.clone()
	for _, k := range allAttrKinds {
		if _, ok := m[k]; ok {
			continue
		}
		if v, ok := other.Attr(k); ok {
			m[k] = v
		}
	}
	return ImmutablePen{attrs: m}
}

// ---------- MutablePen -------------------------------------------------------

// PenObserver is notified synchronously whenever a MutablePen's attributes
// change. id is the opaque identifier the observer supplied at Subscribe
// time, handed back unchanged so one observer can distinguish multiple
// subscriptions.
type PenObserver func(p *MutablePen, id any)

type penSubscription struct {
	tok any
	id  any
	fn  PenObserver
}

// MutablePen is a pen that notifies subscribers whenever any attribute
// changes. Subscriptions are held by explicit token, not by the pen's
// garbage-collection lifetime: a subscriber must call its Unsubscribe
// function before it is discarded. This is the Go-idiomatic rendering of
// the "weakly-held observer" requirement — a real weak reference would
// only defer the same obligation (Unsubscribe) to a finalizer, which is
// unspecified-timing and discouraged in Go; an explicit token, as used by
// pitui's AddInputListener, makes the same lifetime contract observable
// and immediate instead.
type MutablePen struct {
	attrs map[AttrKind]int
	subs  []penSubscription

	notifying  bool
	pendingAdd []penSubscription
	pendingDel []any
}

// NewMutablePen returns an empty mutable pen.
func NewMutablePen() *MutablePen {
	return &MutablePen{attrs: make(map[AttrKind]int)}
}

// Attr returns the canonicalized value stored for k, if any.
func (p *MutablePen) Attr(k AttrKind) (int, bool) {
	v, ok := p.attrs[k]
	return v, ok
}

// HasAttr reports whether k is set.
func (p *MutablePen) HasAttr(k AttrKind) bool {
	_, ok := p.attrs[k]
	return ok
}

// Equal reports attribute-by-attribute equality with another Pen.
func (p *MutablePen) Equal(other Pen) bool { return penEqual(p, other) }

// SetAttr (spec: chattr) canonicalizes v and stores it under k, notifying
// subscribers if the stored value changed. A v that fails canonicalization
// behaves like DelAttr(k).
func (p *MutablePen) SetAttr(k AttrKind, v any) {
	cv, ok := canonicalizeValue(k, v)
	if !ok {
		p.DelAttr(k)
		return
	}
	if old, had := p.attrs[k]; had && old == cv {
		return
	}
	p.attrs[k] = cv
	p.notify()
}

// DelAttr (spec: delattr) removes k if present, notifying subscribers. A
// delattr of an already-absent attribute does not notify.
func (p *MutablePen) DelAttr(k AttrKind) {
	if _, had := p.attrs[k]; !had {
		return
	}
	delete(p.attrs, k)
	p.notify()
}

// CopyFrom replaces all of p's attributes with other's, notifying
// subscribers once if anything changed.
func (p *MutablePen) CopyFrom(other Pen) {
	changed := false
	next := make(map[AttrKind]int, len(allAttrKinds))
	for _, k := range allAttrKinds {
		if v, ok := other.Attr(k); ok {
			next[k] = v
			if old, had := p.attrs[k]; !had || old != v {
				changed = true
			}
		} else if _, had := p.attrs[k]; had {
			changed = true
		}
	}
	p.attrs = next
	if changed {
		p.notify()
	}
}

// DefaultFrom fills in any attribute p itself leaves unset from other,
// mutating p in place and notifying once if anything changed.
func (p *MutablePen) DefaultFrom(other Pen) {
	changed := false
	for _, k := range allAttrKinds {
		if _, ok := p.attrs[k]; ok {
			continue
		}
		if v, ok := other.Attr(k); ok {
			p.attrs[k] = v
			changed = true
		}
	}
	if changed {
		p.notify()
	}
}

// Snapshot returns an immutable copy of p's current attributes.
func (p *MutablePen) Snapshot() ImmutablePen {
	m := make(map[AttrKind]int, len(p.attrs))
	for k, v := range p.attrs {
		m[k] = v
	}
	return ImmutablePen{attrs: m}
}

// Subscribe registers fn to be called, with id, whenever any attribute of
// p changes. The returned function removes the subscription; it is the
// caller's responsibility to call it once the subscriber no longer cares
// (typically when a window or cell detaches from this pen).
func (p *MutablePen) Subscribe(id any, fn PenObserver) (unsubscribe func()) {
	type token struct{}
	tok := &token{}
	entry := penSubscription{tok: tok, id: id, fn: fn}
	if p.notifying {
		p.pendingAdd = append(p.pendingAdd, entry)
	} else {
		p.subs = append(p.subs, entry)
	}
	return func() { p.unsubscribe(tok) }
}

func (p *MutablePen) unsubscribe(tok any) {
	if p.notifying {
		p.pendingDel = append(p.pendingDel, tok)
		return
	}
	for i, s := range p.subs {
		if s.tok == tok {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// notify invokes every live subscriber exactly once. Subscribe/Unsubscribe
// calls made from within a callback are recorded and applied only after
// the full iteration completes, so the observer list never mutates while
// being walked.
func (p *MutablePen) notify() {
	p.notifying = true
	for _, s := range p.subs {
		s.fn(p, s.id)
	}
	p.notifying = false

	for _, tok := range p.pendingDel {
		p.unsubscribe(tok)
	}
	p.pendingDel = nil
	if len(p.pendingAdd) > 0 {
		p.subs = append(p.subs, p.pendingAdd...)
		p.pendingAdd = nil
	}
}
