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

import "testing"

func TestImmutablePenSetAndClear(t *testing.T) {
	p := ImmutablePen{}.WithAttr(AttrFg, "red")
	v, ok := p.Attr(AttrFg)
	if !ok || v != 1 {
		t.Fatalf("Attr(AttrFg) = %d,%v, want 1,true", v, ok)
	}
	cleared := p.WithoutAttr(AttrFg)
	if cleared.HasAttr(AttrFg) {
		t.Fatalf("cleared still HasAttr(AttrFg)")
	}
}

func TestCanonicalizeColorHiPrefix(t *testing.T) {
	v, ok := canonicalizeColor("hi-red")
	if !ok || v != 9 {
		t.Fatalf("canonicalizeColor(hi-red) = %d,%v, want 9,true", v, ok)
	}
}

func TestMergeOverWins(t *testing.T) {
	base := ImmutablePen{}.WithAttr(AttrFg, "red").WithAttr(AttrBold, true)
	over := ImmutablePen{}.WithAttr(AttrFg, "blue")
	merged := Merge(base, over)

	fg, _ := merged.Attr(AttrFg)
	if fg != 4 {
		t.Fatalf("merged fg = %d, want 4 (blue)", fg)
	}
	if !merged.HasAttr(AttrBold) {
		t.Fatalf("merged lost base-only attribute AttrBold")
	}
}

func TestMutablePenSetAttrNotifiesOnce(t *testing.T) {
	p := NewMutablePen()
	count := 0
	unsub := p.Subscribe(nil, func(p *MutablePen, id any) { count++ })
	defer unsub()

	p.SetAttr(AttrBold, true)
	if count != 1 {
		t.Fatalf("count after SetAttr = %d, want 1", count)
	}
	p.SetAttr(AttrBold, true) // same value: no notify
	if count != 1 {
		t.Fatalf("count after redundant SetAttr = %d, want 1", count)
	}
}

func TestMutablePenDelAttrOfAbsentDoesNotNotify(t *testing.T) {
	p := NewMutablePen()
	count := 0
	unsub := p.Subscribe(nil, func(p *MutablePen, id any) { count++ })
	defer unsub()

	p.DelAttr(AttrItalic)
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestMutablePenReentrantSubscribeDuringNotify(t *testing.T) {
	p := NewMutablePen()
	var nested int
	var outerUnsub func()
	outerUnsub = p.Subscribe(nil, func(p *MutablePen, id any) {
		p.Subscribe(nil, func(p *MutablePen, id any) { nested++ })
	})
	defer outerUnsub()

	p.SetAttr(AttrBold, true)
	if nested != 0 {
		t.Fatalf("nested subscriber fired during the same notify: %d", nested)
	}
	p.SetAttr(AttrBold, false) // deleting true attribute via canonicalization failure
	if nested != 1 {
		t.Fatalf("nested subscriber did not fire on next change: %d", nested)
	}
}
