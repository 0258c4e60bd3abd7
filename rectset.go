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

import "sort"

// RectSet is an ordered collection of pairwise non-overlapping Rects,
// sorted by (Top, Left), that eagerly merges adjacent rects which together
// form a larger rect. Used for damage tracking (Window) and for the masked
// region list in a RenderBuffer state frame.
//
// The zero value is an empty, usable RectSet.
type RectSet struct {
	rects []Rect
}

// Rects returns the set's rects in sorted order. The returned slice must
// not be mutated.
func (s *RectSet) Rects() []Rect { return s.rects }

// Clear empties the set.
func (s *RectSet) Clear() { s.rects = s.rects[:0] }

// Len returns the number of stored rects (not the covered area).
func (s *RectSet) Len() int { return len(s.rects) }

// Clone returns a deep copy, so mutating it never affects s (used by
// RenderBuffer's save to snapshot a state frame's mask list).
func (s *RectSet) Clone() RectSet {
	out := RectSet{rects: make([]Rect, len(s.rects))}
	copy(out.rects, s.rects)
	return out
}

// Add inserts r into the set, merging/splitting as needed to preserve the
// non-overlapping, sorted invariant.
func (s *RectSet) Add(r Rect) {
	if r.Empty() {
		return
	}
	pending := []Rect{r}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		s.addOne(cur, &pending)
	}
	s.assertSorted()
}

// addOne inserts a single rect, possibly pushing follow-up rects (from a
// multi-piece union) onto pending for the caller to re-add.
func (s *RectSet) addOne(r Rect, pending *[]Rect) {
	for i, existing := range s.rects {
		if existing.Contains(r) {
			return // fully covered already
		}
		if !existing.Intersects(r) && !adjacentMergeable(existing, r) {
			continue
		}
		// Remove existing, compute the union pieces, and re-add them
		// (they may themselves interact with other stored rects).
		s.rects = append(s.rects[:i], s.rects[i+1:]...)
		union := existing.Add(r)
		*pending = append(*pending, union...)
		return
	}
	// No interaction with any stored rect: insert at the sorted position.
	idx := sort.Search(len(s.rects), func(i int) bool {
		return rectLess(r, s.rects[i])
	})
	s.rects = append(s.rects, Rect{})
	copy(s.rects[idx+1:], s.rects[idx:])
	s.rects[idx] = r
}

// adjacentMergeable reports whether a and b, while not overlapping, share a
// full edge and thus form a single larger rect when merged (the "two
// opposite edges and touches" case from spec.md's RectSet.Add algorithm).
func adjacentMergeable(a, b Rect) bool {
	if a.Top == b.Top && a.Lines == b.Lines && (a.Right() == b.Left || b.Right() == a.Left) {
		return true
	}
	if a.Left == b.Left && a.Cols == b.Cols && (a.Bottom() == b.Top || b.Bottom() == a.Top) {
		return true
	}
	return false
}

func rectLess(a, b Rect) bool {
	if a.Top != b.Top {
		return a.Top < b.Top
	}
	return a.Left < b.Left
}

// Subtract removes the region covered by r from the set.
func (s *RectSet) Subtract(r Rect) {
	if r.Empty() || len(s.rects) == 0 {
		return
	}
	var out []Rect
	for _, existing := range s.rects {
		if !existing.Intersects(r) {
			out = append(out, existing)
			continue
		}
		out = append(out, existing.Subtract(r)...)
	}
	sort.Slice(out, func(i, j int) bool { return rectLess(out[i], out[j]) })
	s.rects = out
	s.assertSorted()
}

// Contains reports whether q is fully covered by the union of the set's
// rects: each stored rect is subtracted from what is still uncovered of q,
// and q is covered when nothing remains.
func (s *RectSet) Contains(q Rect) bool {
	remaining := []Rect{q}
	for _, r := range s.rects {
		var next []Rect
		for _, p := range remaining {
			next = append(next, p.Subtract(r)...)
		}
		remaining = next
	}
	return len(remaining) == 0
}

// containsRemainder recursively verifies q is covered, shrinking q to its
// uncovered lower portion as each overlapping stored rect (in sorted order)
// accounts for a prefix of q's rows, per spec.md's algorithm.
func (s *RectSet) containsRemainder(q Rect) bool {
	if q.Empty() {
		return true
	}
	for _, r := range s.rects {
		if r.Top > q.Top || r.Left > q.Left {
			// Sorted order guarantees no earlier rect can start covering
			// q's top-left corner at this point either.
			if r.Intersects(q) {
				return false
			}
			continue
		}
		if !r.Intersects(q) {
			continue
		}
		if r.Left > q.Left || r.Right() < q.Right() {
			return false
		}
		if r.Bottom() >= q.Bottom() {
			return true
		}
		// r covers the top r.Bottom()-q.Top rows of q fully (same column
		// span); recurse on the remainder below it.
		rest, ok := q.LineRange(r.Bottom(), q.Bottom())
		if !ok {
			return true
		}
		return s.containsRemainder(rest)
	}
	return false
}

// Intersects reports whether any stored rect overlaps q.
func (s *RectSet) Intersects(q Rect) bool {
	for _, r := range s.rects {
		if r.Intersects(q) {
			return true
		}
	}
	return false
}

// Translate shifts every rect in the set by (dy, dx) in place, keeping the
// set sorted. Used when a scroll moves a window's damage along with its
// content (§4.6 Damage invariants).
func (s *RectSet) Translate(dy, dx int) {
	for i := range s.rects {
		s.rects[i] = s.rects[i].Translate(dy, dx)
	}
	sort.Slice(s.rects, func(i, j int) bool { return rectLess(s.rects[i], s.rects[j]) })
}

// assertSorted verifies the non-overlapping, sorted invariant in debug
// builds (Debug == true); a no-op otherwise. Mirrors spec.md §4.2's
// "an assertion after any mutation verifies this in debug mode".
func (s *RectSet) assertSorted() {
	if !Debug {
		return
	}
	for i := 1; i < len(s.rects); i++ {
		if !rectLess(s.rects[i-1], s.rects[i]) {
			panic("tickit: RectSet lost sort order")
		}
	}
	for i := range s.rects {
		for j := i + 1; j < len(s.rects); j++ {
			if s.rects[i].Intersects(s.rects[j]) {
				panic("tickit: RectSet rects overlap")
			}
		}
	}
}
