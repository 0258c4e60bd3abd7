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

// Window is a clipped, damage-tracked region of the terminal, arranged in a
// tree rooted at a Root. Drawing, input routing, and exposure all operate in
// a window's own coordinate space; only Root ever talks to a Driver.
//
// children holds ordered, non-overlapping-by-convention siblings with every
// float preceding every non-float, per makeFloat/makePopup always
// prepending and makeSub/makeHiddenSub always appending.
type Window struct {
	parent   *Window
	root     *Root
	children []*Window

	top, left   int
	lines, cols int

	pen        *MutablePen
	visible    bool
	float      bool
	stealInput bool

	exposeAfterScroll bool

	cursorLine, cursorCol int
	cursorSet             bool

	focusedChild        *Window
	focusLine, focusCol  int
	focusSet             bool

	damage RectSet
	closed bool

	onKey         KeyHandler
	onMouse       MouseHandler
	onExpose      ExposeHandler
	onGeomChanged GeomHandler
	onFocus       FocusHandler
}

func newChildWindow(parent *Window, top, left, lines, cols int, visible, float, steal bool) *Window {
	return &Window{
		parent:     parent,
		root:       parent.root,
		top:        top,
		left:       left,
		lines:      lines,
		cols:       cols,
		visible:    visible,
		float:      float,
		stealInput: steal,
		pen:        NewMutablePen(),
	}
}

// MakeSub creates a visible, non-floating child appended after existing
// children (so it paints beneath any float).
func (w *Window) MakeSub(top, left, lines, cols int) (*Window, error) {
	if w.closed {
		return nil, ErrDetached
	}
	if _, err := NewRect(top, left, lines, cols); err != nil {
		return nil, err
	}
	c := newChildWindow(w, top, left, lines, cols, true, false, false)
	w.children = append(w.children, c)
	return c, nil
}

// MakeHiddenSub is MakeSub but the child starts invisible.
func (w *Window) MakeHiddenSub(top, left, lines, cols int) (*Window, error) {
	if w.closed {
		return nil, ErrDetached
	}
	if _, err := NewRect(top, left, lines, cols); err != nil {
		return nil, err
	}
	c := newChildWindow(w, top, left, lines, cols, false, false, false)
	w.children = append(w.children, c)
	return c, nil
}

// MakeFloat creates a floating child, prepended so it paints over every
// earlier sibling (float or not).
func (w *Window) MakeFloat(top, left, lines, cols int) (*Window, error) {
	if w.closed {
		return nil, ErrDetached
	}
	if _, err := NewRect(top, left, lines, cols); err != nil {
		return nil, err
	}
	c := newChildWindow(w, top, left, lines, cols, true, true, false)
	w.children = append([]*Window{c}, w.children...)
	return c, nil
}

// MakePopup walks to the root and attaches a float there at the absolute
// coordinates implied by (top, left) relative to w, with stealInput set so
// it intercepts all key and mouse routing ahead of focus (§9: popups steal
// unconditionally).
func (w *Window) MakePopup(top, left, lines, cols int) (*Window, error) {
	if w.closed {
		return nil, ErrDetached
	}
	if lines <= 0 || cols <= 0 {
		return nil, ErrNegativeGeometry
	}
	absTop, absLeft := w.toAbsolute(top, left)
	root := w.rootOf()
	if _, err := NewRect(absTop, absLeft, lines, cols); err != nil {
		return nil, err
	}
	c := newChildWindow(&root.Window, absTop, absLeft, lines, cols, true, true, true)
	root.children = append([]*Window{c}, root.children...)
	return c, nil
}

// Close detaches w from its parent and recursively closes every descendant,
// clearing callbacks so a stray reference can't keep firing them.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	kids := w.children
	w.children = nil
	for _, c := range kids {
		c.Close()
	}
	if w.parent != nil {
		p := w.parent
		for i, c := range p.children {
			if c == w {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		if p.focusedChild == w {
			p.focusedChild = nil
		}
	}
	w.onKey, w.onMouse, w.onExpose, w.onGeomChanged, w.onFocus = nil, nil, nil, nil, nil
}

func (w *Window) rootOf() *Root {
	cur := w
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur.root
}

// toAbsolute converts a point in w's own coordinate space to root (absolute)
// coordinates by summing every ancestor's origin, including w's own.
func (w *Window) toAbsolute(line, col int) (int, int) {
	for cur := w; cur != nil; cur = cur.parent {
		line += cur.top
		col += cur.left
	}
	return line, col
}

func (w *Window) frame() Rect {
	return Rect{Top: 0, Left: 0, Lines: w.lines, Cols: w.cols}
}

// Visible reports whether w itself is currently marked visible (independent
// of whether an ancestor or a float obscures it).
func (w *Window) Visible() bool { return w.visible }

// SetVisible shows or hides w without otherwise altering it.
func (w *Window) SetVisible(v bool) { w.visible = v }

// Pen returns the shared mutable pen callers may read or subscribe to.
func (w *Window) Pen() *MutablePen { return w.pen }

// SetPen replaces w's shared pen reference outright (so several windows may
// intentionally share one MutablePen and be recolored together).
func (w *Window) SetPen(p *MutablePen) { w.pen = p }

// EffectivePen folds every ancestor's pen (root first) beneath w's own, so
// attributes left unset locally fall through to whatever an ancestor set.
func (w *Window) EffectivePen() ImmutablePen {
	var chain []*Window
	for cur := w; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var eff ImmutablePen
	for i := len(chain) - 1; i >= 0; i-- {
		eff = Merge(eff, chain[i].pen.Snapshot())
	}
	return eff
}

func (w *Window) OnKey(fn KeyHandler)                 { w.onKey = fn }
func (w *Window) OnMouse(fn MouseHandler)             { w.onMouse = fn }
func (w *Window) OnExpose(fn ExposeHandler)           { w.onExpose = fn }
func (w *Window) OnGeomChanged(fn GeomHandler)        { w.onGeomChanged = fn }
func (w *Window) OnFocus(fn FocusHandler)             { w.onFocus = fn }
func (w *Window) SetExposeAfterScroll(enabled bool)   { w.exposeAfterScroll = enabled }

// ChangeGeometry validates and applies a full geometry change, firing
// on_geom_changed exactly when something actually moved or resized.
func (w *Window) ChangeGeometry(top, left, lines, cols int) error {
	if w.closed {
		return ErrDetached
	}
	if _, err := NewRect(top, left, lines, cols); err != nil {
		return err
	}
	changed := top != w.top || left != w.left || lines != w.lines || cols != w.cols
	w.top, w.left, w.lines, w.cols = top, left, lines, cols
	if changed && w.onGeomChanged != nil {
		w.onGeomChanged(w)
	}
	return nil
}

func (w *Window) Resize(lines, cols int) error     { return w.ChangeGeometry(w.top, w.left, lines, cols) }
func (w *Window) Reposition(top, left int) error   { return w.ChangeGeometry(top, left, w.lines, w.cols) }
func (w *Window) Top() int                         { return w.top }
func (w *Window) Left() int                        { return w.left }
func (w *Window) Lines() int                       { return w.lines }
func (w *Window) Cols() int                        { return w.cols }

// ---------- Visibility span (occlusion query) -------------------------------

// VisibilitySpan reports whether (line, col) — in w's own coordinate space —
// is currently visible, and the run length (in columns, rightward) for which
// that visibility holds without change. ok is false when the query point
// falls outside w's own frame or, ascending, outside an ancestor's frame or
// the root's frame ("None" per §4.6).
func (w *Window) VisibilitySpan(line, col int) (visible bool, length int, ok bool) {
	cur := w
	curLine, curCol := line, col
	visible = true
	length = -1
	// obscureLimit bounds how many of cur.children (from index 0) can
	// obscure (curLine, curCol): on the first iteration cur IS the window
	// being drawn on, so every one of its own floats sits in front of its
	// base content. On later iterations cur is an ancestor we ascended
	// into, and only the floats ahead of (lower index than) the child we
	// came from can obscure it — children behind that child are already
	// painted over by it.
	obscureLimit := len(w.children)

	for {
		if curLine < 0 || curLine >= cur.lines || curCol < 0 || curCol >= cur.cols {
			return false, 0, false
		}
		remaining := cur.cols - curCol
		if length < 0 || remaining < length {
			length = remaining
		}
		for i := 0; i < obscureLimit; i++ {
			sib := cur.children[i]
			if !sib.float || !sib.visible {
				continue
			}
			if curLine < sib.top || curLine >= sib.top+sib.lines {
				continue
			}
			switch {
			case curCol >= sib.left && curCol < sib.Right():
				visible = false
				if overlap := sib.Right() - curCol; length < 0 || overlap < length {
					length = overlap
				}
			case sib.left > curCol:
				if shorten := sib.left - curCol; length < 0 || shorten < length {
					length = shorten
				}
			}
		}
		if cur.parent == nil {
			break
		}
		parent := cur.parent
		idx := -1
		for i, c := range parent.children {
			if c == cur {
				idx = i
				break
			}
		}
		curLine, curCol = curLine+cur.top, curCol+cur.left
		cur = parent
		obscureLimit = idx
	}
	return visible, length, true
}

// Right reports w's exclusive right column edge in its parent's coordinate
// space (a convenience mirroring Rect.Right for occlusion math above).
func (w *Window) Right() int { return w.left + w.cols }

// ---------- Drawing ----------------------------------------------------------

// GotoXY stores a virtual cursor position (window-relative); Print/EraseCh
// advance it.
func (w *Window) GotoXY(line, col int) { w.cursorLine, w.cursorCol, w.cursorSet = line, col, true }

// Print writes s starting at the virtual cursor, walking it one visibility
// span at a time: spans that are visible emit through the driver, spans
// that are obscured are silently skipped, and the cursor advances past
// obscured spans as well as visible ones. Printing stops at the right edge
// of w's frame; the part of s beyond it is dropped and the cursor stops
// there.
func (w *Window) Print(s string, pen Pen) error {
	if w.closed {
		return ErrDetached
	}
	if !w.cursorSet {
		return ErrOutOfBounds
	}
	eff := Merge(w.EffectivePen(), effPen(pen))
	root := w.rootOf()
	line, col := w.cursorLine, w.cursorCol
	var pos StringPos
	remaining := s
	for len(remaining) > 0 {
		visible, length, ok := w.VisibilitySpan(line, col)
		if !ok {
			break
		}
		if length <= 0 {
			length = 1
		}
		before := pos
		consumed, err := StringCount(remaining, &pos, -1, -1, before.Columns+length, -1)
		if err != nil {
			return err
		}
		if consumed == 0 {
			break
		}
		chunk := remaining[:consumed]
		if visible {
			absLine, absCol := w.toAbsolute(line, col)
			if err := root.driverPrint(chunk, eff, absLine, absCol); err != nil {
				return err
			}
		}
		col += pos.Columns - before.Columns
		remaining = remaining[consumed:]
	}
	w.cursorLine, w.cursorCol = line, col
	return nil
}

// EraseCh erases n cells rightward from the virtual cursor, honoring
// visibility spans the same way Print does.
func (w *Window) EraseCh(n int, pen Pen) error {
	if w.closed {
		return ErrDetached
	}
	if !w.cursorSet {
		return ErrOutOfBounds
	}
	eff := Merge(w.EffectivePen(), effPen(pen))
	root := w.rootOf()
	line, col := w.cursorLine, w.cursorCol
	remaining := n
	for remaining > 0 {
		visible, length, ok := w.VisibilitySpan(line, col)
		if !ok {
			break
		}
		if length <= 0 {
			length = 1
		}
		run := min(length, remaining)
		if visible {
			absLine, absCol := w.toAbsolute(line, col)
			if err := root.driverErase(run, eff, absLine, absCol); err != nil {
				return err
			}
		}
		col += run
		remaining -= run
	}
	w.cursorLine, w.cursorCol = line, col
	return nil
}

// ClearRect erases every cell of r (in w's coordinate space), line by line.
func (w *Window) ClearRect(r Rect, pen Pen) error {
	if w.closed {
		return ErrDetached
	}
	clipped, ok := r.Intersect(w.frame())
	if !ok {
		return nil
	}
	for line := clipped.Top; line < clipped.Bottom(); line++ {
		w.GotoXY(line, clipped.Left)
		if err := w.EraseCh(clipped.Cols, pen); err != nil {
			return err
		}
	}
	return nil
}

// ClearLine erases the virtual cursor's current row in full.
func (w *Window) ClearLine(pen Pen) error {
	if !w.cursorSet {
		return ErrOutOfBounds
	}
	return w.ClearRect(Rect{Top: w.cursorLine, Left: 0, Lines: 1, Cols: w.cols}, pen)
}

// Clear erases w's entire frame.
func (w *Window) Clear(pen Pen) error {
	return w.ClearRect(w.frame(), pen)
}

// ScrollRect attempts to scroll r by (dy, dx) within the terminal itself.
// It refuses (false, nil) without touching the driver if a visible float
// child overlaps r (scrolling would drag terminal content the float doesn't
// own); on driver failure it enqueues a full repaint of r and reports
// (false, nil); on success it optionally enqueues expose of the
// newly-uncovered bands when exposeAfterScroll is set.
func (w *Window) ScrollRect(r Rect, dy, dx int, pen Pen) (bool, error) {
	if w.closed {
		return false, ErrDetached
	}
	if !w.frame().Contains(r) {
		return false, ErrOutOfBounds
	}
	for _, c := range w.children {
		if !c.float || !c.visible {
			continue
		}
		childFrame := Rect{Top: c.top, Left: c.left, Lines: c.lines, Cols: c.cols}
		if childFrame.Intersects(r) {
			return false, nil
		}
	}
	root := w.rootOf()
	absTop, absLeft := w.toAbsolute(r.Top, r.Left)
	absRect := Rect{Top: absTop, Left: absLeft, Lines: r.Lines, Cols: r.Cols}
	if err := root.driver.ScrollRect(absRect, dy, dx); err != nil {
		w.Expose(r)
		return false, nil
	}
	root.physValid = false
	if w.exposeAfterScroll {
		w.translateDamageInRegion(r, dy, dx)
		for _, band := range scrollExposedBands(r, dy, dx) {
			w.Expose(band)
		}
	}
	return true, nil
}

func scrollExposedBands(r Rect, dy, dx int) []Rect {
	var bands []Rect
	switch {
	case dy > 0:
		bands = append(bands, Rect{Top: r.Bottom() - dy, Left: r.Left, Lines: dy, Cols: r.Cols})
	case dy < 0:
		bands = append(bands, Rect{Top: r.Top, Left: r.Left, Lines: -dy, Cols: r.Cols})
	}
	switch {
	case dx > 0:
		bands = append(bands, Rect{Top: r.Top, Left: r.Right() - dx, Lines: r.Lines, Cols: dx})
	case dx < 0:
		bands = append(bands, Rect{Top: r.Top, Left: r.Left, Lines: r.Lines, Cols: -dx})
	}
	return bands
}

// translateDamageInRegion implements the scroll damage invariant: damage
// inside r moves with the content by (dy, dx); damage outside r is
// unaffected; damage straddling r's boundary is split at the boundary first.
func (w *Window) translateDamageInRegion(r Rect, dy, dx int) {
	rects := append([]Rect(nil), w.damage.Rects()...)
	w.damage.Clear()
	for _, d := range rects {
		inter, ok := d.Intersect(r)
		if !ok {
			w.damage.Add(d)
			continue
		}
		for _, outside := range d.Subtract(inter) {
			w.damage.Add(outside)
		}
		moved := inter.Translate(dy, dx)
		if clipped, ok2 := moved.Intersect(r); ok2 {
			w.damage.Add(clipped)
		}
	}
}

// ---------- Exposure ---------------------------------------------------------

// Expose marks r (in w's own coordinate space) as damaged and schedules a
// single coalesced redraw task on the root, unless r is already fully
// covered by some ancestor's own pending damage (in which case the
// ancestor's cascade will repaint it anyway).
func (w *Window) Expose(r Rect) {
	if w.closed {
		return
	}
	clipped, ok := r.Intersect(w.frame())
	if !ok {
		return
	}
	check := clipped
	for cur := w; cur.parent != nil; cur = cur.parent {
		parent := cur.parent
		check = check.Translate(cur.top, cur.left)
		if parent.damage.Contains(check) {
			return
		}
	}
	w.damage.Add(clipped)
	w.rootOf().scheduleExpose()
}

// firePass fires on_expose for every rect currently in w.damage, cascades
// each rect into the children it overlaps (translated into child
// coordinates), then recurses — so a parent's own repaint always precedes
// its children's, and siblings are visited in (top, left) order.
func (w *Window) firePass() {
	if w.closed {
		return
	}
	rects := append([]Rect(nil), w.damage.Rects()...)
	w.damage.Clear()
	for _, rect := range rects {
		if w.onExpose != nil {
			w.onExpose(w, rect)
		}
	}

	kids := append([]*Window(nil), w.children...)
	sort.Slice(kids, func(i, j int) bool {
		if kids[i].top != kids[j].top {
			return kids[i].top < kids[j].top
		}
		return kids[i].left < kids[j].left
	})
	for _, rect := range rects {
		for _, c := range kids {
			if c.closed || !c.visible {
				continue
			}
			childFrame := Rect{Top: c.top, Left: c.left, Lines: c.lines, Cols: c.cols}
			inter, ok := rect.Intersect(childFrame)
			if !ok {
				continue
			}
			c.damage.Add(inter.Translate(-c.top, -c.left))
		}
	}
	for _, c := range kids {
		c.firePass()
	}
}

// ---------- Input routing ----------------------------------------------------

// HandleKey routes a key event: first to a stealing popup child (if any),
// then to the currently focused child, then to w's own on_key, then —
// unhandled — broadcast to every remaining child in order. Returns whether
// anything claimed the event.
func (w *Window) HandleKey(ev KeyEvent) bool {
	if w.closed {
		return false
	}
	var popup *Window
	if len(w.children) > 0 {
		first := w.children[0]
		if first.float && first.stealInput && first.visible {
			popup = first
			if popup.HandleKey(ev) {
				return true
			}
		}
	}
	if w.focusedChild != nil && w.focusedChild.visible && !w.focusedChild.closed {
		if w.focusedChild.HandleKey(ev) {
			return true
		}
	}
	if w.onKey != nil && w.onKey(w, ev) {
		return true
	}
	for _, c := range w.children {
		if c == popup || c == w.focusedChild || c.closed || !c.visible {
			continue
		}
		if c.HandleKey(ev) {
			return true
		}
	}
	return false
}

// HandleMouse routes a mouse event (Line/Col in w's own coordinate space):
// first to a stealing popup child regardless of coordinates, then to
// whichever visible child's frame contains the point (floats win ties by
// list order), translating into that child's space; falls back to w's own
// on_mouse if nothing below claimed it.
func (w *Window) HandleMouse(ev MouseEvent) bool {
	if w.closed {
		return false
	}
	var popup *Window
	if len(w.children) > 0 {
		first := w.children[0]
		if first.float && first.stealInput && first.visible {
			popup = first
			if popup.HandleMouse(translateMouseInto(ev, popup)) {
				return true
			}
		}
	}
	for _, c := range w.children {
		if c == popup || c.closed || !c.visible {
			continue
		}
		childFrame := Rect{Top: c.top, Left: c.left, Lines: c.lines, Cols: c.cols}
		if !childFrame.ContainsPoint(ev.Line, ev.Col) {
			continue
		}
		if c.HandleMouse(translateMouseInto(ev, c)) {
			return true
		}
		break
	}
	if w.onMouse != nil && w.onMouse(w, ev) {
		return true
	}
	return false
}

func translateMouseInto(ev MouseEvent, c *Window) MouseEvent {
	ev.Line -= c.top
	ev.Col -= c.left
	return ev
}

// ---------- Focus -------------------------------------------------------------

// Focus places the input focus cursor at (line, col) within w and marks w
// as the focused child all the way up to the root, firing on_focus(false)
// on whichever sibling held focus at each level and on_focus(true) on w.
func (w *Window) Focus(line, col int) {
	if w.closed {
		return
	}
	w.focusLine, w.focusCol, w.focusSet = line, col, true
	for cur := w; cur.parent != nil; cur = cur.parent {
		parent := cur.parent
		if parent.focusedChild != cur {
			old := parent.focusedChild
			parent.focusedChild = cur
			if old != nil && old.onFocus != nil {
				old.onFocus(old, false)
			}
		}
	}
	if w.onFocus != nil {
		w.onFocus(w, true)
	}
}

// Restore places the terminal's physical cursor at the deepest
// currently-focused descendant's position (hiding it if nothing holds
// focus), then flushes the driver. Call after any batch of drawing/expose
// work, mirroring the spec's restore-then-flush convention.
func (w *Window) Restore() error {
	root := w.rootOf()
	cur := &root.Window
	for cur.focusedChild != nil && cur.focusedChild.visible && !cur.focusedChild.closed {
		cur = cur.focusedChild
	}
	if cur.focusSet {
		absLine, absCol := cur.toAbsolute(cur.focusLine, cur.focusCol)
		if err := root.driverGoto(absLine, absCol); err != nil {
			return err
		}
		if err := root.driver.SetMode("cursor", true); err != nil {
			return err
		}
	} else if err := root.driver.SetMode("cursor", false); err != nil {
		return err
	}
	return root.driver.Flush()
}
