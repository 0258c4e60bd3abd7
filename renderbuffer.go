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

// geomState is the non-pen portion of a RenderBuffer state frame: cursor,
// clip, accumulated translation, and masked regions. savepen frames share
// one of these by pointer with the frame beneath them (so clip/translate/
// mask/cursor changes made under a savepen persist past its restore); save
// frames get their own clone, discarded on restore.
type geomState struct {
	cursorSet        bool
	cursorLine, cursorCol int

	clipSet bool
	clip    Rect

	dy, dx int

	masks RectSet
}

func newGeomState() *geomState { return &geomState{} }

func (g *geomState) clone() *geomState {
	c := *g
	c.masks = g.masks.Clone()
	return &c
}

// frame is one entry of a RenderBuffer's state stack (spec.md §3 "save
// stack"/"pen stack").
type frame struct {
	geom *geomState

	baseEffective ImmutablePen // effective pen of the frame beneath, fixed at push time
	ownPen        ImmutablePen // this frame's own overrides
	effective     ImmutablePen // cached Merge(baseEffective, ownPen)

	penOnly bool // pushed by savepen rather than save
}

// RenderBuffer is an off-screen, cell-addressed drawing surface. Drawing
// operations buffer into a grid of cells; Flush walks the grid in reading
// order and emits the minimal sequence of Driver calls needed to paint
// whatever changed, merging adjacent same-pen runs and skipping cells
// unchanged since the last flush (spec.md §3-§5).
type RenderBuffer struct {
	lines, cols int
	grid        []cell // lines*cols, row-major
	prev        []cell // grid as of the last flush, for minimal-diff output

	storedText []string

	stack []frame
}

// NewRenderBuffer creates a buffer of the given size, entirely Skip.
func NewRenderBuffer(lines, cols int) (*RenderBuffer, error) {
	if lines <= 0 || cols <= 0 {
		return nil, ErrNegativeGeometry
	}
	rb := &RenderBuffer{lines: lines, cols: cols}
	rb.grid = make([]cell, lines*cols)
	rb.prev = make([]cell, lines*cols)
	rb.resetStack()
	return rb, nil
}

func (rb *RenderBuffer) resetStack() {
	rb.stack = []frame{{geom: newGeomState()}}
}

func (rb *RenderBuffer) top() *frame { return &rb.stack[len(rb.stack)-1] }

// Lines and Cols report the buffer's fixed geometry.
func (rb *RenderBuffer) Lines() int { return rb.lines }
func (rb *RenderBuffer) Cols() int  { return rb.cols }

func (rb *RenderBuffer) idx(line, col int) int { return line*rb.cols + col }

func (rb *RenderBuffer) inBounds(line, col int) bool {
	return line >= 0 && line < rb.lines && col >= 0 && col < rb.cols
}

// absolute translates a cursor-relative-or-explicit coordinate by the
// current frame's accumulated translation.
func (rb *RenderBuffer) absolute(line, col int) (int, int) {
	g := rb.top().geom
	return line + g.dy, col + g.dx
}

// blocked reports whether (absLine, absCol) falls outside the current clip,
// or inside any masked rect of the current frame.
func (rb *RenderBuffer) blocked(absLine, absCol int) bool {
	g := rb.top().geom
	if !rb.inBounds(absLine, absCol) {
		return true
	}
	if g.clipSet && !g.clip.ContainsPoint(absLine, absCol) {
		return true
	}
	if g.masks.Len() > 0 && g.masks.Intersects(Rect{Top: absLine, Left: absCol, Lines: 1, Cols: 1}) {
		return true
	}
	return false
}

// ---------- state stack -----------------------------------------------------

// Save pushes a full copy of the current state (cursor, clip, translate,
// mask, pen); Restore reverts all of it.
func (rb *RenderBuffer) Save() { rb.push(false) }

// SavePen pushes a frame that shares clip/translate/mask/cursor with the
// frame beneath (mutations to them are visible to, and outlive, this frame)
// but has its own pen; Restore reverts only the pen.
func (rb *RenderBuffer) SavePen() { rb.push(true) }

func (rb *RenderBuffer) push(penOnly bool) {
	top := rb.top()
	var g *geomState
	if penOnly {
		g = top.geom
	} else {
		g = top.geom.clone()
	}
	rb.stack = append(rb.stack, frame{
		geom:          g,
		baseEffective: top.effective,
		effective:     top.effective,
		penOnly:       penOnly,
	})
}

// Restore pops the most recent Save/SavePen frame. Restoring the root frame
// is a no-op (nothing left to pop to).
func (rb *RenderBuffer) Restore() {
	if len(rb.stack) <= 1 {
		return
	}
	rb.stack = rb.stack[:len(rb.stack)-1]
}

// Reset empties the state stack back to a single default frame and marks
// every cell Skip, discarding all buffered content.
func (rb *RenderBuffer) Reset() {
	rb.resetStack()
	for i := range rb.grid {
		rb.grid[i] = skipCell()
	}
}

// Clip intersects the current clip rect (given in the frame's current,
// pre-translation coordinate space) with the running one.
func (rb *RenderBuffer) Clip(r Rect) {
	g := rb.top().geom
	abs := r.Translate(g.dy, g.dx)
	if g.clipSet {
		if inter, ok := g.clip.Intersect(abs); ok {
			g.clip = inter
		} else {
			g.clip = Rect{}
		}
	} else {
		g.clip = abs
		g.clipSet = true
	}
}

// Mask adds r (in the frame's current coordinate space) to the set of
// regions subsequent drawing operations must not touch.
func (rb *RenderBuffer) Mask(r Rect) {
	g := rb.top().geom
	g.masks.Add(r.Translate(g.dy, g.dx))
}

// Unmask removes r from the masked region set.
func (rb *RenderBuffer) Unmask(r Rect) {
	g := rb.top().geom
	g.masks.Subtract(r.Translate(g.dy, g.dx))
}

// Translate accumulates (dy, dx) into the current frame's offset; all
// subsequent coordinates (including further Translate calls) are relative
// to it.
func (rb *RenderBuffer) Translate(dy, dx int) {
	g := rb.top().geom
	g.dy += dy
	g.dx += dx
}

// SetPen merges p over the pen in effect below the current frame, becoming
// the pen subsequent drawing ops (that don't supply their own) use.
func (rb *RenderBuffer) SetPen(p Pen) {
	top := rb.top()
	top.ownPen = snapshotPen(p)
	top.effective = Merge(top.baseEffective, top.ownPen)
}

func snapshotPen(p Pen) ImmutablePen {
	if ip, ok := p.(ImmutablePen); ok {
		return ip
	}
	return Merge(ImmutablePen{}, p)
}

// Pen returns the pen currently in effect (the merge of every frame's own
// pen, bottom to top).
func (rb *RenderBuffer) Pen() ImmutablePen { return rb.top().effective }

// GotoXY moves the buffer's virtual cursor (used by the cursor-relative
// ops: Text, Erase, Skip, Char without an explicit position).
func (rb *RenderBuffer) GotoXY(line, col int) {
	g := rb.top().geom
	g.cursorLine, g.cursorCol = line, col
	g.cursorSet = true
}

func (rb *RenderBuffer) cursor() (int, int) {
	g := rb.top().geom
	return g.cursorLine, g.cursorCol
}

func (rb *RenderBuffer) advanceCursor(cols int) {
	g := rb.top().geom
	g.cursorCol += cols
}

// ---------- wide-glyph displacement -----------------------------------------

// clearGlyphOverlap ensures that writing new content into [col, col+width)
// on line does not leave a partial wide glyph behind: any Continuation cell
// in that range has its primary cell (if outside the range) turned to Skip,
// and any wide primary cell in range has its trailing Continuation cells
// (if outside the range) turned to Skip too.
func (rb *RenderBuffer) clearGlyphOverlap(line, col, width int) {
	rangeEnd := col + width
	if c := rb.grid[rb.idx(line, col)]; c.kind == cellContinuation && c.contStart < col {
		rb.grid[rb.idx(line, c.contStart)] = skipCell()
	}
	for c := col; c < rangeEnd && c < rb.cols; c++ {
		cell := rb.grid[rb.idx(line, c)]
		if cell.isWidePrimary() {
			for k := c + 1; k < c+cell.width; k++ {
				if k >= rangeEnd && k < rb.cols {
					rb.grid[rb.idx(line, k)] = skipCell()
				}
			}
		}
	}
}

func (rb *RenderBuffer) setCell(line, col int, c cell, width int) {
	if width < 1 {
		width = 1
	}
	if rb.blocked(line, col) {
		return
	}
	rb.clearGlyphOverlap(line, col, width)
	rb.grid[rb.idx(line, col)] = c
	for k := 1; k < width; k++ {
		if rb.inBounds(line, col+k) {
			rb.grid[rb.idx(line, col+k)] = continuationCell(col)
		}
	}
}

// ---------- drawing operations ----------------------------------------------

// Skip marks cols cells starting at the cursor as Skip (untouched on
// flush), advancing the cursor.
func (rb *RenderBuffer) Skip(cols int) {
	line, col := rb.cursor()
	rb.SkipAt(line, col, cols)
	rb.advanceCursor(cols)
}

// SkipAt marks cols cells starting at (line, col) as Skip.
func (rb *RenderBuffer) SkipAt(line, col, cols int) {
	aLine, aCol := rb.absolute(line, col)
	for c := 0; c < cols; c++ {
		rb.setCell(aLine, aCol+c, skipCell(), 1)
	}
}

// SkipTo marks cells from the cursor up to (exclusive) column toCol as Skip.
func (rb *RenderBuffer) SkipTo(toCol int) {
	_, col := rb.cursor()
	if toCol > col {
		rb.Skip(toCol - col)
	}
}

// Erase fills cols cells starting at the cursor with pen and no glyph,
// advancing the cursor.
func (rb *RenderBuffer) Erase(cols int, pen Pen) {
	line, col := rb.cursor()
	rb.EraseAt(line, col, cols, pen)
	rb.advanceCursor(cols)
}

// EraseAt fills cols cells starting at (line, col).
func (rb *RenderBuffer) EraseAt(line, col, cols int, pen Pen) {
	aLine, aCol := rb.absolute(line, col)
	p := Merge(rb.Pen(), effPen(pen))
	for c := 0; c < cols; c++ {
		rb.setCell(aLine, aCol+c, eraseCell(p), 1)
	}
}

// EraseTo erases from the cursor up to (exclusive) column toCol.
func (rb *RenderBuffer) EraseTo(toCol int, pen Pen) {
	_, col := rb.cursor()
	if toCol > col {
		rb.Erase(toCol-col, pen)
	}
}

// EraseRect fills an entire rect (given in the frame's coordinate space)
// with pen.
func (rb *RenderBuffer) EraseRect(r Rect, pen Pen) {
	p := Merge(rb.Pen(), effPen(pen))
	for l := 0; l < r.Lines; l++ {
		aLine, aCol := rb.absolute(r.Top+l, r.Left)
		for c := 0; c < r.Cols; c++ {
			rb.setCell(aLine, aCol+c, eraseCell(p), 1)
		}
	}
}

// Text prints s at the cursor with pen, advancing the cursor by s's
// column width.
func (rb *RenderBuffer) Text(s string, pen Pen) error {
	line, col := rb.cursor()
	w, err := rb.TextAt(line, col, s, pen)
	if err != nil {
		return err
	}
	rb.advanceCursor(w)
	return nil
}

// TextAt prints s at (line, col), returning its column width.
func (rb *RenderBuffer) TextAt(line, col int, s string, pen Pen) (int, error) {
	total, ok := TextWidth(s)
	if !ok {
		return 0, ErrIllegalText
	}
	idx := len(rb.storedText)
	rb.storedText = append(rb.storedText, s)

	p := Merge(rb.Pen(), effPen(pen))
	aLine, aCol := rb.absolute(line, col)

	byteOff := 0
	cur := s
	curCol := col
	for len(cur) > 0 {
		r, size, _ := decodeRune(cur)
		w := runeColumns(r)
		if w < 0 {
			w = 1
		}
		rb.setCell(aLine, aCol+(curCol-col), textCell(idx, byteOff, w, p), w)
		byteOff += size
		curCol += w
		cur = cur[size:]
	}
	return total, nil
}

// Char prints a single codepoint at the cursor, advancing the cursor by its
// column width.
func (rb *RenderBuffer) Char(r rune, pen Pen) error {
	line, col := rb.cursor()
	w, err := rb.CharAt(line, col, r, pen)
	if err != nil {
		return err
	}
	rb.advanceCursor(w)
	return nil
}

// CharAt prints a single codepoint at (line, col), returning its width.
func (rb *RenderBuffer) CharAt(line, col int, r rune, pen Pen) (int, error) {
	if isIllegalRune(r) {
		return 0, ErrIllegalText
	}
	w := runeColumns(r)
	if w < 0 {
		return 0, ErrIllegalText
	}
	p := Merge(rb.Pen(), effPen(pen))
	aLine, aCol := rb.absolute(line, col)
	rb.setCell(aLine, aCol, charCell(r, w, p), w)
	return w, nil
}

// HLineAt draws a horizontal line segment on line, from startCol to
// (exclusive) endCol, of the given style, merging with whatever line mask
// is already present at each cell.
func (rb *RenderBuffer) HLineAt(line, startCol, endCol int, style LineStyle, pen Pen) {
	if style == NoLine || endCol <= startCol {
		return
	}
	p := Merge(rb.Pen(), effPen(pen))
	for c := startCol; c < endCol; c++ {
		mask := mkMask(NoLine, style, NoLine, style)
		if c == startCol {
			mask = mask.WithStyle(West, NoLine)
		}
		if c == endCol-1 {
			mask = mask.WithStyle(East, NoLine)
		}
		rb.drawLineCell(line, c, mask, p)
	}
}

// VLineAt draws a vertical line segment in col, from startLine to
// (exclusive) endLine.
func (rb *RenderBuffer) VLineAt(col, startLine, endLine int, style LineStyle, pen Pen) {
	if style == NoLine || endLine <= startLine {
		return
	}
	p := Merge(rb.Pen(), effPen(pen))
	for l := startLine; l < endLine; l++ {
		mask := mkMask(style, NoLine, style, NoLine)
		if l == startLine {
			mask = mask.WithStyle(North, NoLine)
		}
		if l == endLine-1 {
			mask = mask.WithStyle(South, NoLine)
		}
		rb.drawLineCell(l, col, mask, p)
	}
}

// LineBoxAt draws a rectangular outline around r's border (the four edges,
// at r's own boundary cells), merging corners correctly.
func (rb *RenderBuffer) LineBoxAt(r Rect, style LineStyle, pen Pen) {
	if r.Lines < 1 || r.Cols < 1 || style == NoLine {
		return
	}
	p := Merge(rb.Pen(), effPen(pen))
	top, bottom := r.Top, r.Bottom()-1
	left, right := r.Left, r.Right()-1
	for c := left + 1; c < right; c++ {
		rb.drawLineCell(top, c, mkMask(NoLine, style, NoLine, style), p)
		if bottom != top {
			rb.drawLineCell(bottom, c, mkMask(NoLine, style, NoLine, style), p)
		}
	}
	for l := top + 1; l < bottom; l++ {
		rb.drawLineCell(l, left, mkMask(style, NoLine, style, NoLine), p)
		if right != left {
			rb.drawLineCell(l, right, mkMask(style, NoLine, style, NoLine), p)
		}
	}
	// Corners: merge both directions in.
	rb.drawLineCell(top, left, mkMask(NoLine, style, style, NoLine), p)
	rb.drawLineCell(top, right, mkMask(NoLine, NoLine, style, style), p)
	rb.drawLineCell(bottom, left, mkMask(style, style, NoLine, NoLine), p)
	rb.drawLineCell(bottom, right, mkMask(style, NoLine, NoLine, style), p)
}

func (rb *RenderBuffer) drawLineCell(line, col int, mask LineMask, pen ImmutablePen) {
	aLine, aCol := rb.absolute(line, col)
	if rb.blocked(aLine, aCol) {
		return
	}
	rb.clearGlyphOverlap(aLine, aCol, 1)
	existing := rb.grid[rb.idx(aLine, aCol)]
	merged := mask
	if existing.kind == cellLine {
		merged = MergeLineMask(existing.mask, mask)
	}
	rb.grid[rb.idx(aLine, aCol)] = lineCell(merged, pen)
}

func effPen(p Pen) ImmutablePen {
	if p == nil {
		return ImmutablePen{}
	}
	return snapshotPen(p)
}

// ---------- flush -------------------------------------------------------

// FlushOp is one minimal driver instruction produced by Flush.
type FlushOp struct {
	Line, Col int
	Text      string // Print/EraseCh payload; empty for EraseCh (use Count)
	Count     int    // EraseCh: number of cells to erase
	Pen       ImmutablePen
	IsErase   bool
}

// Flush walks the grid in reading order, resolves cellLine cells to their
// glyph, coalesces contiguous same-pen runs of Erase, Text and Line cells
// (each Char cell is its own op), skips cells
// unchanged since the previous Flush, and returns the resulting driver
// instructions. The caller (Window/root, or PlayInto below) is responsible
// for turning these into actual Driver.Goto/Print/EraseCh calls.
//
// Per spec.md §4.5 ("After flush, the buffer resets"), Flush leaves the
// buffer ready for the next render round: the snapshot used for the next
// call's diffing is taken first, then the stack and grid are reset exactly
// as Reset does, so a widget can acquire a RenderBuffer once and reuse it
// across frames (§3) without stale cursor/clip/pen state or stale cell
// content leaking into the next round. Skip cells left untouched by the
// next round's draw calls still diff against the pre-reset snapshot, so an
// area a widget doesn't redraw keeps emitting nothing until it changes.
func (rb *RenderBuffer) Flush() []FlushOp {
	var ops []FlushOp
	for line := 0; line < rb.lines; line++ {
		ops = append(ops, rb.flushLine(line)...)
	}
	copy(rb.prev, rb.grid)
	rb.Reset()
	return ops
}

// PlayInto flushes rb and issues the resulting ops against d: a Goto to
// each run's start followed by a Print or EraseCh, exactly the translation
// spec.md §2's data flow describes ("the buffer emits minimal terminal ops
// via the driver"). Window bypasses this (it talks to a Driver directly
// through Root's own diff cache, per driver.go), but any caller that holds
// a bare RenderBuffer and a Driver — a standalone widget, a demo program —
// uses PlayInto to get the same minimal-diff behavior.
func (rb *RenderBuffer) PlayInto(d Driver) error {
	for _, op := range rb.Flush() {
		if err := d.Goto(op.Line, op.Col); err != nil {
			return err
		}
		if op.IsErase {
			if err := d.EraseCh(op.Count, op.Pen); err != nil {
				return err
			}
			continue
		}
		if err := d.Print(op.Text, op.Pen); err != nil {
			return err
		}
	}
	return nil
}

func (rb *RenderBuffer) flushLine(line int) []FlushOp {
	var ops []FlushOp
	col := 0
	for col < rb.cols {
		i := rb.idx(line, col)
		c := rb.grid[i]
		p := rb.prev[i]

		if c.kind == cellSkip || c.kind == cellContinuation || cellEqual(c, p) {
			col++
			continue
		}

		switch c.kind {
		case cellErase:
			start := col
			pen := c.pen
			for col < rb.cols {
				cc := rb.grid[rb.idx(line, col)]
				pc := rb.prev[rb.idx(line, col)]
				if cc.kind != cellErase || !cc.pen.Equal(pen) || cellEqual(cc, pc) {
					break
				}
				col++
			}
			ops = append(ops, FlushOp{Line: line, Col: start, Count: col - start, Pen: pen, IsErase: true})

		case cellChar:
			ops = append(ops, FlushOp{Line: line, Col: col, Text: string(c.r), Pen: c.pen})
			col += max(c.width, 1)

		case cellLine:
			start := col
			pen := c.pen
			var glyphs []rune
			for col < rb.cols {
				cc := rb.grid[rb.idx(line, col)]
				pc := rb.prev[rb.idx(line, col)]
				if cc.kind != cellLine || !cc.pen.Equal(pen) || cellEqual(cc, pc) {
					break
				}
				glyphs = append(glyphs, cc.mask.Glyph())
				col++
			}
			ops = append(ops, FlushOp{Line: line, Col: start, Text: string(glyphs), Pen: pen})

		case cellText:
			start := col
			idx := c.textIdx
			startByte := c.byteOffset
			pen := c.pen
			text := rb.storedText[idx]
			endByte := startByte
			for col < rb.cols {
				cc := rb.grid[rb.idx(line, col)]
				pc := rb.prev[rb.idx(line, col)]
				if cc.kind != cellText || cc.textIdx != idx || cc.byteOffset != endByte || !cc.pen.Equal(pen) || cellEqual(cc, pc) {
					break
				}
				_, size, _ := decodeRune(text[cc.byteOffset:])
				endByte = cc.byteOffset + size
				col += max(cc.width, 1)
				// advance over this text cell's continuation cells too
				for col < rb.cols && rb.grid[rb.idx(line, col)].kind == cellContinuation {
					col++
				}
			}
			ops = append(ops, FlushOp{Line: line, Col: start, Text: text[startByte:endByte], Pen: pen})

		default:
			col++
		}
	}
	return ops
}

func cellEqual(a, b cell) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case cellSkip:
		return true
	case cellErase:
		return a.pen.Equal(b.pen)
	case cellChar:
		return a.r == b.r && a.pen.Equal(b.pen)
	case cellLine:
		return a.mask == b.mask && a.pen.Equal(b.pen)
	case cellText:
		return a.textIdx == b.textIdx && a.byteOffset == b.byteOffset && a.pen.Equal(b.pen)
	case cellContinuation:
		return a.contStart == b.contStart
	}
	return false
}
