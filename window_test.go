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

import (
	"strings"
	"testing"
)

func newTestRoot(lines, cols int) (*Root, *fakeDriver) {
	d := newFakeDriver(lines, cols)
	r, err := NewRoot(d, nil)
	if err != nil {
		panic(err)
	}
	return r, d
}

func TestMakeSubAppendsAfterFloats(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	sub, err := root.MakeSub(0, 0, 5, 5)
	if err != nil {
		t.Fatalf("MakeSub: %v", err)
	}
	float, err := root.MakeFloat(0, 0, 2, 2)
	if err != nil {
		t.Fatalf("MakeFloat: %v", err)
	}
	if root.children[0] != float {
		t.Fatalf("float not prepended ahead of sub")
	}
	if root.children[1] != sub {
		t.Fatalf("sub not found after float")
	}
}

func TestMakeHiddenSubStartsInvisible(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	sub, err := root.MakeHiddenSub(0, 0, 3, 3)
	if err != nil {
		t.Fatalf("MakeHiddenSub: %v", err)
	}
	if sub.Visible() {
		t.Fatalf("hidden sub reports Visible() = true")
	}
}

func TestMakePopupAttachesAtRootWithStealInput(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	sub, err := root.MakeSub(2, 2, 5, 5)
	if err != nil {
		t.Fatalf("MakeSub: %v", err)
	}
	popup, err := sub.MakePopup(1, 1, 2, 2)
	if err != nil {
		t.Fatalf("MakePopup: %v", err)
	}
	if popup.parent != &root.Window {
		t.Fatalf("popup not attached at root")
	}
	if popup.top != 3 || popup.left != 3 {
		t.Fatalf("popup at (%d,%d), want absolute (3,3)", popup.top, popup.left)
	}
	if !popup.stealInput {
		t.Fatalf("popup.stealInput = false")
	}
	if root.children[0] != popup {
		t.Fatalf("popup not prepended at root")
	}
}

func TestChangeGeometryFiresOnGeomChangedOnlyWhenDifferent(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 5)
	fires := 0
	w.OnGeomChanged(func(*Window) { fires++ })

	if err := w.ChangeGeometry(0, 0, 5, 5); err != nil {
		t.Fatalf("ChangeGeometry (no-op): %v", err)
	}
	if fires != 0 {
		t.Fatalf("fires = %d after identical geometry, want 0", fires)
	}
	if err := w.ChangeGeometry(1, 1, 5, 5); err != nil {
		t.Fatalf("ChangeGeometry (move): %v", err)
	}
	if fires != 1 {
		t.Fatalf("fires = %d after move, want 1", fires)
	}
}

func TestChangeGeometryRejectsNegativeSize(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 5)
	if err := w.ChangeGeometry(0, 0, -1, 5); err == nil {
		t.Fatalf("ChangeGeometry with negative lines: want error, got nil")
	}
}

func TestVisibilitySpanUnobscured(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	visible, length, ok := w.VisibilitySpan(2, 3)
	if !ok || !visible || length != 7 {
		t.Fatalf("VisibilitySpan = %v,%d,%v want true,7,true", visible, length, ok)
	}
}

func TestVisibilitySpanOutOfFrameIsNone(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	if _, _, ok := w.VisibilitySpan(5, 0); ok {
		t.Fatalf("VisibilitySpan at out-of-bounds line: ok = true, want false")
	}
}

func TestVisibilitySpanOwnFloatChildObscures(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	if _, err := w.MakeFloat(2, 3, 1, 4); err != nil {
		t.Fatalf("MakeFloat: %v", err)
	}
	visible, length, ok := w.VisibilitySpan(2, 3)
	if !ok || visible || length != 4 {
		t.Fatalf("VisibilitySpan under own float = %v,%d,%v want false,4,true", visible, length, ok)
	}
	visible, length, ok = w.VisibilitySpan(2, 0)
	if !ok || !visible || length != 3 {
		t.Fatalf("VisibilitySpan left of own float = %v,%d,%v want true,3,true", visible, length, ok)
	}
}

// TestFloatOcclusionPrintSequence exercises printing directly on a window
// that owns a floating child covering part of the line: the obscured span
// must be skipped silently while the cursor still advances past it, leaving
// the driver with two prints straddling the gap.
func TestFloatOcclusionPrintSequence(t *testing.T) {
	root, d := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	if _, err := w.MakeFloat(2, 3, 1, 4); err != nil {
		t.Fatalf("MakeFloat: %v", err)
	}

	w.GotoXY(2, 0)
	if err := w.Print("0123456789", nil); err != nil {
		t.Fatalf("Print: %v", err)
	}

	want := []string{"goto(2,0)", `print("012")`, "goto(2,7)", `print("789")`}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i, c := range want {
		if d.calls[i] != c {
			t.Fatalf("calls[%d] = %q, want %q (full: %v)", i, d.calls[i], c, d.calls)
		}
	}
}

func TestExposeCoalescesIntoSingleFirePass(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	fires := 0
	w.OnExpose(func(*Window, Rect) { fires++ })

	w.Expose(MustRect(0, 0, 2, 10))
	w.Expose(MustRect(2, 0, 2, 10))
	if fires != 0 {
		t.Fatalf("on_expose fired before RunPending: %d", fires)
	}
	root.RunPending()
	if fires != 1 {
		t.Fatalf("fires = %d, want exactly 1 (the two adjacent damage rects merge into one, fired in a single firePass)", fires)
	}
}

func TestExposeSuppressedWhenAncestorAlreadyCoversIt(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 10)
	root.Expose(MustRect(0, 0, 5, 10))
	w.Expose(MustRect(1, 1, 1, 1))
	if w.damage.Len() != 0 {
		t.Fatalf("child damage added despite ancestor already covering it")
	}
}

func TestScrollRectRefusedWhenFloatOverlaps(t *testing.T) {
	root, d := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 10, 40)
	if _, err := w.MakeFloat(0, 0, 2, 2); err != nil {
		t.Fatalf("MakeFloat: %v", err)
	}
	ok, err := w.ScrollRect(MustRect(0, 0, 10, 40), 1, 0, nil)
	if err != nil {
		t.Fatalf("ScrollRect error: %v", err)
	}
	if ok {
		t.Fatalf("ScrollRect succeeded despite overlapping float")
	}
	for _, c := range d.calls {
		if strings.HasPrefix(c, "scrollrect(") {
			t.Fatalf("driver.ScrollRect was called despite float overlap")
		}
	}
}

func TestScrollRectExposesUncoveredBand(t *testing.T) {
	root, d := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 10, 40)
	w.SetExposeAfterScroll(true)
	var exposed []Rect
	w.OnExpose(func(_ *Window, r Rect) { exposed = append(exposed, r) })

	ok, err := w.ScrollRect(MustRect(0, 0, 10, 40), 2, 0, nil)
	if err != nil || !ok {
		t.Fatalf("ScrollRect = %v,%v want true,nil", ok, err)
	}
	root.RunPending()

	wantCall := "scrollrect({Top:0 Left:0 Lines:10 Cols:40},2,0)"
	found := false
	for _, c := range d.calls {
		if c == wantCall {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("driver calls = %v, want scrollrect call %q", d.calls, wantCall)
	}
	if want := MustRect(8, 0, 2, 40); len(exposed) != 1 || exposed[0] != want {
		t.Fatalf("exposed = %+v, want [%+v]", exposed, want)
	}
}

func TestHandleKeyPopupStealsBeforeFocusedChild(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	child, _ := root.MakeSub(0, 0, 5, 5)
	var childSaw, popupSaw bool
	child.OnKey(func(*Window, KeyEvent) bool { childSaw = true; return true })
	child.Focus(0, 0)

	popup, _ := root.MakePopup(0, 0, 2, 2)
	popup.OnKey(func(*Window, KeyEvent) bool { popupSaw = true; return true })

	if !root.HandleKey(KeyEvent{Kind: KeyEventKey, Key: KeyEnter}) {
		t.Fatalf("HandleKey: nothing claimed the event")
	}
	if !popupSaw {
		t.Fatalf("popup did not see the key event")
	}
	if childSaw {
		t.Fatalf("focused child saw the key event despite the popup claiming it") // popup returns true, so child must not run
	}
}

func TestHandleKeyFallsThroughToFocusedChild(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	child, _ := root.MakeSub(0, 0, 5, 5)
	var childSaw bool
	child.OnKey(func(*Window, KeyEvent) bool { childSaw = true; return true })
	child.Focus(0, 0)

	if !root.HandleKey(KeyEvent{Kind: KeyEventKey, Key: KeyTab}) {
		t.Fatalf("HandleKey: nothing claimed the event")
	}
	if !childSaw {
		t.Fatalf("focused child never saw the key event")
	}
}

func TestHandleMouseFloatPrecedenceOverLaterSub(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	base, _ := root.MakeSub(0, 0, 10, 40)
	var baseSaw, floatSaw bool
	base.OnMouse(func(*Window, MouseEvent) bool { baseSaw = true; return true })

	float, _ := root.MakeFloat(0, 0, 2, 2)
	float.OnMouse(func(*Window, MouseEvent) bool { floatSaw = true; return true })

	if !root.HandleMouse(MouseEvent{Kind: MousePress, Button: ButtonLeft, Line: 1, Col: 1}) {
		t.Fatalf("HandleMouse: nothing claimed the event")
	}
	if !floatSaw || baseSaw {
		t.Fatalf("float did not win precedence: floatSaw=%v baseSaw=%v", floatSaw, baseSaw)
	}
}

func TestFocusMovesThroughAncestorChainAndFiresOldFalse(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	a, _ := root.MakeSub(0, 0, 5, 5)
	b, _ := root.MakeSub(0, 0, 5, 5)

	var aGained, aLost bool
	a.OnFocus(func(_ *Window, gained bool) {
		if gained {
			aGained = true
		} else {
			aLost = true
		}
	})
	a.Focus(0, 0)
	if !aGained {
		t.Fatalf("a never gained focus")
	}
	b.Focus(0, 0)
	if !aLost {
		t.Fatalf("a never lost focus when b took it")
	}
	if root.focusedChild != b {
		t.Fatalf("root.focusedChild = %v, want b", root.focusedChild)
	}
}

func TestRestorePositionsCursorAtFocusedDescendant(t *testing.T) {
	root, d := newTestRoot(10, 40)
	sub, _ := root.MakeSub(1, 1, 5, 5)
	sub.Focus(2, 2)

	if err := root.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"goto(3,3)", "setmode(cursor,true)", "flush()"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, d.calls[i], want[i])
		}
	}
}

func TestRestoreHidesCursorWhenNothingFocused(t *testing.T) {
	root, d := newTestRoot(10, 40)
	if err := root.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"setmode(cursor,false)", "flush()"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
}

func TestCloseDetachesFromParentAndClearsFocusedChild(t *testing.T) {
	root, _ := newTestRoot(10, 40)
	w, _ := root.MakeSub(0, 0, 5, 5)
	w.Focus(0, 0)
	w.Close()

	if len(root.children) != 0 {
		t.Fatalf("root still has children after Close: %+v", root.children)
	}
	if root.focusedChild != nil {
		t.Fatalf("root.focusedChild not cleared after closing the focused child")
	}
	if _, err := w.MakeSub(0, 0, 1, 1); err != ErrDetached {
		t.Fatalf("MakeSub on closed window: err = %v, want ErrDetached", err)
	}
}
