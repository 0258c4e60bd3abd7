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

func TestNewRootSizesFromDriver(t *testing.T) {
	root, _ := newTestRoot(24, 80)
	if root.Lines() != 24 || root.Cols() != 80 {
		t.Fatalf("root size = %d,%d want 24,80", root.Lines(), root.Cols())
	}
	if !root.Visible() {
		t.Fatalf("root not visible by default")
	}
}

func TestNewRootDefaultsToNoopLogger(t *testing.T) {
	d := newFakeDriver(10, 10)
	root, err := NewRoot(d, nil)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	root.Logger().Debugf("this must not panic: %d", 1)
}

func TestLaterRunsInOrderAndDefersReentrantTasks(t *testing.T) {
	root, _ := newTestRoot(10, 10)
	var order []int
	root.Later(func() {
		order = append(order, 1)
		root.Later(func() { order = append(order, 3) })
	})
	root.Later(func() { order = append(order, 2) })
	root.RunPending()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order after first RunPending = %v, want [1 2]", order)
	}
	root.RunPending()
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("order after second RunPending = %v, want [1 2 3]", order)
	}
}

func TestScheduleExposeCoalescesToOnePendingTask(t *testing.T) {
	root, _ := newTestRoot(10, 10)
	root.Expose(MustRect(0, 0, 1, 1))
	root.Expose(MustRect(1, 1, 1, 1))
	if len(root.pending) != 1 {
		t.Fatalf("pending = %d, want exactly 1 coalesced task", len(root.pending))
	}
}

func TestDispatchRoutesKeyAndMouse(t *testing.T) {
	root, _ := newTestRoot(10, 10)
	var sawKey, sawMouse bool
	root.OnKey(func(*Window, KeyEvent) bool { sawKey = true; return true })
	root.OnMouse(func(*Window, MouseEvent) bool { sawMouse = true; return true })

	if !root.Dispatch(KeyEvent{Kind: KeyEventKey, Key: KeyEscape}) {
		t.Fatalf("Dispatch(KeyEvent) did not report claimed")
	}
	if !sawKey {
		t.Fatalf("on_key never fired via Dispatch")
	}
	if !root.Dispatch(MouseEvent{Kind: MousePress, Button: ButtonLeft}) {
		t.Fatalf("Dispatch(MouseEvent) did not report claimed")
	}
	if !sawMouse {
		t.Fatalf("on_mouse never fired via Dispatch")
	}
	if root.Dispatch("not an event") {
		t.Fatalf("Dispatch of an unrecognized type reported claimed")
	}
}

func TestPostKeyAndPostMouseInjectDirectly(t *testing.T) {
	root, _ := newTestRoot(10, 10)
	var gotKey KeyEvent
	root.OnKey(func(_ *Window, ev KeyEvent) bool { gotKey = ev; return true })
	if !root.PostKey(KeyEvent{Kind: KeyEventText, Text: "q"}) {
		t.Fatalf("PostKey did not report claimed")
	}
	if gotKey.Text != "q" {
		t.Fatalf("on_key saw %+v, want Text=q", gotKey)
	}

	var gotMouse MouseEvent
	root.OnMouse(func(_ *Window, ev MouseEvent) bool { gotMouse = ev; return true })
	if !root.PostMouse(MouseEvent{Kind: MouseWheel, Button: WheelUp, Line: 3, Col: 4}) {
		t.Fatalf("PostMouse did not report claimed")
	}
	if gotMouse.Line != 3 || gotMouse.Col != 4 {
		t.Fatalf("on_mouse saw %+v, want Line=3 Col=4", gotMouse)
	}
}

func TestHandleResizeFiresOnGeomChanged(t *testing.T) {
	root, _ := newTestRoot(10, 10)
	fires := 0
	root.OnGeomChanged(func(*Window) { fires++ })
	if err := root.HandleResize(20, 30); err != nil {
		t.Fatalf("HandleResize: %v", err)
	}
	if root.Lines() != 20 || root.Cols() != 30 {
		t.Fatalf("root size after resize = %d,%d want 20,30", root.Lines(), root.Cols())
	}
	if fires != 1 {
		t.Fatalf("fires = %d, want 1", fires)
	}
}

func TestDriverGotoSkipsRedundantCalls(t *testing.T) {
	root, d := newTestRoot(10, 10)
	if err := root.driverGoto(2, 3); err != nil {
		t.Fatalf("driverGoto: %v", err)
	}
	if err := root.driverGoto(2, 3); err != nil {
		t.Fatalf("driverGoto (repeat): %v", err)
	}
	count := 0
	for _, c := range d.calls {
		if c == "goto(2,3)" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("goto(2,3) emitted %d times, want 1", count)
	}
}
