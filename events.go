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

// ModMask is a bitmask of modifier keys accompanying a key or mouse event.
type ModMask int

const (
	ModShift ModMask = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// Key identifies a non-text key. Decoding raw terminal bytes into Key
// values is out of this module's scope (§1); these constants exist only so
// Window's routing has something concrete to dispatch on in tests and the
// demo command.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEventKind distinguishes a decoded printable-text key event from a
// named non-text key, matching §6.3's on_key(win, kind, text) surface.
type KeyEventKind int

const (
	KeyEventText KeyEventKind = iota
	KeyEventKey
)

// KeyEvent is delivered to Window.HandleKey and on to on_key handlers.
type KeyEvent struct {
	Kind KeyEventKind
	Text string // valid when Kind == KeyEventText
	Key  Key    // valid when Kind == KeyEventKey
	Mods ModMask
}

// MouseEventKind is the mouse action kind from §6.3's
// on_mouse(win, event, button_or_wheel, line, col).
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseDrag
	MouseRelease
	MouseWheel
)

// MouseButton identifies which button (or wheel direction) a MouseEvent
// concerns.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	WheelUp
	WheelDown
)

// MouseEvent is delivered to Window.HandleMouse. Line and Col are in the
// coordinate space of whichever window is currently being asked to route
// the event (absolute/root-space at the root, translated into each
// descendant's own space as routing descends).
type MouseEvent struct {
	Kind   MouseEventKind
	Button MouseButton
	Line   int
	Col    int
	Mods   ModMask
}

// FocusEvent is never queued, and Window's routing does not use it: an
// on_focus callback (FocusHandler) receives the gained flag as a plain bool.
type FocusEvent struct {
	Gained bool
}

// KeyHandler is a window's on_key callback; returning true means the event
// was handled and routing should stop.
type KeyHandler func(w *Window, ev KeyEvent) bool

// MouseHandler is a window's on_mouse callback.
type MouseHandler func(w *Window, ev MouseEvent) bool

// ExposeHandler is a window's on_expose callback, invoked once per damaged
// rect (in the window's own coordinate space).
type ExposeHandler func(w *Window, r Rect)

// GeomHandler is a window's on_geom_changed callback.
type GeomHandler func(w *Window)

// FocusHandler is a window's on_focus callback.
type FocusHandler func(w *Window, gained bool)
