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

// Driver is the terminal sink a RenderBuffer's Flush output is played into,
// via PlayInto. It is deliberately narrow — Goto/Print/EraseCh/Clear/
// ScrollRect/SetMode/SetCtl/GetSize/Flush — mirroring the primitive
// operations any real terminal (or terminal emulator, or test recorder) can
// implement, rather than exposing RenderBuffer's own richer cell-addressed
// API. Root is the sole owner of a Driver reference; Window never holds one
// of its own, instead routing every draw/cursor/scroll call through Root's
// helpers (driverGoto/driverPrint/driverErase, or root.driver directly for
// ScrollRect and the cursor-mode calls in Restore).
type Driver interface {
	// Goto moves the terminal's physical cursor to (line, col).
	Goto(line, col int) error

	// Print writes s (already measured, never straddling a wide-character
	// boundary) at the current cursor position using pen, advancing the
	// cursor by s's column width.
	Print(s string, pen ImmutablePen) error

	// EraseCh erases n cells from the current cursor position using pen's
	// background, without necessarily moving the cursor (a terminal may
	// implement this via ECH or by writing spaces).
	EraseCh(n int, pen ImmutablePen) error

	// Clear erases the entire screen using pen's background.
	Clear(pen ImmutablePen) error

	// ScrollRect attempts to scroll r by (dy, dx) cells within the
	// terminal itself (e.g. DECSLRM + SU/SD). ErrScrollUnsupported
	// indicates the driver has no such capability and the caller must
	// fall back to a full repaint of the affected region.
	ScrollRect(r Rect, dy, dx int) error

	// SetMode toggles a driver capability by name (e.g. "cursor",
	// "mouse", "altscreen"); unrecognized names are ignored.
	SetMode(name string, enabled bool) error

	// SetCtl sends a driver-specific control request (e.g. a cursor shape
	// change) identified by name, with an implementation-defined value.
	SetCtl(name string, value any) error

	// GetSize reports the driver's current terminal size in lines and
	// columns.
	GetSize() (lines, cols int, err error)

	// Flush pushes any buffered output to the terminal.
	Flush() error
}
