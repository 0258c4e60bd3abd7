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

// Logger receives low-volume diagnostic traffic (dropped events, driver
// errors swallowed on a best-effort path). It defaults to a no-op; callers
// that want output provide their own (e.g. a log.Logger-backed adapter).
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// Root is the top of a Window tree and the sole owner of a Driver. Every
// operation on Root or any of its descendants is expected to run on one
// goroutine (§5): Root carries no mutex, matching the cooperative,
// single-threaded event-loop model the rest of this package assumes.
type Root struct {
	Window

	driver Driver
	logger Logger

	pending         []func()
	exposeScheduled bool

	physLine, physCol int
	physValid         bool
}

// NewRoot sizes itself from driver.GetSize and becomes the root of a new
// Window tree. A nil logger installs a no-op Logger.
func NewRoot(driver Driver, logger Logger) (*Root, error) {
	lines, cols, err := driver.GetSize()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}
	r := &Root{driver: driver, logger: logger}
	r.Window = Window{
		root:    r,
		lines:   lines,
		cols:    cols,
		visible: true,
		pen:     NewMutablePen(),
	}
	return r, nil
}

// Driver returns the underlying Driver, for callers that need to poll it
// directly (e.g. a resize-notification hook installed on a TermDriver).
func (r *Root) Driver() Driver { return r.driver }

// Logger returns the root's logger.
func (r *Root) Logger() Logger { return r.logger }

// HandleResize updates the root's own geometry to match a new terminal
// size, firing on_geom_changed if it actually changed.
func (r *Root) HandleResize(lines, cols int) error {
	return r.ChangeGeometry(0, 0, lines, cols)
}

// Dispatch routes a decoded input event (KeyEvent or MouseEvent) into the
// window tree, returning whether anything claimed it.
func (r *Root) Dispatch(ev any) bool {
	switch e := ev.(type) {
	case KeyEvent:
		return r.Window.HandleKey(e)
	case MouseEvent:
		return r.Window.HandleMouse(e)
	default:
		return false
	}
}

// PostKey injects an already-decoded key event at the root, exactly as if
// it had arrived from a real input source. Decoding terminal bytes into
// KeyEvent is out of this module's scope; PostKey is the seam tests and the
// demo command use to drive input instead.
func (r *Root) PostKey(ev KeyEvent) bool { return r.Window.HandleKey(ev) }

// PostMouse injects an already-decoded mouse event at the root, in absolute
// (root-space) coordinates.
func (r *Root) PostMouse(ev MouseEvent) bool { return r.Window.HandleMouse(ev) }

// Later enqueues a zero-argument task to run on the next RunPending call
// (conventionally, just before the next input-polling round). Tasks run in
// the order they were enqueued.
func (r *Root) Later(task func()) {
	r.pending = append(r.pending, task)
}

// RunPending executes and clears every task enqueued via Later. Tasks
// enqueued by a running task are deferred to the *next* RunPending call,
// not appended to the batch currently executing.
func (r *Root) RunPending() {
	tasks := r.pending
	r.pending = nil
	for _, t := range tasks {
		t()
	}
}

// scheduleExpose is the redraw-coalescing use of Later described in §4.7:
// however many windows call Expose in a single round, only one flush task
// is enqueued, and it runs the whole damage cascade once, then restores the
// cursor and flushes the driver.
func (r *Root) scheduleExpose() {
	if r.exposeScheduled {
		return
	}
	r.exposeScheduled = true
	r.Later(func() {
		r.exposeScheduled = false
		r.Window.firePass()
		if err := r.Window.Restore(); err != nil {
			r.logger.Debugf("tickit: restore after expose failed: %v", err)
		}
	})
}

// driverGoto moves the real cursor, skipping the call entirely if it's
// already there (the same minimal-diff discipline RenderBuffer.Flush
// applies to the cell grid, applied here to Window's direct-to-driver
// writes).
func (r *Root) driverGoto(line, col int) error {
	if r.physValid && r.physLine == line && r.physCol == col {
		return nil
	}
	if err := r.driver.Goto(line, col); err != nil {
		return err
	}
	r.physLine, r.physCol, r.physValid = line, col, true
	return nil
}

func (r *Root) driverPrint(s string, pen ImmutablePen, atLine, atCol int) error {
	if err := r.driverGoto(atLine, atCol); err != nil {
		return err
	}
	if err := r.driver.Print(s, pen); err != nil {
		r.physValid = false
		return err
	}
	w, ok := TextWidth(s)
	if !ok {
		r.physValid = false
		return nil
	}
	r.physCol += w
	return nil
}

func (r *Root) driverErase(n int, pen ImmutablePen, atLine, atCol int) error {
	if err := r.driverGoto(atLine, atCol); err != nil {
		return err
	}
	if err := r.driver.EraseCh(n, pen); err != nil {
		r.physValid = false
		return err
	}
	r.physCol += n
	return nil
}
