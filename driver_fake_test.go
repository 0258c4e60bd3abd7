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

import "fmt"

// fakeDriver is an in-memory Driver that records every call as a short
// string, so tests can assert on the exact sequence of terminal operations
// a Window or RenderBuffer produced.
type fakeDriver struct {
	lines, cols int
	calls       []string
	scrollErr   error
}

func newFakeDriver(lines, cols int) *fakeDriver {
	return &fakeDriver{lines: lines, cols: cols}
}

func (d *fakeDriver) Goto(line, col int) error {
	d.calls = append(d.calls, fmt.Sprintf("goto(%d,%d)", line, col))
	return nil
}

func (d *fakeDriver) Print(s string, pen ImmutablePen) error {
	d.calls = append(d.calls, fmt.Sprintf("print(%q)", s))
	return nil
}

func (d *fakeDriver) EraseCh(n int, pen ImmutablePen) error {
	d.calls = append(d.calls, fmt.Sprintf("erasech(%d)", n))
	return nil
}

func (d *fakeDriver) Clear(pen ImmutablePen) error {
	d.calls = append(d.calls, "clear()")
	return nil
}

func (d *fakeDriver) ScrollRect(r Rect, dy, dx int) error {
	if d.scrollErr != nil {
		return d.scrollErr
	}
	d.calls = append(d.calls, fmt.Sprintf("scrollrect(%+v,%d,%d)", r, dy, dx))
	return nil
}

func (d *fakeDriver) SetMode(name string, enabled bool) error {
	d.calls = append(d.calls, fmt.Sprintf("setmode(%s,%v)", name, enabled))
	return nil
}

func (d *fakeDriver) SetCtl(name string, value any) error {
	d.calls = append(d.calls, fmt.Sprintf("setctl(%s,%v)", name, value))
	return nil
}

func (d *fakeDriver) GetSize() (int, int, error) { return d.lines, d.cols, nil }

func (d *fakeDriver) Flush() error {
	d.calls = append(d.calls, "flush()")
	return nil
}
