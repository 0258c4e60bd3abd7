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

// Command tickitdemo wires a Root to the reference TermDriver and paints a
// hand-built window layout: a bordered main pane with a title, and a
// floating notification box in the corner that visibly occludes whatever
// is beneath it. Drawing itself goes through a RenderBuffer sized to the
// screen — acquired, drawn into, flushed and played into the Driver on
// every repaint — matching spec.md §2's data flow; the Window tree
// supplies layout and drives repaints through its damage/expose pipeline.
// It exists to exercise the stack end to end by eye, not as part of the
// library's public API.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/tickitgo/tickit"
)

const title = "tickitdemo — press any key to exit"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tickitdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	driver, err := tickit.NewTermDriver(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer driver.Close()

	root, err := tickit.NewRoot(driver, nil)
	if err != nil {
		return err
	}

	notice, err := root.MakeFloat(1, root.Cols()-22, 3, 20)
	if err != nil {
		return err
	}

	// Every repaint, however triggered, acquires one screen-sized
	// RenderBuffer, draws the frame and the float into it, then flushes it
	// straight into the driver — the RenderBuffer is the thing that
	// actually talks to the Driver; on_expose here only decides *when* to
	// repaint, not how.
	repaint := func(*tickit.Window, tickit.Rect) {
		rb, err := tickit.NewRenderBuffer(root.Lines(), root.Cols())
		if err != nil {
			return
		}
		drawFrame(rb, title)

		rb.Save()
		rb.Translate(notice.Top(), notice.Left())
		drawFloatBox(rb, "this covers the frame", notice.Lines(), notice.Cols())
		rb.Restore()

		if err := rb.PlayInto(driver); err != nil {
			return
		}
		driver.Flush()
	}
	root.OnExpose(repaint)

	driver.SetResizeHandler(func(lines, cols int) {
		root.HandleResize(lines, cols)
		root.Expose(tickit.MustRect(0, 0, lines, cols))
		root.RunPending()
	})

	root.Expose(tickit.MustRect(0, 0, root.Lines(), root.Cols()))
	root.RunPending()

	// Input decoding is out of this module's scope (§1/§6); reading one
	// raw byte here is just the demo's own exit trigger, not a feature of
	// the library.
	r := bufio.NewReader(os.Stdin)
	_, err = r.ReadByte()
	return err
}

func drawFrame(rb *tickit.RenderBuffer, title string) {
	lines, cols := rb.Lines(), rb.Cols()
	if lines < 2 || cols < 2 {
		return
	}
	rb.TextAt(0, 0, "┌"+repeat("─", cols-2)+"┐", nil)
	for line := 1; line < lines-1; line++ {
		rb.TextAt(line, 0, "│", nil)
		rb.TextAt(line, cols-1, "│", nil)
	}
	rb.TextAt(lines-1, 0, "└"+repeat("─", cols-2)+"┘", nil)

	if len(title)+4 < cols {
		rb.TextAt(0, 2, " "+title+" ", nil)
	}
}

func drawFloatBox(rb *tickit.RenderBuffer, msg string, lines, cols int) {
	pen := tickit.ImmutablePen{}.WithAttr(tickit.AttrReverse, true)
	for line := 0; line < lines; line++ {
		rb.TextAt(line, 0, padTo(msgLine(line, msg), cols), pen)
	}
}

func msgLine(line int, msg string) string {
	if line == 1 {
		return msg
	}
	return ""
}

func padTo(s string, cols int) string {
	w, ok := tickit.TextWidth(s)
	if !ok || w >= cols {
		return s
	}
	return s + repeat(" ", cols-w)
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
