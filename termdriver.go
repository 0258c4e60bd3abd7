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
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	gencoding "github.com/gdamore/encoding"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// TermDriver is the reference Driver: a raw-mode ANSI/SGR terminal sink
// built directly on the teacher's own dependency stack (golang.org/x/term
// for raw mode, golang.org/x/sys/unix for the window-size ioctl and
// SIGWINCH, github.com/gdamore/encoding + golang.org/x/text/transform for
// non-UTF-8 locale output, github.com/lucasb-eyer/go-colorful for
// palette-downsampling on terminals that can't do 256 colors).
type TermDriver struct {
	in, out *os.File
	w       *bufio.Writer

	mu sync.Mutex

	oldState *term.State

	encoder transform.Transformer // nil when the locale is already UTF-8

	colorMode colorMode

	sigwinch chan os.Signal
	onResize func(lines, cols int)
	stop     chan struct{}

	curFg, curBg   int
	curFgSet       bool
	curBgSet       bool
	curBold        bool
	curUnderline   bool
	curItalic      bool
	curReverse     bool
	curStrike      bool
	styleValid     bool
}

type colorMode int

const (
	colorModeTrueColorIdx colorMode = iota // no downsampling: 0-15 as basic/bright SGR codes, 16-255 as SGR 38/48;5;N
	colorMode8                             // downsample everything to the 8 basic colors
)

// NewTermDriver opens a reference driver against the given terminal files
// (typically os.Stdin/os.Stdout), putting the terminal into raw mode. The
// caller must call Close to restore the terminal.
func NewTermDriver(in, out *os.File) (*TermDriver, error) {
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, err
	}
	d := &TermDriver{
		in:       in,
		out:      out,
		w:        bufio.NewWriterSize(out, 64*1024),
		oldState: oldState,
		stop:     make(chan struct{}),
	}
	d.encoder = localeEncoder()
	d.colorMode = detectColorMode()

	d.sigwinch = make(chan os.Signal, 1)
	notifyWinch(d.sigwinch)

	return d, nil
}

// SetResizeHandler installs fn to be called (from an internal goroutine)
// whenever the terminal reports a SIGWINCH. Not part of the Driver
// interface: Root does not call it; a program holding the TermDriver (such
// as cmd/tickitdemo) installs a handler that re-measures and re-flushes.
func (d *TermDriver) SetResizeHandler(fn func(lines, cols int)) {
	d.onResize = fn
	go d.watchResize()
}

func (d *TermDriver) watchResize() {
	for {
		select {
		case <-d.sigwinch:
			if d.onResize == nil {
				continue
			}
			if lines, cols, err := d.GetSize(); err == nil {
				d.onResize(lines, cols)
			}
		case <-d.stop:
			return
		}
	}
}

// Close restores the terminal's original mode and stops the resize watcher.
func (d *TermDriver) Close() error {
	close(d.stop)
	signal.Stop(d.sigwinch)
	return term.Restore(int(d.in.Fd()), d.oldState)
}

func (d *TermDriver) writeString(s string) error {
	if d.encoder == nil {
		_, err := d.w.WriteString(s)
		return err
	}
	out, _, err := transform.String(d.encoder, s)
	if err != nil {
		return err
	}
	_, err = d.w.WriteString(out)
	return err
}

func (d *TermDriver) writeEscape(format string, args ...any) error {
	_, err := fmt.Fprintf(d.w, format, args...)
	return err
}

// Goto implements Driver.
func (d *TermDriver) Goto(line, col int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeEscape("\x1b[%d;%dH", line+1, col+1)
}

// Print implements Driver.
func (d *TermDriver) Print(s string, pen ImmutablePen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.applyPen(pen); err != nil {
		return err
	}
	return d.writeString(s)
}

// EraseCh implements Driver.
func (d *TermDriver) EraseCh(n int, pen ImmutablePen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.applyPen(pen); err != nil {
		return err
	}
	return d.writeEscape("\x1b[%dX", n)
}

// Clear implements Driver.
func (d *TermDriver) Clear(pen ImmutablePen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.applyPen(pen); err != nil {
		return err
	}
	return d.writeEscape("\x1b[2J\x1b[H")
}

// ScrollRect implements Driver. Only pure vertical scrolls of full-width
// rects, within a DECSTBM scroll region, are attempted; anything else falls
// back to a repaint by reporting ErrScrollUnsupported.
func (d *TermDriver) ScrollRect(r Rect, dy, dx int) error {
	if dx != 0 || dy == 0 {
		return ErrScrollUnsupported
	}
	if _, cols, err := d.GetSize(); err != nil || r.Left != 0 || r.Cols != cols {
		return ErrScrollUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeEscape("\x1b[%d;%dr", r.Top+1, r.Bottom()); err != nil {
		return err
	}
	defer d.writeEscape("\x1b[r") //nolint:errcheck // best-effort region reset
	if dy > 0 {
		return d.writeEscape("\x1b[%dS", dy)
	}
	return d.writeEscape("\x1b[%dT", -dy)
}

// SetMode implements Driver.
func (d *TermDriver) SetMode(name string, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	code, ok := modeCodes[name]
	if !ok {
		return nil
	}
	if enabled {
		return d.writeEscape("\x1b[?%dh", code)
	}
	return d.writeEscape("\x1b[?%dl", code)
}

var modeCodes = map[string]int{
	"cursor":    25,
	"mouse":     1000,
	"mouse-sgr": 1006,
	"altscreen": 1049,
}

// SetCtl implements Driver. Only "cursorstyle" (an int, DECSCUSR shape) is
// currently recognized; unrecognized names are ignored.
func (d *TermDriver) SetCtl(name string, value any) error {
	if name != "cursorstyle" {
		return nil
	}
	shape, ok := value.(int)
	if !ok {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeEscape("\x1b[%d q", shape)
}

// GetSize implements Driver. $LINES/$COLUMNS override the ioctl result when
// both are set to positive integers.
func (d *TermDriver) GetSize() (lines, cols int, err error) {
	if l, c, ok := sizeFromEnv(); ok {
		return l, c, nil
	}
	ws, err := unix.IoctlGetWinsize(int(d.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Row), int(ws.Col), nil
}

func notifyWinch(ch chan os.Signal) {
	signal.Notify(ch, syscall.SIGWINCH)
}

func sizeFromEnv() (lines, cols int, ok bool) {
	l, lerr := strconv.Atoi(os.Getenv("LINES"))
	c, cerr := strconv.Atoi(os.Getenv("COLUMNS"))
	if lerr == nil && cerr == nil && l > 0 && c > 0 {
		return l, c, true
	}
	return 0, 0, false
}

// Flush implements Driver.
func (d *TermDriver) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w.Flush()
}

// ---------- pen / SGR ----------------------------------------------------

func (d *TermDriver) applyPen(pen ImmutablePen) error {
	fg, fgOK := pen.Attr(AttrFg)
	bg, bgOK := pen.Attr(AttrBg)
	bold := pen.HasAttr(AttrBold)
	underline := pen.HasAttr(AttrUnderline)
	italic := pen.HasAttr(AttrItalic)
	reverse := pen.HasAttr(AttrReverse)
	strike := pen.HasAttr(AttrStrike)

	if d.styleValid && fg == d.curFg && fgOK == d.curFgSet && bg == d.curBg && bgOK == d.curBgSet &&
		bold == d.curBold && underline == d.curUnderline && italic == d.curItalic &&
		reverse == d.curReverse && strike == d.curStrike {
		return nil // unchanged since last Print/EraseCh/Clear: skip the SGR reset
	}

	var sgr []string
	sgr = append(sgr, "0") // always reset first; simplest correct strategy
	if bold {
		sgr = append(sgr, "1")
	}
	if italic {
		sgr = append(sgr, "3")
	}
	if underline {
		sgr = append(sgr, "4")
	}
	if reverse {
		sgr = append(sgr, "7")
	}
	if strike {
		sgr = append(sgr, "9")
	}
	if fgOK {
		sgr = append(sgr, sgrColor(fg, 30, d.colorMode))
	}
	if bgOK {
		sgr = append(sgr, sgrColor(bg, 40, d.colorMode))
	}

	if err := d.writeEscape("\x1b[%sm", strings.Join(sgr, ";")); err != nil {
		return err
	}

	d.curFg, d.curFgSet = fg, fgOK
	d.curBg, d.curBgSet = bg, bgOK
	d.curBold, d.curUnderline, d.curItalic, d.curReverse, d.curStrike = bold, underline, italic, reverse, strike
	d.styleValid = true
	return nil
}

// sgrColor renders palette index idx (0-255, tickit's canonical color
// encoding) as an SGR color parameter, downsampling to the 8 basic colors
// first if the detected terminal can't do 256-color output.
func sgrColor(idx int, base int, mode colorMode) string {
	if mode == colorMode8 {
		idx = downsampleTo8(idx)
	}
	if idx < 8 {
		return strconv.Itoa(base + idx)
	}
	if idx < 16 {
		return strconv.Itoa(base + 60 + (idx - 8))
	}
	return fmt.Sprintf("%d;5;%d", base+8, idx)
}

// downsampleTo8 maps any xterm-256 palette index to its nearest of the 8
// basic ANSI colors by CIE Lab distance (go-colorful), used on terminals
// (e.g. the Linux console, some serial/legacy emulators) that can't render
// the 256-color or bright-16 palettes at all.
func downsampleTo8(idx int) int {
	r, g, b := xterm256ToRGB(idx)
	target, _ := colorful.MakeColor(rgbColor{r, g, b})
	best, bestDist := 0, 0.0
	for i := 0; i < 8; i++ {
		br, bg, bb := xterm256ToRGB(i)
		c, _ := colorful.MakeColor(rgbColor{br, bg, bb})
		dist := target.DistanceLab(c)
		if i == 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// rgbColor adapts a trio of uint8 channels to color.Color for go-colorful's
// MakeColor, avoiding a dependency on image/color's 16-bit-per-channel
// NRGBA conversion ceremony for a simple byte triple.
type rgbColor struct{ r, g, b uint8 }

func (c rgbColor) RGBA() (r, g, b, a uint32) {
	return uint32(c.r) * 0x101, uint32(c.g) * 0x101, uint32(c.b) * 0x101, 0xffff
}

var ansi16RGB = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// xterm256ToRGB resolves a palette index to its standard xterm RGB value:
// 0-15 basic/bright colors, 16-231 a 6x6x6 color cube, 232-255 a grayscale
// ramp.
func xterm256ToRGB(idx int) (r, g, b uint8) {
	switch {
	case idx < 16:
		c := ansi16RGB[idx]
		return c[0], c[1], c[2]
	case idx < 232:
		idx -= 16
		steps := [6]uint8{0, 95, 135, 175, 215, 255}
		return steps[(idx/36)%6], steps[(idx/6)%6], steps[idx%6]
	default:
		v := uint8(8 + (idx-232)*10)
		return v, v, v
	}
}

// ---------- locale / charset ---------------------------------------------

// localeEncoder returns a transformer from UTF-8 to the locale's native
// charset, or nil if the locale is already UTF-8 (the overwhelmingly common
// case, and the only one that needs no transcoding at all).
func localeEncoder() transform.Transformer {
	charset := detectCharset()
	if charset == "" || strings.EqualFold(charset, "UTF-8") {
		return nil
	}
	enc := gencoding.GetEncoding(charset)
	if enc == nil {
		return nil
	}
	return newEncoderTransformer(enc)
}

func newEncoderTransformer(enc encoding.Encoding) transform.Transformer {
	return enc.NewEncoder()
}

// detectCharset extracts the charset portion of LC_ALL/LC_CTYPE/LANG
// (e.g. "ja_JP.eucJP" -> "eucJP"), matching locale env var conventions.
func detectCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, '.'); i >= 0 {
			return v[i+1:]
		}
	}
	return ""
}

// detectColorMode inspects $TERM (and $COLORTERM) to decide whether to emit
// full 256-color SGR sequences or downsample to the 8 basic colors.
func detectColorMode() colorMode {
	term := os.Getenv("TERM")
	if strings.Contains(term, "256color") || os.Getenv("COLORTERM") != "" {
		return colorModeTrueColorIdx
	}
	switch term {
	case "xterm", "screen", "tmux", "vt100", "vt220":
		return colorModeTrueColorIdx
	}
	return colorMode8
}
