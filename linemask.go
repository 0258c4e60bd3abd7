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

// Direction identifies one of a line-drawing cell's four borders.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// LineStyle is the thickness (or absence) of a line segment at one
// direction of a cell.
type LineStyle int

const (
	NoLine LineStyle = iota
	LineSingle
	LineDouble
	LineThick
)

// LineMask is an 8-bit value with four 2-bit fields, one per Direction,
// each holding a LineStyle. The bit layout (2 bits per direction, ordered
// North, East, South, West from the low bits up) is an implementation
// convention; only LineMaskTable's codepoint mapping depends on it.
type LineMask uint8

func dirShift(d Direction) uint { return uint(d) * 2 }

// Style returns the style of mask's d border.
func (m LineMask) Style(d Direction) LineStyle {
	return LineStyle((m >> dirShift(d)) & 0x3)
}

// WithStyle returns a copy of m with d's border set to s.
func (m LineMask) WithStyle(d Direction, s LineStyle) LineMask {
	shift := dirShift(d)
	m &^= LineMask(0x3 << shift)
	m |= LineMask(s) << shift
	return m
}

// MergeLineMask combines an existing mask with a newly-drawn one: per
// direction, new's style wins unless new is NoLine there, in which case
// old's style shows through (spec.md §4.4 "Merging two masks").
func MergeLineMask(old, new LineMask) LineMask {
	var out LineMask
	for _, d := range [...]Direction{North, East, South, West} {
		ns := new.Style(d)
		if ns != NoLine {
			out = out.WithStyle(d, ns)
		} else {
			out = out.WithStyle(d, old.Style(d))
		}
	}
	return out
}

func mkMask(n, e, s, w LineStyle) LineMask {
	var m LineMask
	m = m.WithStyle(North, n)
	m = m.WithStyle(East, e)
	m = m.WithStyle(South, s)
	m = m.WithStyle(West, w)
	return m
}

// lineMaskSeedTable is the literal source table: specific (direction,
// style) combinations from the standard Unicode box-drawing block
// (U+2500-U+257F) with a defined glyph. Combinations Unicode doesn't give
// a dedicated glyph for (e.g. a lone double-style stub, or a double+thick
// mix) are deliberately absent here and resolved by buildLineMaskTable's
// fallback passes instead.
func lineMaskSeedTable() map[LineMask]rune {
	const (
		n = NoLine
		s1 = LineSingle
		d = LineDouble
		t = LineThick
	)
	seed := map[LineMask]rune{
		mkMask(n, n, n, n): ' ',

		// Pure single ("light"), all 16 combinations.
		mkMask(s1, n, n, n): '╵',
		mkMask(n, s1, n, n): '╶',
		mkMask(n, n, s1, n): '╷',
		mkMask(n, n, n, s1): '╴',
		mkMask(s1, s1, n, n): '└',
		mkMask(s1, n, s1, n): '│',
		mkMask(s1, n, n, s1): '┘',
		mkMask(n, s1, s1, n): '┌',
		mkMask(n, s1, n, s1): '─',
		mkMask(n, n, s1, s1): '┐',
		mkMask(s1, s1, s1, n): '├',
		mkMask(s1, s1, n, s1): '┴',
		mkMask(s1, n, s1, s1): '┤',
		mkMask(n, s1, s1, s1): '┬',
		mkMask(s1, s1, s1, s1): '┼',

		// Pure thick ("heavy"), all 16 combinations.
		mkMask(t, n, n, n): '╹',
		mkMask(n, t, n, n): '╺',
		mkMask(n, n, t, n): '╻',
		mkMask(n, n, n, t): '╸',
		mkMask(t, t, n, n): '┗',
		mkMask(t, n, t, n): '┃',
		mkMask(t, n, n, t): '┛',
		mkMask(n, t, t, n): '┏',
		mkMask(n, t, n, t): '━',
		mkMask(n, n, t, t): '┓',
		mkMask(t, t, t, n): '┣',
		mkMask(t, t, n, t): '┻',
		mkMask(t, n, t, t): '┫',
		mkMask(n, t, t, t): '┳',
		mkMask(t, t, t, t): '╋',

		// Pure double, the 11 junctions Unicode defines (no lone double
		// stubs exist in the block).
		mkMask(n, d, n, d): '═',
		mkMask(d, n, d, n): '║',
		mkMask(n, d, d, n): '╔',
		mkMask(n, n, d, d): '╗',
		mkMask(d, d, n, n): '╚',
		mkMask(d, n, n, d): '╝',
		mkMask(d, d, d, n): '╠',
		mkMask(d, n, d, d): '╣',
		mkMask(n, d, d, d): '╦',
		mkMask(d, d, n, d): '╩',
		mkMask(d, d, d, d): '╬',

		// Mixed single/double corners and tees (U+2550-U+256B).
		mkMask(n, d, s1, n): '╒',
		mkMask(n, s1, d, n): '╓',
		mkMask(n, n, s1, d): '╕',
		mkMask(n, n, d, s1): '╖',
		mkMask(s1, d, n, n): '╘',
		mkMask(d, s1, n, n): '╙',
		mkMask(s1, n, n, d): '╛',
		mkMask(d, n, n, s1): '╜',
		mkMask(s1, d, s1, n): '╞',
		mkMask(d, s1, d, n): '╟',
		mkMask(s1, n, s1, d): '╡',
		mkMask(d, n, d, s1): '╢',
		mkMask(n, d, s1, d): '╤',
		mkMask(n, s1, d, s1): '╥',
		mkMask(s1, d, n, d): '╧',
		mkMask(d, s1, n, s1): '╨',
		mkMask(s1, d, s1, d): '╪',
		mkMask(d, s1, d, s1): '╫',
	}
	return seed
}

// downgrade returns mask with every direction currently set to `from`
// replaced by `to`.
func downgrade(mask LineMask, from, to LineStyle) LineMask {
	for _, d := range [...]Direction{North, East, South, West} {
		if mask.Style(d) == from {
			mask = mask.WithStyle(d, to)
		}
	}
	return mask
}

// buildLineMaskTable constructs the full 256-entry mask→codepoint table by
// seeding it with lineMaskSeedTable and then, for any mask the seed table
// lacks, applying the fallback rules of spec.md §4.4 in order:
//
//  1. Downgrade any thick-styled direction to single and look again.
//  2. Downgrade any remaining double-styled direction to single and look
//     again (this leaves only None/Single directions, which
//     lineMaskSeedTable defines for all 16 combinations, so this pass
//     always succeeds).
//
// This is run once, at package init, precisely so completeness is proven
// up front rather than discovered as a runtime RenderCapacityFailure (see
// DESIGN.md's Open Question decision).
func buildLineMaskTable() [256]rune {
	seed := lineMaskSeedTable()
	var table [256]rune
	for m := 0; m < 256; m++ {
		mask := LineMask(m)
		if r, ok := seed[mask]; ok {
			table[m] = r
			continue
		}
		step1 := downgrade(mask, LineThick, LineSingle)
		if r, ok := seed[step1]; ok {
			table[m] = r
			continue
		}
		step2 := downgrade(step1, LineDouble, LineSingle)
		r, ok := seed[step2]
		if !ok {
			panic(fmt.Sprintf("tickit: line mask table incomplete for mask %#02x", m))
		}
		table[m] = r
	}
	return table
}

var lineMaskTable = buildLineMaskTable()

// Glyph returns the codepoint to print for a fully-resolved line mask. It
// always succeeds: buildLineMaskTable has already proven every mask maps
// to a glyph. RenderCapacityFailure (ErrRenderCapacity) would only arise
// from a future bug in the table construction above, not from any runtime
// input — see §7.
func (m LineMask) Glyph() rune { return lineMaskTable[m] }
