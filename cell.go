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

// cellKind tags which of the six cell states (spec.md §3 "Cell") a grid
// cell currently holds.
type cellKind int

const (
	cellSkip cellKind = iota
	cellErase
	cellText
	cellChar
	cellLine
	cellContinuation
)

// cell is one character-sized location in a RenderBuffer's grid. Exactly
// one of its payload fields is meaningful, selected by kind — a tagged
// union in spirit, expressed as a flat struct rather than an interface
// since cells are created and discarded in the millions per flush and
// should not allocate.
type cell struct {
	kind cellKind

	pen ImmutablePen

	// cellText: index into RenderBuffer.storedText, the byte offset of the
	// rune this cell represents within that string, and the column width
	// of that rune (1 normally, 2 for a wide glyph's primary cell).
	textIdx    int
	byteOffset int
	width      int

	// cellChar: a single literal codepoint (also used for line-drawing
	// output once resolved to a glyph).
	r rune

	// cellLine: the accumulated line-segment mask at this cell.
	mask LineMask

	// cellContinuation: the column where the wide glyph occupying this
	// cell begins.
	contStart int
}

func skipCell() cell { return cell{kind: cellSkip} }

func eraseCell(pen ImmutablePen) cell { return cell{kind: cellErase, pen: pen} }

func charCell(r rune, width int, pen ImmutablePen) cell {
	return cell{kind: cellChar, r: r, width: width, pen: pen}
}

func textCell(idx, byteOffset, width int, pen ImmutablePen) cell {
	return cell{kind: cellText, textIdx: idx, byteOffset: byteOffset, width: width, pen: pen}
}

func continuationCell(startCol int) cell {
	return cell{kind: cellContinuation, contStart: startCol}
}

func lineCell(mask LineMask, pen ImmutablePen) cell {
	return cell{kind: cellLine, mask: mask, pen: pen}
}

// isWidePrimary reports whether c is a Text or Char cell whose glyph spans
// more than one column.
func (c cell) isWidePrimary() bool {
	return (c.kind == cellText || c.kind == cellChar) && c.width > 1
}
