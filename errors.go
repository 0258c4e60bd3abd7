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

import "errors"

// Error taxonomy per the error handling design: ProgrammerError,
// IllegalText, RenderCapacityFailure, ScrollUnsupported, and Detached are
// all represented as sentinel errors so callers can errors.Is against them.
// None of these ever panic across an exported API boundary; Debug gates a
// small number of assertion paths called out explicitly by the spec.

// Debug enables assertion-style checks that the spec calls out as
// debug-build-only. It gates one check: RectSet's sortedness and
// non-overlap assertion after mutation. Line-mask table completeness is not
// gated by Debug; buildLineMaskTable checks it unconditionally at package
// init. Debug exists so tests can turn the RectSet check on cheaply.
var Debug = false

var (
	// ErrNegativeGeometry is a ProgrammerError: a Rect or Window was asked
	// for zero or negative lines/cols, or negative top/left.
	ErrNegativeGeometry = errors.New("tickit: negative or zero geometry")

	// ErrNotMonotonic is a ProgrammerError: chars2cols/cols2chars received
	// a non strictly-increasing index sequence.
	ErrNotMonotonic = errors.New("tickit: input sequence is not strictly increasing")

	// ErrOutOfBounds is a ProgrammerError: goto or scrollrect referenced a
	// position or rectangle outside the owning surface.
	ErrOutOfBounds = errors.New("tickit: position or rectangle out of bounds")

	// ErrIllegalText marks a string containing a surrogate, noncharacter,
	// or other disallowed codepoint.
	ErrIllegalText = errors.New("tickit: illegal codepoint in text")

	// ErrRenderCapacity marks a line mask with no table entry and no
	// fallback. Expected to be unreachable; see buildLineMaskTable.
	ErrRenderCapacity = errors.New("tickit: no glyph for line mask")

	// ErrScrollUnsupported is returned by a Driver when the requested
	// scroll cannot be performed. Window.ScrollRect does not pass it on; it
	// reports such a failure as (false, nil).
	ErrScrollUnsupported = errors.New("tickit: scroll not supported")

	// ErrDetached marks an operation attempted on a closed Window.
	ErrDetached = errors.New("tickit: window is detached")
)
