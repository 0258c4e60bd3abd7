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
	"errors"
	"testing"
)

func TestNewRectRejectsBadGeometry(t *testing.T) {
	cases := []struct {
		name                    string
		top, left, lines, cols int
	}{
		{"negative top", -1, 0, 1, 1},
		{"negative left", 0, -1, 1, 1},
		{"zero lines", 0, 0, 0, 1},
		{"zero cols", 0, 0, 1, 0},
		{"negative lines", 0, 0, -1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewRect(c.top, c.left, c.lines, c.cols); !errors.Is(err, ErrNegativeGeometry) {
				t.Fatalf("NewRect(%d,%d,%d,%d) = %v, want ErrNegativeGeometry", c.top, c.left, c.lines, c.cols, err)
			}
		})
	}
}

func TestRectSelfIntersectContainsSubtract(t *testing.T) {
	r := MustRect(2, 3, 4, 5)
	if got, ok := r.Intersect(r); !ok || got != r {
		t.Fatalf("r.Intersect(r) = %+v,%v, want %+v,true", got, ok, r)
	}
	if !r.Contains(r) {
		t.Fatalf("r.Contains(r) = false, want true")
	}
	if got := r.Subtract(r); got != nil {
		t.Fatalf("r.Subtract(r) = %+v, want nil", got)
	}
}

func TestRectTranslateRoundTrip(t *testing.T) {
	r := MustRect(2, 3, 4, 5)
	got := r.Translate(7, -2).Translate(-7, 2)
	if got != r {
		t.Fatalf("translate round trip = %+v, want %+v", got, r)
	}
}

func TestRectSubtractHole(t *testing.T) {
	outer := MustRect(0, 0, 10, 10)
	hole := MustRect(3, 3, 2, 2)
	pieces := outer.Subtract(hole)
	if len(pieces) != 4 {
		t.Fatalf("len(pieces) = %d, want 4", len(pieces))
	}
	var area int
	for _, p := range pieces {
		area += p.Lines * p.Cols
	}
	if want := outer.Lines*outer.Cols - hole.Lines*hole.Cols; area != want {
		t.Fatalf("area = %d, want %d", area, want)
	}
}

func TestRectAddAdjacentStrips(t *testing.T) {
	a := MustRect(0, 0, 3, 3)
	b := MustRect(0, 3, 3, 3)
	got := a.Add(b)
	want := MustRect(0, 0, 3, 6)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Add = %+v, want [%+v]", got, want)
	}
}
