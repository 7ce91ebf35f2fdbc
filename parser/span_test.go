// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import "testing"

func TestSpan(t *testing.T) {
	tests := []struct {
		span   Span
		valid  bool
		len    int
		string string
	}{
		{
			span:   newSpan(0, 0),
			valid:  true,
			len:    0,
			string: "[0,0)",
		},
		{
			span:   newSpan(-1, 0),
			valid:  false,
			len:    0,
			string: "[-1,0)",
		},
		{
			span:   newSpan(0, 1),
			valid:  true,
			len:    1,
			string: "[0,1)",
		},
		{
			span:   newSpan(1, 0),
			valid:  false,
			len:    0,
			string: "[1,0)",
		},
		{
			span:   newSpan(5, 7),
			valid:  true,
			len:    2,
			string: "[5,7)",
		},
	}

	t.Run("IsValid", func(t *testing.T) {
		for _, test := range tests {
			if got := test.span.IsValid(); got != test.valid {
				t.Errorf("(%#v).IsValid() = %t; want %t", test.span, got, test.valid)
			}
		}
	})

	t.Run("Len", func(t *testing.T) {
		for _, test := range tests {
			if got := test.span.Len(); got != test.len {
				t.Errorf("(%#v).Len() = %d; want %d", test.span, got, test.len)
			}
		}
	})

	t.Run("String", func(t *testing.T) {
		for _, test := range tests {
			if got := test.span.String(); got != test.string {
				t.Errorf("(%#v).String() = %q; want %q", test.span, got, test.string)
			}
		}
	})
}

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		span1 Span
		span2 Span
		want  bool
	}{
		{newSpan(0, 3), newSpan(2, 5), true},
		{newSpan(0, 3), newSpan(3, 5), true},
		{newSpan(0, 3), newSpan(4, 5), false},
		{newSpan(2, 2), newSpan(2, 2), true},
		{newSpan(2, 2), newSpan(0, 5), true},
		{nullSpan(), newSpan(0, 5), false},
	}
	for _, test := range tests {
		if got := test.span1.Overlaps(test.span2); got != test.want {
			t.Errorf("%v.Overlaps(%v) = %t; want %t", test.span1, test.span2, got, test.want)
		}
		if got := test.span2.Overlaps(test.span1); got != test.want {
			t.Errorf("%v.Overlaps(%v) = %t; want %t", test.span2, test.span1, got, test.want)
		}
	}
}

func TestUnionSpans(t *testing.T) {
	tests := []struct {
		spans []Span
		want  Span
	}{
		{spans: nil, want: nullSpan()},
		{spans: []Span{nullSpan(), nullSpan()}, want: nullSpan()},
		{spans: []Span{newSpan(4, 6)}, want: newSpan(4, 6)},
		{spans: []Span{newSpan(4, 6), nullSpan(), newSpan(1, 2)}, want: newSpan(1, 6)},
		{spans: []Span{newSpan(1, 9), newSpan(3, 4)}, want: newSpan(1, 9)},
	}
	for _, test := range tests {
		if got := UnionSpans(test.spans...); got != test.want {
			t.Errorf("UnionSpans(%v) = %v; want %v", test.spans, got, test.want)
		}
	}
}

func TestPosition(t *testing.T) {
	const query = "FROM a\n| WHERE\tx"
	tests := []struct {
		pos      int
		wantLine int
		wantCol  int
	}{
		{pos: 0, wantLine: 1, wantCol: 1},
		{pos: 5, wantLine: 1, wantCol: 6},
		{pos: 7, wantLine: 2, wantCol: 1},
		{pos: 9, wantLine: 2, wantCol: 3},
		{pos: 15, wantLine: 2, wantCol: 9},
		{pos: 100, wantLine: 2, wantCol: 10},
	}
	for _, test := range tests {
		line, col := Position(query, test.pos)
		if line != test.wantLine || col != test.wantCol {
			t.Errorf("Position(%q, %d) = %d, %d; want %d, %d", query, test.pos, line, col, test.wantLine, test.wantCol)
		}
	}
}
