// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/runreveal/esql/expr"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []*Param
	}{
		{
			name: "Empty",
			data: `[]`,
			want: nil,
		},
		{
			name: "Positional",
			data: `[1, 3000000000, 18446744073709551615, 1.5, "x", true, null]`,
			want: []*Param{
				{Kind: ParamConstant, Value: int32(1), Type: expr.Integer},
				{Kind: ParamConstant, Value: int64(3000000000), Type: expr.Long},
				{Kind: ParamConstant, Value: uint64(18446744073709551615), Type: expr.UnsignedLong},
				{Kind: ParamConstant, Value: 1.5, Type: expr.Double},
				{Kind: ParamConstant, Value: "x", Type: expr.Keyword},
				{Kind: ParamConstant, Value: true, Type: expr.Boolean},
				{Kind: ParamConstant, Value: nil, Type: expr.Null},
			},
		},
		{
			name: "Named",
			data: `[
				// Comments and trailing commas are allowed.
				{"limit": 10},
				{"field": {"identifier": "host.name"}},
				{"fields": {"pattern": "host.*"}},
			]`,
			want: []*Param{
				{Name: "limit", Kind: ParamConstant, Value: int32(10), Type: expr.Integer},
				{Name: "field", Kind: ParamIdentifier, Value: "host.name", Type: expr.Keyword},
				{Name: "fields", Kind: ParamPattern, Value: "host.*", Type: expr.Keyword},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseParams([]byte(test.data))
			require.NoError(t, err)
			if diff := cmp.Diff(test.want, got.List); diff != "" {
				t.Errorf("ParseParams(...).List (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParamsErrors(t *testing.T) {
	tests := []string{
		`{}`,
		`[{"a": 1, "b": 2}]`,
		`[{"1a": 1}]`,
		`[{"a": 1}, {"a": 2}]`,
		`[{"a": {"pattern": "abc"}}]`,
		`[{"a": {"column": "abc"}}]`,
		`[{"a": {"identifier": 1}}]`,
		`[[1, 2]]`,
	}
	for _, data := range tests {
		if got, err := ParseParams([]byte(data)); err == nil {
			t.Errorf("ParseParams(%q) = %v, <nil>; want error", data, got)
		}
	}
}

func TestParamResolver(t *testing.T) {
	params := &Params{List: []*Param{
		{Name: "a", Kind: ParamConstant, Value: int32(1), Type: expr.Integer},
		{Name: "b", Kind: ParamConstant, Value: int32(2), Type: expr.Integer},
	}}

	t.Run("Anonymous", func(t *testing.T) {
		r := newParamResolver("ROW x = ?, y = ?, z = ?", params)
		// Markers resolve by where they are written, not by lookup order.
		p, err := r.resolve("", 15)
		require.NoError(t, err)
		require.Equal(t, "b", p.Name)
		p, err = r.resolve("", 8)
		require.NoError(t, err)
		require.Equal(t, "a", p.Name)
		p, err = r.resolve("", 8)
		require.NoError(t, err)
		require.Equal(t, "a", p.Name)
		_, err = r.resolve("", 22)
		require.ErrorIs(t, err, ErrUnknownParam)
		require.EqualError(t, err, "Not enough actual parameters 2")
	})

	t.Run("Positional", func(t *testing.T) {
		r := newParamResolver("", params)
		p, err := r.resolve("2", 0)
		require.NoError(t, err)
		require.Equal(t, "b", p.Name)
		_, err = r.resolve("3", 0)
		require.EqualError(t, err, "No parameter is defined for position 3, did you mean any position between 1 and 2?")
	})

	t.Run("Named", func(t *testing.T) {
		r := newParamResolver("", params)
		p, err := r.resolve("b", 0)
		require.NoError(t, err)
		require.Equal(t, int32(2), p.Value)
		_, err = r.resolve("c", 0)
		require.EqualError(t, err, "Unknown query parameter [c], did you mean [a]?")
		_, err = r.resolve("other", 0)
		require.EqualError(t, err, "Unknown query parameter [other]")
	})

	t.Run("Mixed", func(t *testing.T) {
		r := newParamResolver("", params)
		_, err := r.resolve("a", 0)
		require.NoError(t, err)
		_, err = r.resolve("1", 0)
		var perr *ParamError
		require.True(t, errors.As(err, &perr))
		require.ErrorIs(t, err, ErrInconsistentParams)
		require.Equal(t,
			"Inconsistent parameter declaration, use one of positional, named or anonymous params but not a combination of named and positional",
			perr.Message)
	})
}

func TestParamString(t *testing.T) {
	require.Equal(t, `"x"`, (&Param{Kind: ParamConstant, Value: "x", Type: expr.Keyword}).String())
	require.Equal(t, "host", (&Param{Kind: ParamIdentifier, Value: "host", Type: expr.Keyword}).String())
}
