// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"testing"
)

func TestQuoteIdString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"a", "a"},
		{"a_1", "a_1"},
		{"_a", "_a"},
		{"@timestamp", "@timestamp"},
		{"_", "`_`"},
		{"1a", "`1a`"},
		{"a b", "`a b`"},
		{"a`b", "`a``b`"},
		{"", "``"},
	}
	for _, test := range tests {
		got := quoteIdString(test.s)
		if got != test.want {
			t.Errorf("quoteIdString(%q) = %q; want %q", test.s, got, test.want)
		}
		if round := unquoteIdString(got); got[0] == '`' && round != test.s {
			t.Errorf("unquoteIdString(%q) = %q; want %q", got, round, test.s)
		}
	}
}

func TestUnquoteIdString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"`a`", "a"},
		{"`a``b`", "a`b"},
		{"````", "`"},
		{"`a b`", "a b"},
	}
	for _, test := range tests {
		if got := unquoteIdString(test.s); got != test.want {
			t.Errorf("unquoteIdString(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestQuoteQualifiedName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"host", "host"},
		{"host.name", "host.name"},
		{"host.full name", "host.`full name`"},
	}
	for _, test := range tests {
		if got := quoteQualifiedName(test.name); got != test.want {
			t.Errorf("quoteQualifiedName(%q) = %q; want %q", test.name, got, test.want)
		}
	}
}

func TestUnquoteString(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `""`, want: ""},
		{raw: `"abc"`, want: "abc"},
		{raw: `"a\tb\nc\"d\\e"`, want: "a\tb\nc\"d\\e"},
		{raw: `"""a "quoted" \n"""`, want: `a "quoted" \n`},
		{raw: `abc`, wantErr: true},
		{raw: `"""abc`, wantErr: true},
	}
	for _, test := range tests {
		got, err := unquoteString(test.raw)
		if test.wantErr {
			if err == nil {
				t.Errorf("unquoteString(%q) = %q, <nil>; want error", test.raw, got)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Errorf("unquoteString(%q) = %q, %v; want %q, <nil>", test.raw, got, err, test.want)
		}
	}
}
