// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDissectKeys(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
		err     string
	}{
		{pattern: "%{a} %{b}", want: []string{"a", "b"}},
		{pattern: "%{a->} %{b}", want: []string{"a", "b"}},
		{pattern: "%{} %{?skip} %{b}", want: []string{"b"}},
		{pattern: "%{+a} %{+a/2} %{b} %{a}", want: []string{"a", "b"}},
		{pattern: "[%{ts}] %{host.name}: %{msg}", want: []string{"ts", "host.name", "msg"}},
		{pattern: "no keys", err: "Invalid pattern for dissect: [no keys]"},
		{pattern: "%{+}", err: "Invalid pattern for dissect: [%{+}]"},
		{pattern: "%{*name} %{&name}", err: "Reference keys not supported in dissect patterns: [%{*name}]"},
	}
	for _, test := range tests {
		got, err := parseDissectKeys(test.pattern)
		if test.err != "" {
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("parseDissectKeys(%q) = %q, %v; want error %q", test.pattern, got, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDissectKeys(%q): %v", test.pattern, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("parseDissectKeys(%q) (-want +got):\n%s", test.pattern, diff)
		}
	}
}
