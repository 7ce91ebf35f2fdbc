// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "Empty",
			source: "",
			want:   nil,
		},
		{
			name:   "Single",
			source: "FROM a",
			want:   []string{"FROM a"},
		},
		{
			name:   "Multiple",
			source: "FROM a;\nROW b = 1;\n",
			want:   []string{"FROM a", "\nROW b = 1"},
		},
		{
			name:   "SemicolonInString",
			source: `ROW a = "x;y"; ROW b = """;"""`,
			want:   []string{`ROW a = "x;y"`, ` ROW b = """;"""`},
		},
		{
			name:   "SemicolonInQuotedIdentifier",
			source: "ROW `a;b` = 1",
			want:   []string{"ROW `a;b` = 1"},
		},
		{
			name:   "SemicolonInComments",
			source: "FROM a // x;y\n| LIMIT 1 /* ; */;",
			want:   []string{"FROM a // x;y\n| LIMIT 1 /* ; */"},
		},
		{
			name:   "CommentOnlyStatement",
			source: "FROM a; // done\n",
			want:   []string{"FROM a"},
		},
		{
			name:   "EscapedQuote",
			source: `ROW a = "\";"; ROW b`,
			want:   []string{`ROW a = "\";"`, " ROW b"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SplitStatements(test.source)
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("SplitStatements(%q) (-want +got):\n%s", test.source, diff)
			}
		})
	}
}
