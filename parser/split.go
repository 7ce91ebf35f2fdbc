// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import "strings"

// SplitStatements splits a sequence of semicolon-terminated statements.
// Semicolons inside strings, quoted identifiers, and comments
// do not end a statement.
// Statements that contain only whitespace and comments are omitted.
func SplitStatements(source string) []string {
	var statements []string
	start := 0
	for i := 0; i < len(source); {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, `"""`):
			i += skipDelimited(rest[3:], `"""`) + 3
		case rest[0] == '"':
			i += skipString(rest[1:]) + 1
		case rest[0] == '`':
			i += skipDelimited(rest[1:], "`") + 1
		case strings.HasPrefix(rest, "//"):
			i += skipDelimited(rest[2:], "\n") + 2
		case strings.HasPrefix(rest, "/*"):
			i += skipDelimited(rest[2:], "*/") + 2
		case rest[0] == ';':
			statements = appendStatement(statements, source[start:i])
			i++
			start = i
		default:
			i++
		}
	}
	return appendStatement(statements, source[start:])
}

func appendStatement(statements []string, stmt string) []string {
	if len(Scan(stmt)) == 0 {
		return statements
	}
	return append(statements, stmt)
}

// skipDelimited returns the length of s up to and including end,
// or len(s) if s does not contain end.
func skipDelimited(s, end string) int {
	i := strings.Index(s, end)
	if i < 0 {
		return len(s)
	}
	return i + len(end)
}

// skipString returns the length of the rest of a double-quoted string
// including its closing quote.
func skipString(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"', '\n':
			return i + 1
		}
	}
	return len(s)
}
