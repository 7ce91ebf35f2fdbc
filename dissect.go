// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package esql

import (
	"fmt"
	"regexp"
	"strings"
)

var dissectKey = regexp.MustCompile(`%\{([^}]*)\}`)

// parseDissectKeys returns the names of the columns a dissect pattern extracts,
// in order of first appearance.
//
// A key may be preceded by a modifier:
// "+" appends to a previous key (optionally ordered with a "/n" suffix),
// "?" names a skipped field,
// and "*" and "&" form a reference pair, which is not supported.
// An empty key skips a field.
// A trailing "->" skips repeated delimiters.
func parseDissectKeys(pattern string) ([]string, error) {
	matches := dissectKey.FindAllStringSubmatch(pattern, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("Invalid pattern for dissect: [%s]", pattern)
	}
	var keys []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		key := strings.TrimSuffix(m[1], "->")
		if key == "" {
			continue
		}
		switch key[0] {
		case '?':
			continue
		case '*', '&':
			return nil, fmt.Errorf("Reference keys not supported in dissect patterns: [%s]", m[0])
		case '+':
			key = key[1:]
			if i := strings.LastIndexByte(key, '/'); i >= 0 {
				key = key[:i]
			}
		}
		if key == "" {
			return nil, fmt.Errorf("Invalid pattern for dissect: [%s]", pattern)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}
