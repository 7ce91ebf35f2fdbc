// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/kr/pretty"
	"github.com/runreveal/esql/plan"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatGo   = "go"
)

func isFormat(s string) bool {
	return s == formatText || s == formatJSON || s == formatGo
}

// formatPlan renders a plan in the named output format.
func formatPlan(format string, p plan.LogicalPlan) (string, error) {
	switch format {
	case formatText:
		return plan.NormalizeIDs(plan.TreeString(p)), nil
	case formatJSON:
		data, err := json.MarshalIndent(newJSONNode(p), "", "  ")
		if err != nil {
			return "", err
		}
		return plan.NormalizeIDs(string(data)), nil
	case formatGo:
		return pretty.Sprint(p), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// jsonNode is the JSON rendering of a plan node.
type jsonNode struct {
	Node     string      `json:"node"`
	Output   []string    `json:"output"`
	Children []*jsonNode `json:"children,omitempty"`
}

func newJSONNode(p plan.LogicalPlan) *jsonNode {
	n := &jsonNode{
		Node:   p.String(),
		Output: make([]string, 0, len(p.Output())),
	}
	for _, a := range p.Output() {
		n.Output = append(n.Output, a.String())
	}
	for _, c := range p.Children() {
		n.Children = append(n.Children, newJSONNode(c))
	}
	return n
}
