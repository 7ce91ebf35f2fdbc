// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"github.com/runreveal/esql"
	"github.com/runreveal/esql/parser"
	"go.uber.org/zap"
)

const (
	prompt             = "esql> "
	continuationPrompt = "  ... "
)

// repl reads statements from the terminal until EOF,
// printing the plan of each statement as it is completed.
func repl(ctx context.Context, output io.Writer, c *compiler) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetWordCompleter(newWordCompleter(&esql.AnalysisContext{
		Capabilities: c.opts.Capabilities,
	}))

	fmt.Fprintln(output, "Enter statements ending with a semicolon. Press Ctrl-D to exit.")
	sb := new(strings.Builder)
	for ctx.Err() == nil {
		p := prompt
		if sb.Len() > 0 {
			p = continuationPrompt
		}
		text, err := line.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			sb.Reset()
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(output)
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		line.AppendHistory(text)
		sb.WriteString(text)
		sb.WriteByte('\n')

		statements, rest := completeStatements(sb.String())
		for _, stmt := range statements {
			if err := writePlan(output, c, stmt); err != nil {
				c.log.Debug("statement failed", zap.String("statement", stmt))
				fmt.Fprintf(os.Stderr, "esql: %v\n", err)
			}
		}
		sb.Reset()
		sb.WriteString(rest)
	}
	return ctx.Err()
}

// newWordCompleter returns a completer that suggests
// commands, indices, and columns for the current line.
func newWordCompleter(actx *esql.AnalysisContext) liner.WordCompleter {
	return func(text string, pos int) (head string, completions []string, tail string) {
		runes := []rune(text)
		if pos > len(runes) {
			pos = len(runes)
		}
		cursor := len(string(runes[:pos]))
		suggestions := actx.SuggestCompletions(text, parser.Span{Start: cursor, End: cursor})
		if len(suggestions) == 0 {
			return text[:cursor], nil, text[cursor:]
		}
		start := suggestions[0].Span.Start
		for _, s := range suggestions {
			completions = append(completions, s.Text)
		}
		slices.Sort(completions)
		return text[:start], completions, text[cursor:]
	}
}
