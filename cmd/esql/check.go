// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/runreveal/esql/parser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newCheckCommand(g *globalOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "check FILE [...]",
		Short: "Report the statements in files that do not compile",
		Args:  cobra.MinimumNArgs(1),

		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	jobs := c.Flags().IntP("jobs", "j", runtime.GOMAXPROCS(0), "number of files to check at once")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		comp, err := g.compiler()
		if err != nil {
			return err
		}
		defer comp.log.Sync()
		return check(cmd.Context(), os.Stderr, comp, args, *jobs)
	}
	return c
}

// check compiles every statement in the named files,
// writing a line to output for each statement that fails.
func check(ctx context.Context, output io.Writer, c *compiler, paths []string, jobs int) error {
	grp, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		grp.SetLimit(jobs)
	}
	var mu sync.Mutex
	failed := false
	for _, path := range paths {
		path := path
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			for _, stmt := range parser.SplitStatements(string(data)) {
				if len(parser.Scan(stmt)) == 0 {
					continue
				}
				if _, err := c.compile(stmt); err != nil {
					mu.Lock()
					failed = true
					fmt.Fprintf(output, "%s: %v\n", path, err)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	if failed {
		return errCompile
	}
	return nil
}
