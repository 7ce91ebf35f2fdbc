// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/runreveal/esql"
	"github.com/runreveal/esql/parser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"zombiezen.com/go/bass/sigterm"
)

func main() {
	rootCommand := &cobra.Command{
		Use:   "esql [options] [FILE [...]]",
		Short: "Build logical plans from Elasticsearch Query Language statements",

		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	g := new(globalOptions)
	g.register(rootCommand)
	outputPath := rootCommand.Flags().StringP("output", "o", "", "file to write plans to (defaults to stdout)")
	rootCommand.RunE = func(cmd *cobra.Command, args []string) (err error) {
		c, err := g.compiler()
		if err != nil {
			return err
		}
		defer c.log.Sync()

		if len(args) == 0 && *outputPath == "" && isTerminal(os.Stdin) {
			return repl(cmd.Context(), os.Stdout, c)
		}

		input, err := makeInput(args)
		if err != nil {
			return err
		}
		output, err := makeOutput(*outputPath)
		if err != nil {
			input.Close()
			return err
		}

		err = run(cmd.Context(), output, input, c, func(err error) {
			fmt.Fprintf(os.Stderr, "esql: %v\n", err)
		})
		if err2 := output.Close(); err == nil {
			err = err2
		}
		input.Close()
		return err
	}
	rootCommand.AddCommand(newCheckCommand(g))

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "esql: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the flags shared by all subcommands.
type globalOptions struct {
	capabilities []string
	dev          bool
	paramsPath   string
	format       string
	verbose      bool
}

func (g *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&g.capabilities, "capability", nil, "enable a preview `capability` (may be repeated)")
	flags.BoolVar(&g.dev, "dev", false, "enable all preview capabilities")
	flags.StringVar(&g.paramsPath, "params", "", "JSON `file` with the values of query parameters")
	flags.StringVar(&g.format, "format", formatText, "output `format` (text, json, or go)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debugging information to stderr")
}

// compiler returns a compiler configured by the flags.
func (g *globalOptions) compiler() (*compiler, error) {
	if !isFormat(g.format) {
		return nil, fmt.Errorf("unknown format %q", g.format)
	}
	opts := new(esql.Options)
	switch {
	case g.dev:
		opts.Capabilities = parser.DevCapabilities()
	case len(g.capabilities) > 0:
		caps, err := parser.ParseCapabilities(strings.Join(g.capabilities, ","))
		if err != nil {
			return nil, err
		}
		opts.Capabilities = caps
	}
	if g.paramsPath != "" {
		data, err := os.ReadFile(g.paramsPath)
		if err != nil {
			return nil, err
		}
		opts.Params, err = esql.ParseParams(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", g.paramsPath, err)
		}
	}

	log := zap.NewNop()
	if g.verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}
	return &compiler{opts: opts, format: g.format, log: log}, nil
}

// compiler turns statements into formatted plans.
type compiler struct {
	opts   *esql.Options
	format string
	log    *zap.Logger
}

func (c *compiler) compile(stmt string) (string, error) {
	start := time.Now()
	p, err := esql.Parse(stmt, c.opts)
	if err != nil {
		c.log.Debug("statement failed", zap.Int("length", len(stmt)), zap.Error(err))
		return "", err
	}
	c.log.Debug("statement compiled",
		zap.Int("length", len(stmt)),
		zap.Duration("duration", time.Since(start)),
	)
	return formatPlan(c.format, p)
}

var errCompile = errors.New("one or more statements could not be compiled")

func run(ctx context.Context, output io.Writer, input io.Reader, c *compiler, logError func(error)) error {
	scanner := bufio.NewScanner(input)
	sb := new(strings.Builder)

	if isTerminal(input) {
		// Nudge for usage if running interactively.
		fmt.Fprintln(os.Stderr, "Reading from terminal (use semicolons to end statements)...")
	}

	var finalError error
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sb.Write(scanner.Bytes())
		sb.WriteByte('\n')

		statements, rest := completeStatements(sb.String())
		for _, stmt := range statements {
			if err := writePlan(output, c, stmt); err != nil {
				logError(err)
				finalError = errCompile
			}
		}
		sb.Reset()
		sb.WriteString(rest)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for _, stmt := range parser.SplitStatements(sb.String()) {
		if err := writePlan(output, c, stmt); err != nil {
			logError(err)
			finalError = errCompile
		}
	}

	return finalError
}

// completeStatements splits buf into the statements
// that have been terminated by a semicolon
// and the text that follows them.
func completeStatements(buf string) (statements []string, rest string) {
	statements = parser.SplitStatements(buf)
	if strings.HasSuffix(strings.TrimSpace(buf), ";") || len(statements) == 0 {
		return statements, ""
	}
	last := statements[len(statements)-1]
	return statements[:len(statements)-1], last
}

func writePlan(output io.Writer, c *compiler, stmt string) error {
	s, err := c.compile(stmt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s\n\n", strings.TrimSuffix(s, "\n"))
	return err
}

func makeInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || len(args) == 1 && args[0] == "-" {
		return nopReadCloser{os.Stdin}, nil
	}
	if len(args) == 1 {
		return os.Open(args[0])
	}

	readers := make([]io.ReadCloser, 0, len(args))
	for _, path := range args {
		if path == "-" {
			readers = append(readers, nopReadCloser{os.Stdin})
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			for _, c := range readers {
				c.Close()
			}
			return nil, err
		}
		readers = append(readers, f)
	}
	return &multiReadCloser{readers}, nil
}

func makeOutput(arg string) (io.WriteCloser, error) {
	if arg == "" || arg == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(arg)
}

func isTerminal(r io.Reader) bool {
	for {
		switch rt := r.(type) {
		case *os.File:
			return term.IsTerminal(int(rt.Fd()))
		case nopReadCloser:
			r = rt.Reader
		default:
			return false
		}
	}
}

// A multiReadCloser is a logical concatenation of its input readers,
// much like [io.MultiReader].
// However, it also implements [io.Closer]
// and closes its inputs as they are finished reading.
type multiReadCloser struct {
	readers []io.ReadCloser
}

func (mrc *multiReadCloser) Read(p []byte) (n int, err error) {
	for len(mrc.readers) > 0 {
		n, err = mrc.readers[0].Read(p)
		if err == io.EOF {
			mrc.readers[0].Close()
			mrc.readers[0] = nil
			mrc.readers = mrc.readers[1:]
		}
		if n > 0 || err != io.EOF {
			if err == io.EOF && len(mrc.readers) > 0 {
				err = nil
			}
			return
		}
	}
	return 0, io.EOF
}

func (mrc *multiReadCloser) Close() error {
	var firstError error
	for _, rc := range mrc.readers {
		if err := rc.Close(); firstError == nil {
			firstError = err
		}
	}
	mrc.readers = nil
	return firstError
}

type nopReadCloser struct {
	io.Reader
}

func (nopReadCloser) Close() error { return nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
