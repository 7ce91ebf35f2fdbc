// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

// esql-playground serves a web page for trying out ESQL statements.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"zombiezen.com/go/bass/sigterm"
)

func main() {
	rootCommand := &cobra.Command{
		Use:   "esql-playground [options]",
		Short: "Serve a playground for ESQL statements",
		Args:  cobra.NoArgs,

		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	configPath := rootCommand.Flags().StringP("config", "c", "", "YAML configuration `file`")
	listen := rootCommand.Flags().String("listen", "", "`address` to listen on (overrides the configuration file)")
	rootCommand.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if *listen != "" {
			cfg.Listen = *listen
		}
		log, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer log.Sync()
		return serve(cmd.Context(), log, cfg)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "esql-playground: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, log *zap.Logger, cfg *config) error {
	srv, err := newServer(log, cfg)
	if err != nil {
		return err
	}
	hsrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- hsrv.ListenAndServe()
	}()
	log.Info("Listening", zap.String("addr", cfg.Listen), zap.Int("indices", len(cfg.Indices)))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hsrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
