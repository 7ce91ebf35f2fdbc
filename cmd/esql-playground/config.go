// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/runreveal/esql"
	"github.com/runreveal/esql/parser"
	"gopkg.in/yaml.v3"
)

// config is the playground's configuration file.
type config struct {
	Listen       string              `yaml:"listen"`
	Capabilities []string            `yaml:"capabilities"`
	CacheSize    int                 `yaml:"cache_size"`
	Indices      map[string][]string `yaml:"indices"`
}

func defaultConfig() *config {
	return &config{
		Listen:    ":8080",
		CacheSize: 512,
		Indices:   defaultIndices(),
	}
}

func defaultIndices() map[string][]string {
	return map[string][]string{
		"logs": {"@timestamp", "event.duration", "host.name", "message", "status"},
	}
}

// loadConfig reads a YAML configuration file.
// Settings missing from the file keep their default values.
// Indices listed in the file replace the default indices.
func loadConfig(path string) (*config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	cfg.Indices = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if len(cfg.Indices) == 0 {
		cfg.Indices = defaultIndices()
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("%s: cache_size must be positive", path)
	}
	return cfg, nil
}

func (cfg *config) options() (*esql.Options, error) {
	caps, err := parser.ParseCapabilities(strings.Join(cfg.Capabilities, ","))
	if err != nil {
		return nil, err
	}
	return &esql.Options{Capabilities: caps}, nil
}

func (cfg *config) analysisContext(caps parser.Capabilities) *esql.AnalysisContext {
	ctx := &esql.AnalysisContext{
		Indices:      make(map[string]*esql.AnalysisIndex, len(cfg.Indices)),
		Capabilities: caps,
	}
	for name, columns := range cfg.Indices {
		index := new(esql.AnalysisIndex)
		columns = slices.Clone(columns)
		slices.Sort(columns)
		for _, col := range columns {
			index.Columns = append(index.Columns, &esql.AnalysisColumn{Name: col})
		}
		ctx.Indices[name] = index
	}
	return ctx
}
