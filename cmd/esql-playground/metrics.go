// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	compiles        *prometheus.CounterVec
	compileDuration prometheus.Histogram
	cacheHits       prometheus.Counter
	suggestions     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esql_playground",
			Name:      "compiles_total",
			Help:      "Number of statements compiled, by result.",
		}, []string{"result"}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "esql_playground",
			Name:      "compile_duration_seconds",
			Help:      "Time taken to build the plan of a statement.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esql_playground",
			Name:      "plan_cache_hits_total",
			Help:      "Number of compile requests served from the plan cache.",
		}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esql_playground",
			Name:      "suggest_requests_total",
			Help:      "Number of completion requests.",
		}),
	}
	reg.MustRegister(m.compiles, m.compileDuration, m.cacheHits, m.suggestions)
	return m
}
