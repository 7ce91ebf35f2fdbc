// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/runreveal/esql"
	"github.com/runreveal/esql/parser"
	"go.uber.org/zap"
)

//go:embed index.html
//go:embed app.js
var static embed.FS

type server struct {
	log      *zap.Logger
	opts     *esql.Options
	analysis *esql.AnalysisContext
	plans    *arc.ARCCache[string, string]
	metrics  *metrics
	registry *prometheus.Registry
}

func newServer(log *zap.Logger, cfg *config) (*server, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	plans, err := arc.NewARC[string, string](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	return &server{
		log:      log,
		opts:     opts,
		analysis: cfg.analysisContext(opts.Capabilities),
		plans:    plans,
		metrics:  newMetrics(reg),
		registry: reg,
	}, nil
}

func (srv *server) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		serveFileFS(w, r, static, "index.html")
	}).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
		serveFileFS(w, r, static, "app.js")
	}).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/compile", srv.compileJSON).Methods(http.MethodPost).Headers("Accept", "application/json")
	r.HandleFunc("/compile", srv.compile).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/suggest", srv.suggest).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(srv.registry, promhttp.HandlerOpts{}))
	r.Use(srv.logRequests)
	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (srv *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		srv.log.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// compilePlan returns the text form of a statement's plan,
// consulting the cache first.
func (srv *server) compilePlan(source string) (string, error) {
	if text, ok := srv.plans.Get(source); ok {
		srv.metrics.cacheHits.Inc()
		srv.metrics.compiles.WithLabelValues("ok").Inc()
		return text, nil
	}
	start := time.Now()
	text, err := esql.Compile(source, srv.opts)
	srv.metrics.compileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		srv.metrics.compiles.WithLabelValues("error").Inc()
		srv.log.Debug("Compile failed", zap.Int("length", len(source)), zap.Error(err))
		return "", err
	}
	srv.metrics.compiles.WithLabelValues("ok").Inc()
	srv.plans.Add(source, text)
	return text, nil
}

func (srv *server) compile(w http.ResponseWriter, r *http.Request) {
	text, err := srv.compilePlan(r.FormValue("source"))
	buf := new(bytes.Buffer)
	if err != nil {
		buf.WriteString(`<div class="italic text-red-900">`)
		buf.WriteString(html.EscapeString(err.Error()))
		buf.WriteString("</div>")
	} else {
		buf.WriteString(`<div class="font-mono bg-slate-300 text-black p-4">`)
		for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
			buf.WriteString(`<pre class="whitespace-pre"><code>`)
			buf.WriteString(html.EscapeString(line))
			buf.WriteString("</code></pre>\n")
		}
		buf.WriteString("</div>\n")
	}
	writeBuffer(w, "text/html; charset=utf-8", buf)
}

// compileResponse is the JSON body returned by /compile.
type compileResponse struct {
	Plan  string        `json:"plan,omitempty"`
	Error *compileError `json:"error,omitempty"`
}

type compileError struct {
	Message string `json:"message"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

func (srv *server) compileJSON(w http.ResponseWriter, r *http.Request) {
	var resp compileResponse
	text, err := srv.compilePlan(r.FormValue("source"))
	if err != nil {
		resp.Error = &compileError{Message: err.Error(), Start: -1, End: -1}
		var perr *parser.Error
		if errors.As(err, &perr) {
			resp.Error.Message = perr.Err.Error()
			resp.Error.Start = perr.Span.Start
			resp.Error.End = perr.Span.End
		}
	} else {
		resp.Plan = text
	}
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(resp); err != nil {
		srv.log.Error("Encode compile response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBuffer(w, "application/json", buf)
}

func (srv *server) suggest(w http.ResponseWriter, r *http.Request) {
	srv.metrics.suggestions.Inc()
	start, err := strconv.Atoi(r.FormValue("start"))
	if err != nil {
		http.Error(w, "start: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	end, err := strconv.Atoi(r.FormValue("end"))
	if err != nil {
		http.Error(w, "end: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	source := r.FormValue("source")
	if start < 0 || start > end || end > len(source) {
		http.Error(w, "cursor out of range", http.StatusUnprocessableEntity)
		return
	}
	completions := srv.analysis.SuggestCompletions(source, parser.Span{
		Start: start,
		End:   end,
	})

	buf := new(bytes.Buffer)
	if len(completions) == 0 {
		buf.WriteString(`<li class="p-2">No completions.</li>`)
	} else {
		for _, c := range completions {
			buf.WriteString(`<li class="p-2 hover:bg-white/25"><a class="outline-none" href="#" data-text="`)
			buf.WriteString(html.EscapeString(c.Text))
			buf.WriteString(`" data-start="`)
			buf.WriteString(strconv.Itoa(c.Span.Start))
			buf.WriteString(`" data-end="`)
			buf.WriteString(strconv.Itoa(c.Span.End))
			buf.WriteString(`">`)
			buf.WriteString(html.EscapeString(c.Label))
			buf.WriteString("</a></li>\n")
		}
	}
	writeBuffer(w, "text/html; charset=utf-8", buf)
}

func writeBuffer(w http.ResponseWriter, contentType string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	io.Copy(w, buf)
}

func serveFileFS(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	content, ok := f.(io.ReadSeeker)
	if !ok {
		contentBytes, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		content = bytes.NewReader(contentBytes)
	}
	http.ServeContent(w, r, name, time.Time{}, content)
}
