// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/runreveal/esql"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	srv, err := newServer(zap.NewNop(), defaultConfig())
	require.NoError(t, err)
	return srv
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatic(t *testing.T) {
	h := newTestServer(t).handler()
	for _, path := range []string{"/", "/app.js"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
		require.NotEmpty(t, rec.Body.String(), "GET %s", path)
	}
}

func TestCompileHTML(t *testing.T) {
	h := newTestServer(t).handler()
	rec := postForm(t, h, "/compile", url.Values{"source": {"FROM logs | LIMIT 10"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, "<code>Limit[10]</code>")
	require.Contains(t, body, `<code>\_UnresolvedRelation[logs]</code>`)

	rec = postForm(t, h, "/compile", url.Values{"source": {"FROM logs | <b>"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "text-red-900")
	require.NotContains(t, rec.Body.String(), "<b>")
}

func TestCompileJSON(t *testing.T) {
	srv := newTestServer(t)
	h := srv.handler()

	const source = "FROM logs | WHERE status >= 400"
	want, err := esql.Compile(source, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		rec := postForm(t, h, "/compile", url.Values{"source": {source}}, "application/json")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var got compileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		if diff := cmp.Diff(compileResponse{Plan: want}, got); diff != "" {
			t.Errorf("response (-want +got):\n%s", diff)
		}
	}
	require.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.cacheHits))
	require.Equal(t, 2.0, testutil.ToFloat64(srv.metrics.compiles.WithLabelValues("ok")))

	rec := postForm(t, h, "/compile", url.Values{"source": {"!"}}, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var got compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Empty(t, got.Plan)
	require.NotNil(t, got.Error)
	require.NotEmpty(t, got.Error.Message)
	require.Equal(t, 0, got.Error.Start)
	require.GreaterOrEqual(t, got.Error.End, got.Error.Start)
	require.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.compiles.WithLabelValues("error")))
}

func TestSuggest(t *testing.T) {
	h := newTestServer(t).handler()

	rec := postForm(t, h, "/suggest", url.Values{
		"source": {"FROM l"},
		"start":  {"6"},
		"end":    {"6"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `data-text="logs" data-start="5" data-end="6">logs</a>`)

	rec = postForm(t, h, "/suggest", url.Values{
		"source": {"FROM logs | WHERE ho"},
		"start":  {"20"},
		"end":    {"20"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `data-text="host.name"`)

	for _, form := range []url.Values{
		{"source": {"FROM l"}, "start": {"x"}, "end": {"6"}},
		{"source": {"FROM l"}, "start": {"6"}},
		{"source": {"FROM l"}, "start": {"6"}, "end": {"7"}},
	} {
		rec := postForm(t, h, "/suggest", form, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "form = %v", form)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t).handler()
	postForm(t, h, "/compile", url.Values{"source": {"ROW a = 1"}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `esql_playground_compiles_total{result="ok"} 1`)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playground.yaml")
	const data = `listen: "127.0.0.1:9000"
capabilities: [lookup_command]
indices:
  web: [status, url]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o666))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	want := &config{
		Listen:       "127.0.0.1:9000",
		Capabilities: []string{"lookup_command"},
		CacheSize:    512,
		Indices: map[string][]string{
			"web": {"status", "url"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig(...) (-want +got):\n%s", diff)
	}

	require.NoError(t, os.WriteFile(path, []byte("capabilities: [bogus]\n"), 0o666))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(defaultIndices(), cfg.Indices); diff != "" {
		t.Errorf("indices (-want +got):\n%s", diff)
	}
	_, err = cfg.options()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("cache_size: 0\n"), 0o666))
	_, err = loadConfig(path)
	require.Error(t, err)
}
