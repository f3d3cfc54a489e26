package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AstarNetwork/yoki2-subgraph/config"
	"github.com/AstarNetwork/yoki2-subgraph/metrics"
	"github.com/AstarNetwork/yoki2-subgraph/server"
	"github.com/AstarNetwork/yoki2-subgraph/yoki"
)

func newServer(t *testing.T, logger *zap.Logger) *httptest.Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	srv, err := server.New(cfg, yoki.Schema(), logger)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestRoutes(t *testing.T) {
	ts := newServer(t, zap.NewNop())

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("sdl", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/schema.graphql")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/graphql")

		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, yoki.Schema().SDL(), body.String())
	})

	t.Run("introspection", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/schema.json")
		require.NoError(t, err)
		defer resp.Body.Close()
		var decoded map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		assert.Equal(t, map[string]interface{}{"name": "Query"}, decoded["__schema"]["queryType"])
	})

	t.Run("entities", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/entities")
		require.NoError(t, err)
		defer resp.Body.Close()
		var decoded struct {
			Entities []struct {
				Name     string `json:"name"`
				Singular string `json:"singular"`
				Plural   string `json:"plural"`
				Fields   []struct {
					Name     string `json:"name"`
					Type     string `json:"type"`
					Category string `json:"category"`
				} `json:"fields"`
			} `json:"entities"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		require.Len(t, decoded.Entities, 13)
		last := decoded.Entities[12]
		assert.Equal(t, "URI", last.Name)
		assert.Equal(t, "uri", last.Singular)
		assert.Equal(t, "uris", last.Plural)
		require.NotEmpty(t, last.Fields)
		assert.Equal(t, "id", last.Fields[0].Name)
		assert.Equal(t, "Bytes!", last.Fields[0].Type)
		assert.Equal(t, "bytes", last.Fields[0].Category)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func postValidate(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestValidate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ts := newServer(t, zap.New(core))

	t.Run("valid query", func(t *testing.T) {
		resp, body := postValidate(t, ts, `{"query": "query Latest($n: Int) { uris(first: $n) { id value } }", "operationName": "Latest", "variables": {"n": 5}}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["valid"])
		assert.Nil(t, body["errors"])

		// the access log is written after the response is flushed
		require.Eventually(t, func() bool {
			return logs.FilterMessage("request").FilterField(zap.String("operationName", "Latest")).Len() == 1
		}, time.Second, 10*time.Millisecond)
		entry := logs.FilterMessage("request").FilterField(zap.String("operationName", "Latest")).All()[0]
		assert.EqualValues(t, http.StatusOK, entry.ContextMap()["status"])
		assert.Equal(t, http.MethodPost, entry.ContextMap()["method"])
	})

	t.Run("invalid query", func(t *testing.T) {
		resp, body := postValidate(t, ts, `{"query": "{ uris(first: 1001) { id } }"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["valid"])
		errs, ok := body["errors"].([]interface{})
		require.True(t, ok)
		require.Len(t, errs, 1)
		first := errs[0].(map[string]interface{})
		assert.Contains(t, first["message"], "between 0 and 1000")
		assert.NotEmpty(t, first["locations"])
		assert.Equal(t, "Pagination", first["extensions"].(map[string]interface{})["rule"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, body := postValidate(t, ts, `{"query": `)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.EqualValues(t, http.StatusBadRequest, body["code"])
		assert.Contains(t, body["error"], "invalid request body")
	})

	t.Run("missing query", func(t *testing.T) {
		resp, body := postValidate(t, ts, `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "missing query", body["error"])
	})

	t.Run("requests are counted by route", func(t *testing.T) {
		counter := metrics.HTTPRequests.WithLabelValues("/validate", "200")
		before := testutil.ToFloat64(counter)
		postValidate(t, ts, `{"query": "{ pauseds { id } }"}`)
		assert.Eventually(t, func() bool {
			return testutil.ToFloat64(counter) >= before+1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestMetricsDisabled(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Metrics.Enabled = false
	srv, err := server.New(cfg, yoki.Schema(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	_, err = server.New(nil, yoki.Schema(), nil)
	assert.Error(t, err)
	_, err = server.New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(server.Logger(logger))
	r.Use(server.Metrics)
	r.Use(server.Recovery(logger))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	failures := metrics.HTTPRequests.WithLabelValues("/boom", "500")
	before := testutil.ToFloat64(failures)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal server error", "code": 500}`, rec.Body.String())

	recovered := logs.FilterMessage("panic recovered").All()
	require.Len(t, recovered, 1)
	request := recovered[0].ContextMap()["request"].(string)
	assert.Contains(t, request, "Authorization: *")
	assert.NotContains(t, request, "secret")

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.EqualValues(t, http.StatusInternalServerError, requests[0].ContextMap()["status"])

	assert.Equal(t, before+1, testutil.ToFloat64(failures))
}

func TestHandleError(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.HandleError(func(http.ResponseWriter, *http.Request) error {
			return server.BadRequest("bad input", nil)
		})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "bad input", "code": 400}`, rec.Body.String())
	})

	t.Run("unexpected error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.HandleError(func(http.ResponseWriter, *http.Request) error {
			return assert.AnError
		})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error": "Unexpected Service Error", "code": 500}`, rec.Body.String())
	})
}

func TestServeAndWait(t *testing.T) {
	t.Run("stops on cancel", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := listener.Addr().String()
		require.NoError(t, listener.Close())

		srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- server.ServeAndWait(ctx, zap.NewNop(), srv, time.Second) }()

		require.Eventually(t, func() bool {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return false
			}
			_ = conn.Close()
			return true
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("reports listen failure", func(t *testing.T) {
		srv := &http.Server{Addr: "127.0.0.1:-1"}
		err := server.ServeAndWait(context.Background(), nil, srv, time.Second)
		assert.ErrorContains(t, err, "http server failed")
	})

	t.Run("nil server", func(t *testing.T) {
		assert.Error(t, server.ServeAndWait(context.Background(), nil, nil, time.Second))
	})
}
