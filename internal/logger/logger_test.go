package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	Set(zap.New(core).Sugar())
	t.Cleanup(func() { Set(prev) })
	return logs
}

func TestConfigure_JSONToFile(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	path := filepath.Join(t.TempDir(), "locfeed.log")
	l, err := Configure("warn", "json", path)
	require.NoError(t, err)
	assert.Same(t, l, L())

	L().Infow("dropped_below_level")
	L().Warnw("probe", "k", "v")
	Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"probe"`)
	assert.Contains(t, string(b), `"k":"v"`)
	assert.NotContains(t, string(b), "dropped_below_level")
}

func TestConfigure_BadPath(t *testing.T) {
	_, err := Configure("info", "", filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}

func TestAccessMiddleware(t *testing.T) {
	logs := observed(t)
	h := AccessMiddleware(L())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/metrics", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, 2, fields["bytes"])
}

func TestTransport(t *testing.T) {
	logs := observed(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := &http.Client{Transport: &Transport{}}
	resp, err := c.Get(srv.URL + "/data")
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.FilterMessage("http_out").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/data", entries[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusNoContent, entries[0].ContextMap()["status"])

	srv.Close()
	_, err = c.Get(srv.URL + "/data")
	require.Error(t, err)
	assert.Len(t, logs.FilterMessage("http_out_error").All(), 1)
}
