package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var upgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + DefaultUpdatesPath
}

func TestChannel_MessagesThenServerClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUpdatesPath, r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"opaque":1}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte("plain text"))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	d := &recordingDisplay{}
	ch := NewChannel(wsURL(srv), d)
	assert.Equal(t, Connecting, ch.State())

	err := ch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Closed, ch.State())

	s := d.snapshot()
	assert.Equal(t, []string{`{"opaque":1}`, "plain text"}, s.messages)
	assert.Equal(t, DisconnectNotice, s.notice)
}

func TestChannel_OpenUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	d := &recordingDisplay{}
	ch := NewChannel(wsURL(srv), d)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	require.Eventually(t, func() bool { return ch.State() == Open }, time.Second, 5*time.Millisecond)
	assert.Empty(t, d.snapshot().notice)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, Closed, ch.State())
	assert.Equal(t, DisconnectNotice, d.snapshot().notice)
}

func TestChannel_DialFailureShowsNotice(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d := &recordingDisplay{}
	ch := NewChannel(wsURL(srv), d)
	err := ch.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, Closed, ch.State())
	assert.Equal(t, DisconnectNotice, d.snapshot().notice)
}

func TestUpdatesURL(t *testing.T) {
	u, err := UpdatesURL("http://example.com:5000", "")
	require.NoError(t, err)
	assert.Equal(t, "ws://example.com:5000/api/get_updates", u)

	u, err = UpdatesURL("https://example.com/app/?x=1", "/stream")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/app/stream", u)

	_, err = UpdatesURL("ftp://example.com", "")
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CONNECTING", Connecting.String())
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "CLOSED", Closed.String())
}
