package ui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locfeed/internal/feed"
)

func noTimers(time.Duration, func()) func() bool { return func() bool { return true } }

func stepFeed(t *testing.T, m FeedModel, msg tea.Msg) (FeedModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	fm, ok := next.(FeedModel)
	require.True(t, ok)
	return fm, cmd
}

type feedServer struct {
	mu      sync.Mutex
	queries []url.Values
}

func (s *feedServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":100.123,"contents":"<p>first blob</p>"}`)
	})
	mux.HandleFunc("/api/command", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.queries = append(s.queries, r.URL.Query())
		s.mu.Unlock()
		fmt.Fprint(w, `{"value":102.456,"contents":"<b>second blob</b>"}`)
	})
	return mux
}

func (s *feedServer) commands() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries...)
}

func TestFeedModel_ReloadAndCommand(t *testing.T) {
	fs := &feedServer{}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	d := NewFeedDisplay()
	v := feed.NewViewer(d, feed.WithAfterFunc(noTimers))
	defer v.Close()
	m := NewFeedModel(context.Background(), d, v, feed.NewClient(srv.URL, nil),
		WithSession("s1"),
		WithChannelState(func() feed.State { return feed.Open }))

	assert.Contains(t, m.View(), feed.AwaitingText)

	m, _ = stepFeed(t, m, m.reload()())
	s := d.Snapshot()
	assert.Equal(t, "100.123s since the Epoch (first data point)", s.Summary)
	assert.True(t, s.Indicator)
	view := m.View()
	assert.Contains(t, view, "first blob")
	assert.NotContains(t, view, "<p>")
	assert.Contains(t, view, "[OPEN]")
	assert.Contains(t, view, "UPDATED")

	m, _ = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	require.True(t, m.commanding)
	for _, r := range "go" {
		m, _ = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := stepFeed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.commanding)

	msg, ok := cmd().(fetchedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.True(t, msg.rendered)

	qs := fs.commands()
	require.Len(t, qs, 1)
	assert.Equal(t, "go", qs[0].Get("command"))
	assert.Equal(t, "s1", qs[0].Get("session_id"))
	assert.Equal(t, "102.456s since the Epoch (+2.333s since last update)", d.Snapshot().Summary)
	assert.Contains(t, m.View(), "second blob")
}

func TestFeedModel_EmptyCommandIsNotSent(t *testing.T) {
	d := NewFeedDisplay()
	v := feed.NewViewer(d, feed.WithAfterFunc(noTimers))
	m := NewFeedModel(context.Background(), d, v, feed.NewClient("http://127.0.0.1:1", nil))

	m, _ = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	m, cmd := stepFeed(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.commanding)

	m, _ = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	m, _ = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m, cmd = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, m.commanding)
	assert.Empty(t, m.input.Value())
}

func TestFeedModel_DisconnectAndMessages(t *testing.T) {
	d := NewFeedDisplay()
	v := feed.NewViewer(d, feed.WithAfterFunc(noTimers))
	m := NewFeedModel(context.Background(), d, v, feed.NewClient("http://127.0.0.1:1", nil),
		WithChannelState(func() feed.State { return feed.Closed }))

	for i := 0; i < 7; i++ {
		d.Message(fmt.Sprintf(`{"n":%d}`, i))
	}
	d.Disconnected(feed.DisconnectNotice)

	view := m.View()
	assert.Contains(t, view, feed.DisconnectNotice)
	assert.Contains(t, view, "[CLOSED]")
	assert.Contains(t, view, `{"n":6}`)
	assert.NotContains(t, view, `{"n":1}`, "only the latest messages are shown")
}

func TestFeedModel_QuitAndReloadKeys(t *testing.T) {
	d := NewFeedDisplay()
	v := feed.NewViewer(d, feed.WithAfterFunc(noTimers))
	m := NewFeedModel(context.Background(), d, v, feed.NewClient("http://127.0.0.1:1", nil))

	_, cmd := stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = stepFeed(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	msg, ok := cmd().(fetchedMsg)
	require.True(t, ok)
	assert.Error(t, msg.err)
	assert.False(t, msg.rendered)
}

func TestFeedDisplay_SignalsAndCapsMessages(t *testing.T) {
	d := NewFeedDisplay()
	select {
	case <-d.Changed():
		t.Fatal("no write yet")
	default:
	}

	for i := 0; i < maxMessages+10; i++ {
		d.Message(fmt.Sprint(i))
	}
	select {
	case <-d.Changed():
	default:
		t.Fatal("expected a change signal")
	}

	s := d.Snapshot()
	require.Len(t, s.Messages, maxMessages)
	assert.Equal(t, "10", s.Messages[0])
	assert.Equal(t, fmt.Sprint(maxMessages+9), s.Messages[maxMessages-1])
}

func TestFeedModel_WaitForChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewFeedDisplay()
	m := NewFeedModel(ctx, d, feed.NewViewer(d, feed.WithAfterFunc(noTimers)), feed.NewClient("http://127.0.0.1:1", nil))

	assert.Equal(t, displayChangedMsg{}, m.waitForChange()())

	cancel()
	assert.Nil(t, m.waitForChange()())
}
