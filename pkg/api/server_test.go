package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PanCrop/config"
)

func TestNewServer(t *testing.T) {
	s := NewServer()
	assert.NotNil(t, s)
	assert.NotNil(t, s.Handler())
}

func TestHealthCheck(t *testing.T) {
	s := NewServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var h Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &h))
	assert.Equal(t, "running", h.Status)
	assert.Equal(t, config.AppName, h.App)
	assert.Equal(t, config.AppVersion, h.Version)
}

func dialFeed(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.ClientCount() == n }, time.Second, 10*time.Millisecond)
}

func TestWebSocketIgnoresClientMessages(t *testing.T) {
	s := NewServer()
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws := dialFeed(t, server)
	waitForClients(t, s, 1)

	err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
	assert.NoError(t, err)

	ws.Close()
	waitForClients(t, s, 0)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	s := NewServer()
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://example.com"}})
	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}

func TestBroadcast(t *testing.T) {
	s := NewServer()
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ws := dialFeed(t, server)
	waitForClients(t, s, 1)

	s.Broadcast(Event{Type: EventExported, Path: "/tmp/out.jpg", Upscaled: true})

	var ev Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, Event{Type: EventExported, Path: "/tmp/out.jpg", Upscaled: true}, ev)
}

func TestOpen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	var opened string
	s := NewServer()
	s.SetOpenHandler(func(path string) error {
		opened = path
		return nil
	})
	server := httptest.NewServer(s.Handler())
	defer server.Close()
	ws := dialFeed(t, server)
	waitForClients(t, s, 1)

	addr := strings.TrimPrefix(server.URL, "http://")
	require.NoError(t, SendOpen(context.Background(), addr, file))
	assert.Equal(t, file, opened)

	var ev Event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, EventOpened, ev.Type)
	assert.Equal(t, file, ev.Path)
}

func TestOpenRejects(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	s := NewServer()
	s.SetOpenHandler(func(path string) error { return nil })

	tests := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty path", http.MethodPost, `{"path":""}`, http.StatusBadRequest},
		{"missing file", http.MethodPost, `{"path":"` + filepath.ToSlash(filepath.Join(dir, "nope.jpg")) + `"}`, http.StatusNotFound},
		{"directory", http.MethodPost, `{"path":"` + filepath.ToSlash(dir) + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/open", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestOpenWithoutHandler(t *testing.T) {
	file := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	s := NewServer()
	body, _ := json.Marshal(OpenRequest{Path: file})
	req := httptest.NewRequest(http.MethodPost, "/open", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestServeAndStop(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer()
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	c := NewClient(l.Addr().String())
	require.Eventually(t, func() bool {
		_, err := c.Health(context.Background())
		return err == nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestClientNoServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	err = SendOpen(context.Background(), addr, "/tmp/x.jpg")
	assert.Error(t, err)
}

func TestIsLoopbackOrigin(t *testing.T) {
	assert.True(t, isLoopbackOrigin("http://localhost:3000"))
	assert.True(t, isLoopbackOrigin("http://127.0.0.1"))
	assert.True(t, isLoopbackOrigin("http://[::1]:8080"))
	assert.False(t, isLoopbackOrigin("https://example.com"))
	assert.False(t, isLoopbackOrigin("::bad"))
}
