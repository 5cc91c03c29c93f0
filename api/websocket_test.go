package api

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"obsmacros/config"
	"obsmacros/models"
	"obsmacros/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func waitForClients(t *testing.T, hub *WebSocketHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketReceivesInvocationEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewWebSocketHub()
	go hub.Run()

	ms := service.NewMacroService(config.New(), filepath.Join(t.TempDir(), config.ConfigPath))
	ms.Bind(models.Bind(models.KeyF1), models.SwitchScene{SceneName: "Live"})
	d := service.NewDispatcher(ms, &stubRemote{}, nil, hub)
	defer d.Stop()

	router := gin.New()
	SetupRoutes(router, ms, d, nil, hub)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	if _, err := d.Trigger(context.Background(), models.Bind(models.KeyF1), service.SourceHTTP); err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type       string            `json:"type"`
		Invocation models.Invocation `json:"invocation"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if event.Type != "invocation" {
		t.Errorf("type = %q, want invocation", event.Type)
	}
	if event.Invocation.Binding != "F1" || event.Invocation.Status != models.StatusDone {
		t.Errorf("invocation = %+v", event.Invocation)
	}

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewWebSocketHub()
	go hub.Run()
	hub.BroadcastToAll(map[string]string{"type": "noop"})
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("ClientCount() = %d", n)
	}
}
