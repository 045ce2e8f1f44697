package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestNotifyRunsListenersSynchronously(t *testing.T) {
	h := NewHub(zerolog.Nop())
	var got []string
	h.Subscribe(func(ctx context.Context, c Change) { got = append(got, c.Entity) })

	h.Notify(context.Background(), EntitySales)
	h.Notify(context.Background(), EntityInstallments)

	if len(got) != 2 || got[0] != EntitySales || got[1] != EntityInstallments {
		t.Errorf("listener saw %v", got)
	}
}

func TestNotifyReachesWebSocketClients(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	h.Notify(context.Background(), EntityCustomers)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var c Change
	if err := conn.ReadJSON(&c); err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.Entity != EntityCustomers {
		t.Errorf("entity = %q, want %q", c.Entity, EntityCustomers)
	}
}
