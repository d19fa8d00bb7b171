package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

type inbox struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (b *inbox) handle(_ models.Mode, ev protocol.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *inbox) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *inbox) at(i int) protocol.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events[i]
}

func TestClientHubRoundTrip(t *testing.T) {
	hub := NewHub(nil)
	received := make(chan protocol.Request, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pid := r.URL.Query().Get("participant")
		_ = hub.Serve(w, r, "ABC123", pid, func(mode models.Mode, req protocol.Request) protocol.Event {
			received <- req
			return protocol.OperationRejected{RequestID: req.RequestID(), Code: "UNAUTHORIZED_ACTION"}
		})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?participant=B"
	client := NewClient(url, models.ModeNetworked, nil)
	box := &inbox{}
	client.Handle(box.handle)
	require.NoError(t, client.Init(context.Background()))
	defer client.Dispose()

	require.Eventually(t, func() bool { return hub.Count("ABC123") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, client.Send(context.Background(), protocol.EndTurn{ID: "r1", ParticipantID: "B", TurnNumber: 1}))
	select {
	case req := <-received:
		assert.Equal(t, protocol.EndTurn{ID: "r1", ParticipantID: "B", TurnNumber: 1}, req)
	case <-time.After(time.Second):
		t.Fatal("request not received")
	}

	require.Eventually(t, func() bool { return box.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, protocol.OperationRejected{RequestID: "r1", Code: "UNAUTHORIZED_ACTION"}, box.at(0))

	hub.Broadcast("ABC123", models.ModeNetworked, protocol.TurnChanged{ActiveParticipantID: "C", TurnNumber: 1})
	hub.Send("ABC123", "someone-else", models.ModeNetworked, protocol.CombatStarted{})
	hub.Broadcast("OTHER", models.ModeNetworked, protocol.CombatStarted{})

	require.Eventually(t, func() bool { return box.len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, protocol.TurnChanged{ActiveParticipantID: "C", TurnNumber: 1}, box.at(1))

	client.Dispose()
	<-client.Done()
	require.Eventually(t, func() bool { return hub.Count("ABC123") == 0 }, time.Second, 5*time.Millisecond)
	assert.Error(t, client.Send(context.Background(), protocol.EndTurn{ID: "r2"}))
}

func TestClientInitFailure(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/ws", models.ModeNetworked, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, client.Init(ctx))
}
