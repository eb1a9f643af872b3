package websocket

import (
	"sync"
	"testing"
)

func newTestClient(h *Hub, userID uint, buffer int) *Client {
	return &Client{
		userID: userID,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		hub:    h,
	}
}

func TestSendToUserDeliversToAllConnections(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, 5, 4)
	b := newTestClient(h, 5, 4)
	other := newTestClient(h, 6, 4)
	h.register(a)
	h.register(b)
	h.register(other)

	h.SendToUser(5, map[string]string{"event": "notification"})

	if len(a.send) != 1 || len(b.send) != 1 {
		t.Fatalf("expected one message per connection, got %d and %d", len(a.send), len(b.send))
	}
	if len(other.send) != 0 {
		t.Fatalf("expected no message for the other user, got %d", len(other.send))
	}
	if h.ConnectedUsers() != 2 {
		t.Fatalf("expected 2 connected users, got %d", h.ConnectedUsers())
	}
}

func TestSendToUserDisconnectsSlowClient(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 3, 1)
	h.register(c)

	// first send fills the buffer, second one drops the client
	h.SendToUser(3, map[string]string{"event": "a"})
	h.SendToUser(3, map[string]string{"event": "b"})

	if n := h.ConnectedUsers(); n != 0 {
		t.Fatalf("expected slow client to be dropped, got %d users", n)
	}
	select {
	case <-c.done:
	default:
		t.Fatal("expected the client to be shut down")
	}
}

func TestSendToUserDuringDisconnect(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 7, 1)
	h.register(c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h.SendToUser(7, map[string]string{"event": "ping"})
			}
		}()
	}
	c.close()
	wg.Wait()

	if n := h.ConnectedUsers(); n != 0 {
		t.Fatalf("expected no connected users, got %d", n)
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 9, 1)
	h.register(c)

	c.close()
	c.close()

	if n := h.ConnectedUsers(); n != 0 {
		t.Fatalf("expected no connected users, got %d", n)
	}
}
