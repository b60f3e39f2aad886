package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastsToClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	order := &models.Order{ID: 7, OrderRef: "ref-7", UserID: "u1", Status: models.OrderStatusShipped}
	require.NoError(t, hub.Publish(context.Background(), NewOrderEvent(OrderStatusChanged, order)))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt OrderEvent
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, OrderStatusChanged, evt.Kind)
	assert.Equal(t, uint(7), evt.OrderID)
	assert.Equal(t, models.OrderStatusShipped, evt.Status)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

type failing struct{ err error }

func (f failing) Publish(context.Context, OrderEvent) error { return f.err }

func TestFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("broker down")
	err := Fanout{Nop{}, failing{boom}, Nop{}}.Publish(context.Background(), OrderEvent{})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, Fanout{Nop{}}.Publish(context.Background(), OrderEvent{}))
}

func TestHub_DropsClientWithFullQueue(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		assert.NoError(t, err)
		conns <- conn
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()

	// No write pump runs for this client, so its queue never drains.
	stuck := &client{conn: <-conns, send: make(chan []byte, 1)}
	stuck.send <- []byte("pending")
	hub := NewHub()
	hub.add(stuck)

	done := make(chan error, 1)
	go func() {
		done <- hub.Publish(context.Background(), NewOrderEvent(OrderPlaced, &models.Order{ID: 1}))
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stuck client")
	}
	assert.Equal(t, 0, hub.Clients())
}

func TestKafkaPublisher_DoesNotWaitForBroker(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "orders")
	assert.True(t, p.writer.Async)

	start := time.Now()
	err := p.Publish(context.Background(), NewOrderEvent(OrderPlaced, &models.Order{ID: 2, OrderRef: "ref-2"}))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
