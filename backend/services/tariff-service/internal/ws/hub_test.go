package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meterbill/backend/services/tariff-service/internal/models"
)

func dialFeed(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewServer(hub, time.Second, time.Second, nil, zap.NewNop()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHubPublishesCalculations(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialFeed(t, hub)

	hub.PublishCalculation(models.Calculation{ID: "calc-1", MeterType: "residential"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type string             `json:"type"`
		Data models.Calculation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventCalculationCreated, event.Type)
	assert.Equal(t, "calc-1", event.Data.ID)
}

func TestHubRemovesClosedSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialFeed(t, hub)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRunClosesSubscribersOnShutdown(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialFeed(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, 0, hub.Count())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
