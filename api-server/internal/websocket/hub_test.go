package websocket

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
	done := make(chan struct{})
	go hub.Run(done)

	r := mux.NewRouter()
	r.HandleFunc("/api/sessions/{id}/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		close(done)
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_BroadcastStateReachesSessionWatchers(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "abc")
	defer conn.Close()
	other := dial(t, srv, "xyz")
	defer other.Close()

	require.Eventually(t, func() bool {
		return hub.GetClientCount("abc") == 1 && hub.GetClientCount("xyz") == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastState(&flow.State{SessionID: "abc", Step: flow.StepResults, Revision: 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeStateUpdated, msg.Type)
	assert.Equal(t, "abc", msg.SessionID)
	require.NotNil(t, msg.State)
	assert.Equal(t, flow.StepResults, msg.State.Step)
	assert.Equal(t, 7, msg.State.Revision)

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "watchers of another session receive nothing")
}

func TestHub_SessionEnded(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "abc")
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount("abc") == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastSessionEnded("abc", "payment_submitted")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeSessionEnded, msg.Type)
	assert.Equal(t, "payment_submitted", msg.Message)
	assert.Nil(t, msg.State)
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "abc")
	require.Eventually(t, func() bool { return hub.GetClientCount("abc") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.GetClientCount("abc") == 0 }, 2*time.Second, 10*time.Millisecond)
}
