package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event string, _ any) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("b failed")}
	c := &recordingPublisher{}

	err := Multi{a, b, c}.Publish(context.Background(), EventNewOrder, map[string]string{"order": "ABC123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b failed")
	assert.Equal(t, []string{EventNewOrder}, a.events)
	assert.Equal(t, []string{EventNewOrder}, c.events)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), EventNewOrder, nil))
}

func TestEncodeEnvelope(t *testing.T) {
	body, err := encode(EventOrderStatusChanged, map[string]string{"status": "DELIVERED"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, EventOrderStatusChanged, env.Event)
	assert.JSONEq(t, `{"status":"DELIVERED"}`, string(env.Payload))
	assert.False(t, env.Timestamp.IsZero())
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), EventNewOrder, map[string]string{"orderId": "XYZ789"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, EventNewOrder, env.Event)
	assert.JSONEq(t, `{"orderId":"XYZ789"}`, string(env.Payload))

	conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubPublishWithoutClients(t *testing.T) {
	assert.NoError(t, NewHub().Publish(context.Background(), EventNewOrder, struct{}{}))
}
