package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/apitest"
	"github.com/odg-delivery/console/internal/events"
)

type fixedToken string

func (f fixedToken) Token() (string, bool) { return string(f), f != "" }

func subscribe(t *testing.T, ctx context.Context, srv *apitest.Server, email string) <-chan events.Message {
	t.Helper()
	client := api.New(srv.URL, api.WithTimeout(200*time.Millisecond))
	client.SetTokenSource(fixedToken(srv.Token(email)))

	ch, err := events.Subscribe(ctx, client, apitest.VendorID, zerolog.Nop())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return srv.Subscribers(apitest.VendorID) == 1 }, time.Second, 10*time.Millisecond)
	return ch
}

func receive(t *testing.T, ch <-chan events.Message) events.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Message{}
	}
}

func TestSubscribe_DeliversMessages(t *testing.T) {
	srv := apitest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := subscribe(t, ctx, srv, apitest.VendorEmail)

	// Outlives the client timeout: the stream must not be cut by it.
	time.Sleep(300 * time.Millisecond)

	srv.Publish(apitest.VendorID, map[string]any{"type": events.TypeOrderStatus, "orderId": 11})
	msg := receive(t, ch)
	assert.Equal(t, events.TypeOrderStatus, msg.Type)
	assert.Equal(t, "message", msg.Event)
	assert.JSONEq(t, `{"type":"order_status","orderId":11}`, string(msg.Raw))

	req, ok := srv.LastRequest(http.MethodGet, "/vendors/7/events")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(req.Authorization, "Bearer "))
}

func TestSubscribe_SkipsMalformedData(t *testing.T) {
	srv := apitest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := subscribe(t, ctx, srv, apitest.VendorEmail)

	srv.PublishRaw(apitest.VendorID, "not json")
	srv.Publish(apitest.VendorID, map[string]any{"type": "ping"})

	msg := receive(t, ch)
	assert.Equal(t, "ping", msg.Type)
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	srv := apitest.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := subscribe(t, ctx, srv, apitest.VendorEmail)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}

	assert.Eventually(t, func() bool { return srv.Subscribers(apitest.VendorID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestSubscribe_ClosesWhenServerEnds(t *testing.T) {
	srv := apitest.New(t)
	ch := subscribe(t, context.Background(), srv, apitest.VendorEmail)

	srv.Close()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after server shutdown")
	}
}

func TestSubscribe_RejectedStream(t *testing.T) {
	srv := apitest.New(t)
	client := api.New(srv.URL)
	client.SetTokenSource(fixedToken(srv.Token(apitest.StudentEmail)))

	_, err := events.Subscribe(context.Background(), client, apitest.VendorID, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSubscribe_ParsesMultilineAndComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(": keepalive\n\nid: 4\ndata: {\"type\":\ndata: \"order_status\"}\n\ndata:{\"type\":\"b\"}\r\n\r\n"))
	}))
	defer srv.Close()

	ch, err := events.Subscribe(context.Background(), api.New(srv.URL), 1, zerolog.Nop())
	require.NoError(t, err)

	first := receive(t, ch)
	assert.Equal(t, events.TypeOrderStatus, first.Type)
	assert.Equal(t, "4", first.ID)

	second := receive(t, ch)
	assert.Equal(t, "b", second.Type)

	_, ok := <-ch
	assert.False(t, ok, "stream closes at EOF")
}
