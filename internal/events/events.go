// Package events subscribes to a vendor's live order event stream.
package events

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/odg-delivery/console/internal/api"
)

// TypeOrderStatus is sent when an order moves to a new status
const TypeOrderStatus = "order_status"

// Message is one decoded event. Messages carry a type and are a hint to
// refetch; Raw keeps the full payload.
type Message struct {
	Event string          `json:"-"`
	ID    string          `json:"-"`
	Type  string          `json:"type"`
	Raw   json.RawMessage `json:"-"`
}

// Subscribe opens the event stream for vendorID. The returned channel is
// closed when ctx is cancelled or the stream ends or fails. There is no
// reconnect.
func Subscribe(ctx context.Context, client *api.Client, vendorID int64, logger zerolog.Logger) (<-chan Message, error) {
	path := fmt.Sprintf("/vendors/%d/events", vendorID)
	ro := api.NewRequestOptions(api.WithHeader("Accept", "text/event-stream"))

	req, err := client.NewRequest(ctx, http.MethodGet, path, nil, ro)
	if err != nil {
		return nil, err
	}

	// Same transport and cookies, no overall timeout: the stream stays open.
	httpClient := *client.HTTPClient()
	httpClient.Timeout = 0

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to open event stream: unexpected status %d", resp.StatusCode)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		stop := context.AfterFunc(ctx, func() { resp.Body.Close() })
		defer stop()

		err := read(resp.Body, func(ev frame) bool {
			msg, ok := decode(ev)
			if !ok {
				logger.Debug().Str("data", ev.data).Msg("Skipping malformed event")
				return true
			}
			select {
			case out <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Int64("vendor_id", vendorID).Msg("Event stream closed")
		}
	}()

	return out, nil
}

type frame struct {
	event string
	id    string
	data  string
}

func decode(f frame) (Message, bool) {
	var msg Message
	if err := json.Unmarshal([]byte(f.data), &msg); err != nil {
		return Message{}, false
	}
	msg.Event = f.event
	msg.ID = f.id
	msg.Raw = json.RawMessage(f.data)
	return msg, true
}

// read parses a text/event-stream body and calls emit for each event that
// carries data. It stops when emit returns false.
func read(body io.Reader, emit func(frame) bool) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cur  frame
		data []string
	)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			if len(data) > 0 {
				cur.data = strings.Join(data, "\n")
				if !emit(cur) {
					return nil
				}
			}
			cur, data = frame{}, nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			cur.event = value
		case "id":
			cur.id = value
		case "data":
			data = append(data, value)
		}
	}

	return scanner.Err()
}
