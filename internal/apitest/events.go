package apitest

import (
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// Publish sends payload to every open event stream of a vendor
func (s *Server) Publish(vendorID int64, payload map[string]any) {
	s.mu.Lock()
	subs := append([]chan map[string]any(nil), s.subs[vendorID]...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		case <-s.done:
			return
		}
	}
}

// PublishRaw writes data verbatim as one event, for malformed payload tests
func (s *Server) PublishRaw(vendorID int64, data string) {
	s.Publish(vendorID, map[string]any{rawKey: data})
}

const rawKey = "\x00raw"

func (s *Server) subscribe(vendorID int64) chan map[string]any {
	ch := make(chan map[string]any, 16)
	s.mu.Lock()
	s.subs[vendorID] = append(s.subs[vendorID], ch)
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(vendorID int64, ch chan map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subs[vendorID]
	for i, sub := range subs {
		if sub == ch {
			s.subs[vendorID] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (s *Server) events(c *gin.Context) {
	id := vendorID(c)
	ch := s.subscribe(id)
	defer s.unsubscribe(id, ch)

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-s.done:
			return
		case payload := <-ch:
			var data any = payload
			if raw, ok := payload[rawKey].(string); ok {
				data = raw
			}
			if err := sse.Encode(c.Writer, sse.Event{Event: "message", Data: data}); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
