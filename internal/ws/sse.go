package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/villagelink/village-backend/internal/cache"
	"github.com/villagelink/village-backend/internal/metrics"
	"go.uber.org/zap"
)

// SSEHandler streams portal events over Server-Sent Events for clients
// that cannot hold a websocket.
type SSEHandler struct {
	cache          *cache.Cache
	logger         *zap.SugaredLogger
	metrics        *metrics.Metrics
	allowedOrigins []string
}

// NewSSEHandler builds the handler.
func NewSSEHandler(c *cache.Cache, logger *zap.SugaredLogger, m *metrics.Metrics, allowedOrigins []string) *SSEHandler {
	return &SSEHandler{
		cache:          c,
		logger:         logger,
		metrics:        m,
		allowedOrigins: allowedOrigins,
	}
}

// HandleSSE serves one event stream until the client disconnects.
// `?topic=community&topic=affairs` narrows the stream; the default is both.
func (h *SSEHandler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if origin := r.Header.Get("Origin"); origin != "" {
		for _, allowed := range h.allowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
	}

	channels := h.channelsFor(r.URL.Query()["topic"])

	ctx := r.Context()
	sub := h.cache.Subscribe(ctx, channels...)
	defer sub.Close()

	if h.metrics != nil {
		h.metrics.IncrementConnections(ctx)
		defer h.metrics.DecrementConnections(ctx)
	}
	h.logger.Debugw("SSE connection established", "channels", channels)

	// Periodic comments keep intermediaries from timing out the stream.
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", channelTopic(ev.Channel), ev.Payload)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) channelsFor(topics []string) []string {
	if len(topics) == 0 {
		return []string{cache.ChannelCommunity, cache.ChannelAffairs}
	}
	var channels []string
	for _, topic := range topics {
		switch topic {
		case TopicCommunity:
			channels = append(channels, cache.ChannelCommunity)
		case TopicAffairs:
			channels = append(channels, cache.ChannelAffairs)
		}
	}
	if len(channels) == 0 {
		channels = []string{cache.ChannelCommunity}
	}
	return channels
}
