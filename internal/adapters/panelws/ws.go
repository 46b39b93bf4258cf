package panelws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type panelConn struct {
	conn *websocket.Conn
	send chan panelFrame

	mu     sync.RWMutex
	closed bool
}

func (c *panelConn) trySend(f panelFrame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *panelConn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSubscribe upgrades the request and streams panel frames for the
// channel until the client goes away.
func (h *Hub) HandleSubscribe(ctx context.Context, c *gin.Context) {
	channel := domain.ChannelID(c.Query("channel"))
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel required"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "panelws").Msg("ws upgrade")
		return
	}

	conn := &panelConn{
		conn: ws,
		send: make(chan panelFrame, 16),
	}
	h.subscribe(channel, conn)
	log.Info().Str("module", "panelws").Str("channel", string(channel)).Msg("panel subscriber connected")

	go h.writePump(ctx, conn)
	go h.readPump(ctx, channel, conn)
}

func (h *Hub) writePump(ctx context.Context, c *panelConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "panelws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				log.Error().Err(err).Str("module", "panelws").Msg("writePump write error")
				return
			}
		}
	}
}

func (h *Hub) readPump(ctx context.Context, channel domain.ChannelID, c *panelConn) {
	defer func() {
		h.unsubscribe(channel, c)
		c.close()
		log.Info().Str("module", "panelws").Str("channel", string(channel)).Msg("panel subscriber gone")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			// Subscribers only listen; reads just detect disconnects.
			if _, _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
