package lavalink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

const reconnectDelay = 5 * time.Second

// Listen connects to the node's event websocket and keeps reading until
// ctx is cancelled, reconnecting after failures. Lifecycle events are
// dispatched to the registered per-player handlers.
func (n *Node) Listen(ctx context.Context) {
	for {
		if err := n.readLoop(ctx); err != nil {
			log.Error().Err(err).Str("module", "lavalink").Msg("event stream lost")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (n *Node) readLoop(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", n.password)
	header.Set("Session-Id", n.sessionID)

	u := fmt.Sprintf("ws://%s/v4/websocket", n.host)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	log.Info().Str("module", "lavalink").Str("host", n.host).Msg("event stream connected")

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		n.handleMessage(msg)
	}
}

func (n *Node) handleMessage(msg message) {
	switch msg.Op {
	case "ready":
		if msg.SessionID != "" {
			n.mu.Lock()
			n.sessionID = msg.SessionID
			n.mu.Unlock()
			log.Info().Str("module", "lavalink").Str("session", msg.SessionID).Msg("node session ready")
		}

	case "playerUpdate":
		if p, ok := n.playerFor(domain.RoomID(msg.GuildID)); ok && msg.State != nil {
			p.updateState(*msg.State)
		}

	case "event":
		p, ok := n.playerFor(domain.RoomID(msg.GuildID))
		if !ok {
			log.Debug().Str("module", "lavalink").Str("room", msg.GuildID).Str("type", msg.Type).Msg("event for unknown player")
			return
		}
		ev, ok := translateEvent(msg)
		if !ok {
			log.Warn().Str("module", "lavalink").Str("type", msg.Type).Msg("unknown event type")
			return
		}
		p.dispatch(ev)
	}
}

func translateEvent(msg message) (core.PlayerEvent, bool) {
	switch msg.Type {
	case evTrackStart:
		return core.PlayerEvent{Type: core.EventTrackStart}, true
	case evTrackEnd:
		return core.PlayerEvent{Type: core.EventTrackEnd, Reason: msg.Reason}, true
	case evTrackException:
		return core.PlayerEvent{Type: core.EventTrackException}, true
	case evTrackStuck:
		return core.PlayerEvent{Type: core.EventTrackStuck}, true
	default:
		return core.PlayerEvent{}, false
	}
}
