package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// handleEvent reacts to one backend lifecycle event. Events for rooms
// whose session is already gone are dropped; an end event with reason
// "replaced" is the echo of a controller-initiated swap and is ignored.
func (c *Controller) handleEvent(ctx context.Context, room domain.RoomID, ev core.PlayerEvent) {
	s, ok := c.store.Get(room)
	if !ok {
		log.Debug().Str("module", "app.controller").Str("room", string(room)).Str("event", string(ev.Type)).Msg("event for dead session dropped")
		return
	}

	switch ev.Type {
	case core.EventTrackStart:
		s.mu.Lock()
		s.state = StatePlaying
		s.mu.Unlock()
		c.panels.Render(ctx, room)

	case core.EventTrackEnd:
		if ev.Reason == core.EndReasonReplaced {
			return
		}
		c.advanceAfterEnd(ctx, s, room)

	case core.EventTrackException, core.EventTrackStuck:
		// Not surfaced to any caller; treated as an abnormal end.
		log.Warn().Str("module", "app.controller").Str("room", string(room)).Str("event", string(ev.Type)).Msg("playback fault, advancing")
		c.advanceAfterEnd(ctx, s, room)
	}
}

func (c *Controller) advanceAfterEnd(ctx context.Context, s *Session, room domain.RoomID) {
	s.mu.Lock()
	if err := c.advanceLocked(ctx, s, true); err != nil {
		log.Error().Err(err).Str("module", "app.controller").Str("room", string(room)).Msg("advance failed")
	}
	s.mu.Unlock()

	c.panels.Render(ctx, room)
}

// armIdleLocked schedules teardown after the grace period. Re-arming
// replaces the pending timer, never stacks a second one. Caller holds s.mu.
func (c *Controller) armIdleLocked(s *Session) {
	s.cancelIdleLocked()
	room := s.room
	s.idleAt = time.Now().Add(c.opts.IdleGrace)
	s.idleTimer = time.AfterFunc(c.opts.IdleGrace, func() {
		c.idleFire(room)
	})
	log.Debug().Str("module", "app.controller").Str("room", string(room)).Dur("grace", c.opts.IdleGrace).Msg("idle teardown armed")
}

// idleFire runs when the grace period elapses. A cancel racing the fire
// is safe: the session is re-validated as still registered and still idle
// before anything is destroyed.
func (c *Controller) idleFire(room domain.RoomID) {
	s, ok := c.store.Get(room)
	if !ok {
		return
	}
	s.mu.Lock()
	idle := s.current == nil && len(s.queue) == 0
	s.mu.Unlock()
	if !idle {
		return
	}
	log.Info().Str("module", "app.controller").Str("room", string(room)).Msg("idle grace elapsed, tearing down")
	c.store.Destroy(context.Background(), room)
}
