package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

// PanelSequencer keeps at most one live panel message per session: create
// when absent, edit in place, replace when the recorded message was
// deleted externally. Every failure here is swallowed; the panel is
// best-effort UI, never a correctness dependency.
type PanelSequencer struct {
	store     *SessionStore
	transport core.PanelTransport
}

// NewPanelSequencer wires the sequencer over the store and a transport.
func NewPanelSequencer(store *SessionStore, transport core.PanelTransport) *PanelSequencer {
	return &PanelSequencer{store: store, transport: transport}
}

// Render projects the room's session and pushes it to the panel message.
func (p *PanelSequencer) Render(ctx context.Context, room domain.RoomID) {
	s, ok := p.store.Get(room)
	if !ok {
		return
	}

	view := viewmodels.BuildPanel(s.Snapshot())
	ref := s.panelRef()
	if ref.Channel == "" {
		return
	}

	if ref.Message == "" {
		p.create(ctx, room, s, ref.Channel, view)
		return
	}

	err := p.transport.Edit(ctx, ref, view)
	if err == nil {
		return
	}
	if errors.Is(err, core.ErrPanelGone) {
		// Message deleted out from under us; forget it and post anew.
		s.setPanelMessage("")
		p.create(ctx, room, s, ref.Channel, view)
		return
	}
	log.Debug().Err(err).Str("module", "app.panel").Str("room", string(room)).Msg("panel edit failed")
}

func (p *PanelSequencer) create(ctx context.Context, room domain.RoomID, s *Session, channel domain.ChannelID, view viewmodels.PanelView) {
	id, err := p.transport.Create(ctx, channel, view)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.panel").Str("room", string(room)).Msg("panel create failed")
		return
	}
	// The create awaited the transport; only record the message if the
	// session is still the registered one.
	if cur, ok := p.store.Get(room); ok && cur == s {
		s.setPanelMessage(id)
	}
}
