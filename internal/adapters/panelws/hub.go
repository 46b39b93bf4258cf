// Package panelws renders session panels to websocket subscribers. It is
// a core.PanelTransport: each "message" is an addressable panel the hub
// remembers, and every create or edit fans the view out to the room's
// subscribers.
package panelws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

// ErrBackpressure is returned when a subscriber cannot keep up.
var ErrBackpressure = errors.New("backpressure")

// Hub tracks panel messages and their subscribers per channel.
type Hub struct {
	mu     sync.RWMutex
	panels map[core.PanelRef]viewmodels.PanelView
	subs   map[domain.ChannelID]map[*panelConn]struct{}
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{
		panels: make(map[core.PanelRef]viewmodels.PanelView),
		subs:   make(map[domain.ChannelID]map[*panelConn]struct{}),
	}
}

// Create registers a new panel message and pushes it to subscribers.
func (h *Hub) Create(_ context.Context, channel domain.ChannelID, view viewmodels.PanelView) (domain.MessageID, error) {
	id := domain.MessageID(uuid.NewString())
	ref := core.PanelRef{Channel: channel, Message: id}

	h.mu.Lock()
	h.panels[ref] = view
	h.mu.Unlock()

	h.broadcast(ref, view)
	log.Debug().Str("module", "panelws").Str("channel", string(channel)).Str("message", string(id)).Msg("panel created")
	return id, nil
}

// Edit updates a known panel in place. Editing a forgotten panel returns
// core.ErrPanelGone so the sequencer can post a replacement.
func (h *Hub) Edit(_ context.Context, ref core.PanelRef, view viewmodels.PanelView) error {
	h.mu.Lock()
	if _, ok := h.panels[ref]; !ok {
		h.mu.Unlock()
		return core.ErrPanelGone
	}
	h.panels[ref] = view
	h.mu.Unlock()

	h.broadcast(ref, view)
	return nil
}

// Delete drops a panel message, as an external party would.
func (h *Hub) Delete(ref core.PanelRef) {
	h.mu.Lock()
	delete(h.panels, ref)
	h.mu.Unlock()
}

// Panel fetches a panel view by identity.
func (h *Hub) Panel(ref core.PanelRef) (viewmodels.PanelView, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.panels[ref]
	return v, ok
}

func (h *Hub) subscribe(channel domain.ChannelID, c *panelConn) {
	h.mu.Lock()
	set, ok := h.subs[channel]
	if !ok {
		set = make(map[*panelConn]struct{})
		h.subs[channel] = set
	}
	set[c] = struct{}{}

	// Replay the channel's live panels to the new subscriber.
	var replay []panelFrame
	for ref, view := range h.panels {
		if ref.Channel == channel {
			replay = append(replay, panelFrame{Type: "panel", Channel: ref.Channel, Message: ref.Message, View: view})
		}
	}
	h.mu.Unlock()

	for _, f := range replay {
		_ = c.trySend(f)
	}
}

func (h *Hub) unsubscribe(channel domain.ChannelID, c *panelConn) {
	h.mu.Lock()
	if set, ok := h.subs[channel]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, channel)
		}
	}
	h.mu.Unlock()
}

type panelFrame struct {
	Type    string               `json:"type"`
	Channel domain.ChannelID     `json:"channel"`
	Message domain.MessageID     `json:"message"`
	View    viewmodels.PanelView `json:"view"`
}

func (h *Hub) broadcast(ref core.PanelRef, view viewmodels.PanelView) {
	frame := panelFrame{Type: "panel", Channel: ref.Channel, Message: ref.Message, View: view}

	h.mu.RLock()
	conns := make([]*panelConn, 0, len(h.subs[ref.Channel]))
	for c := range h.subs[ref.Channel] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.trySend(frame); err != nil {
			log.Debug().Err(err).Str("module", "panelws").Str("channel", string(ref.Channel)).Msg("subscriber dropped frame")
		}
	}
}
