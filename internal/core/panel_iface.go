package core

import (
	"context"

	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

// PanelRef identifies the one live panel message of a session.
type PanelRef struct {
	Channel domain.ChannelID
	Message domain.MessageID
}

// PanelTransport draws panel views somewhere users can see them.
// All operations may fail; panel staleness is never fatal to playback.
type PanelTransport interface {
	// Create posts a new panel message and returns its identity.
	Create(ctx context.Context, channel domain.ChannelID, view viewmodels.PanelView) (domain.MessageID, error)
	// Edit updates an existing panel message in place. It returns
	// ErrPanelGone when the message no longer exists.
	Edit(ctx context.Context, ref PanelRef, view viewmodels.PanelView) error
}
