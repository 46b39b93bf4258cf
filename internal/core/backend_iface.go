package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Jukebox/internal/domain"
)

// EventType classifies asynchronous player lifecycle events.
type EventType string

const (
	EventTrackStart     EventType = "start"
	EventTrackEnd       EventType = "end"
	EventTrackException EventType = "exception"
	EventTrackStuck     EventType = "stuck"
)

// EndReasonReplaced marks the echo of a controller-initiated track swap.
// It is the one end reason that must never trigger an advance.
const EndReasonReplaced = "replaced"

// PlayerEvent is one lifecycle notification from the backend.
type PlayerEvent struct {
	Type   EventType
	Reason string // set for EventTrackEnd
}

// EventHandler receives lifecycle events for one player.
// Handlers run on the backend adapter's read loop; keep them short.
type EventHandler func(PlayerEvent)

// Player is the control surface of one remote player resource.
// A player is exclusively owned by the session that joined it.
type Player interface {
	// Play hands the opaque encoded payload to the backend.
	Play(ctx context.Context, encoded string) error
	SetPaused(ctx context.Context, paused bool) error
	// Stop ends the current track; the backend answers with an end event.
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error
	// SetVolume takes the backend's native 0-1000 scale.
	SetVolume(ctx context.Context, backendVolume int) error
	SetFilters(ctx context.Context, filters FilterConfig) error
	ClearFilters(ctx context.Context) error

	// Position is the backend-reported playhead of the loaded track.
	Position() time.Duration
	Paused() bool
	// HasTrack reports whether the backend holds an actively loaded track.
	HasTrack() bool

	// OnEvent registers the single lifecycle handler. The core registers
	// one at session creation; later calls replace it.
	OnEvent(EventHandler)

	// Close releases the remote resource (leaves the audio channel).
	Close(ctx context.Context) error
}

// Backend is the remote audio-rendering service the core drives.
type Backend interface {
	// Join binds a player to an audio channel of the room.
	Join(ctx context.Context, room domain.RoomID, channel domain.ChannelID) (Player, error)
	// Resolve turns a query or URI into a raw load result. The result keeps
	// both protocol shapes; the resolver adapter normalizes exactly once.
	Resolve(ctx context.Context, identifier string) (*LoadResult, error)
}

// LoadType is the discriminator of the newer resolve protocol shape.
type LoadType string

const (
	LoadTrack    LoadType = "track"
	LoadPlaylist LoadType = "playlist"
	LoadSearch   LoadType = "search"
	LoadEmpty    LoadType = "empty"
	LoadError    LoadType = "error"
)

// RawTrack is one track as the backend encodes it.
type RawTrack struct {
	Encoded string       `json:"encoded"`
	Info    RawTrackInfo `json:"info"`
}

// RawTrackInfo is backend display metadata. Length is milliseconds;
// zero or absent means a live stream.
type RawTrackInfo struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	URI        string `json:"uri"`
	ArtworkURL string `json:"artworkUrl"`
}

// PlaylistInfo describes a resolved playlist.
type PlaylistInfo struct {
	Name string `json:"name"`
}

// LoadResult is the tagged union of the two resolve protocol shapes: the
// legacy flat Tracks list and the LoadType-discriminated Data payload.
// Exactly one of the shapes is populated by the adapter.
type LoadResult struct {
	LoadType LoadType `json:"loadType"`

	// Legacy shape.
	Tracks       []RawTrack    `json:"tracks,omitempty"`
	PlaylistInfo *PlaylistInfo `json:"playlistInfo,omitempty"`

	// Discriminated shape; decoded according to LoadType.
	Data json.RawMessage `json:"data,omitempty"`
}
