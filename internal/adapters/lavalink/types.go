// Package lavalink drives a remote lavalink-compatible audio node: REST
// for control and resolution, a websocket for lifecycle events.
package lavalink

import "encoding/json"

// message is the envelope of every websocket frame the node sends.
type message struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId,omitempty"`

	// op == "ready"
	SessionID string `json:"sessionId,omitempty"`

	// op == "event"
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`

	// op == "playerUpdate"
	State *playerState `json:"state,omitempty"`
}

type playerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
}

// Event type discriminators used by the node.
const (
	evTrackStart     = "TrackStartEvent"
	evTrackEnd       = "TrackEndEvent"
	evTrackException = "TrackExceptionEvent"
	evTrackStuck     = "TrackStuckEvent"
)

// playerUpdate is the PATCH body for player control. Pointer fields are
// omitted when unset so one struct serves every command.
type playerUpdate struct {
	Track    *trackUpdate    `json:"track,omitempty"`
	Paused   *bool           `json:"paused,omitempty"`
	Position *int64          `json:"position,omitempty"`
	Volume   *int            `json:"volume,omitempty"`
	Filters  json.RawMessage `json:"filters,omitempty"`

	VoiceChannelID *string `json:"voiceChannelId,omitempty"`
}

// trackUpdate carries the encoded payload; an explicit null stops the
// current track.
type trackUpdate struct {
	Encoded *string `json:"encoded"`
}
