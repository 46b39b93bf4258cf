package domain

import "time"

// Track is an immutable descriptor of one playable item. Encoded is the
// backend-specific payload and passes through the core unmodified.
type Track struct {
	Encoded    string
	Title      string
	Author     string
	Duration   time.Duration // zero means live stream, unseekable
	ArtworkURL string
	URI        string
	Requester  UserID
}

// IsLive reports whether the track has no finite duration.
func (t Track) IsLive() bool {
	return t.Duration <= 0
}
