package core

import "errors"

// Command-boundary error taxonomy. All of these are recoverable: the
// transport surfaces a message to the caller and session state is left
// unchanged, except where an operation documents otherwise.
var (
	ErrNoChannel       = errors.New("requester is not in an audio channel")
	ErrChannelConflict = errors.New("already playing in another channel of this room")
	ErrNoMatch         = errors.New("no tracks matched the query")
	ErrInvalidTrack    = errors.New("result has no playable payload")
	ErrNothingPlaying  = errors.New("nothing is playing")
	ErrNoHistory       = errors.New("no previously played track")
	ErrSeekUnsupported = errors.New("current track is a live stream")
	ErrNoActiveSession = errors.New("no active session for this room")

	// ErrBackendUnavailable wraps network or protocol failures talking to
	// the remote audio backend.
	ErrBackendUnavailable = errors.New("audio backend unavailable")

	// ErrPanelGone is returned by a panel transport when the recorded
	// message no longer exists.
	ErrPanelGone = errors.New("panel message gone")
)
