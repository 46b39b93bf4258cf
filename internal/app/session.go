package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

// PlayState is the controller-side playback state of a session.
type PlayState int

const (
	StateIdle PlayState = iota
	StateLoading
	StatePlaying
	StatePaused
)

// Session is the complete mutable state for one room's playback.
// All fields are guarded by mu; commands, backend lifecycle events and the
// idle timer all serialize on it, which is what keeps per-session mutation
// ordered the way events were observed.
type Session struct {
	room    domain.RoomID
	channel domain.ChannelID
	player  core.Player

	mu      sync.Mutex
	state   PlayState
	queue   []domain.Track
	current *domain.Track
	history []domain.Track
	loop    domain.LoopMode
	volume  int
	preset  domain.FilterPreset
	panel   core.PanelRef

	// idleTimer is the single cancellable deferred operation of a session.
	// Present only while nothing is queued and nothing is playing.
	idleTimer *time.Timer
	idleAt    time.Time
}

func newSession(room domain.RoomID, channel domain.ChannelID, player core.Player, panelChannel domain.ChannelID, volume int) *Session {
	return &Session{
		room:    room,
		channel: channel,
		player:  player,
		loop:    domain.LoopOff,
		volume:  volume,
		preset:  domain.PresetNone,
		panel:   core.PanelRef{Channel: panelChannel},
	}
}

// Room returns the owning room identifier.
func (s *Session) Room() domain.RoomID { return s.room }

// Channel returns the audio channel the backend is bound to.
func (s *Session) Channel() domain.ChannelID { return s.channel }

// Snapshot copies the renderable state under the session lock.
func (s *Session) Snapshot() viewmodels.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := viewmodels.SessionState{
		Queue:    slices.Clone(s.queue),
		Position: s.player.Position(),
		Paused:   s.state == StatePaused,
		Volume:   s.volume,
		Loop:     s.loop,
		Preset:   s.preset,
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	return st
}

// Current returns a copy of the currently loaded track, if any.
func (s *Session) Current() (domain.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Track{}, false
	}
	return *s.current, true
}

// QueueLen reports the number of queued tracks, current excluded.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Loop returns the session loop mode.
func (s *Session) Loop() domain.LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// Volume returns the volume of record.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Preset returns the active filter preset.
func (s *Session) Preset() domain.FilterPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

// IdleDeadline reports the scheduled teardown time, if armed.
func (s *Session) IdleDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleAt, s.idleTimer != nil
}

func (s *Session) panelRef() core.PanelRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

func (s *Session) setPanelMessage(id domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Message = id
}

// cancelIdleLocked stops a pending teardown. Safe against a concurrent
// fire: the timer callback re-validates idleness before destroying.
func (s *Session) cancelIdleLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
		s.idleAt = time.Time{}
	}
}
