package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// SessionStore is the sole owner of session lifecycle. At most one
// session exists per room at any time.
type SessionStore struct {
	backend core.Backend

	mu       sync.RWMutex
	sessions map[domain.RoomID]*Session
}

// NewSessionStore builds an empty store over the given backend.
func NewSessionStore(backend core.Backend) *SessionStore {
	return &SessionStore{
		backend:  backend,
		sessions: make(map[domain.RoomID]*Session),
	}
}

// Get is a pure lookup; it never creates.
func (st *SessionStore) Get(room domain.RoomID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[room]
	return s, ok
}

// Ensure returns the room's session, creating it when absent. Creation
// requires the requester to occupy an audio channel and the backend to be
// free in this room; the backend join happens under the store lock so two
// callers cannot both create a session for the same room.
//
// The second return value reports whether the session was just created.
func (st *SessionStore) Ensure(ctx context.Context, room domain.RoomID, requesterChannel, panelChannel domain.ChannelID, volume int) (*Session, bool, error) {
	if requesterChannel == "" {
		return nil, false, core.ErrNoChannel
	}

	st.mu.RLock()
	s, ok := st.sessions[room]
	st.mu.RUnlock()
	if ok {
		if s.Channel() != requesterChannel {
			return nil, false, core.ErrChannelConflict
		}
		return s, false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[room]; ok {
		if s.Channel() != requesterChannel {
			return nil, false, core.ErrChannelConflict
		}
		return s, false, nil
	}

	player, err := st.backend.Join(ctx, room, requesterChannel)
	if err != nil {
		return nil, false, wrapBackend(err)
	}

	s = newSession(room, requesterChannel, player, panelChannel, volume)
	st.sessions[room] = s
	log.Info().Str("module", "app.store").Str("room", string(room)).Str("channel", string(requesterChannel)).Msg("session created")
	return s, true, nil
}

// Destroy tears the session down: pending timer cancelled, backend
// resource released, entry removed. Every step is best-effort so a failed
// release never blocks removal. Destroying an absent session is a no-op.
func (st *SessionStore) Destroy(ctx context.Context, room domain.RoomID) {
	st.mu.Lock()
	s, ok := st.sessions[room]
	if ok {
		delete(st.sessions, room)
	}
	st.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.cancelIdleLocked()
	s.queue = nil
	s.current = nil
	s.state = StateIdle
	s.mu.Unlock()

	if err := s.player.Close(ctx); err != nil {
		log.Warn().Err(err).Str("module", "app.store").Str("room", string(room)).Msg("backend release failed")
	}
	log.Info().Str("module", "app.store").Str("room", string(room)).Msg("session destroyed")
}

// Rooms snapshots the identifiers of all live sessions.
func (st *SessionStore) Rooms() []domain.RoomID {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(st.sessions))
	for room := range st.sessions {
		out = append(out, room)
	}
	return out
}
