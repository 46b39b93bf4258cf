package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

const (
	// MinVolume and MaxVolume bound the volume of record.
	MinVolume = 0
	MaxVolume = 200

	// seekTailGuard keeps a relative seek from landing on the very last
	// millisecond of a track.
	seekTailGuard = time.Second
)

// Options tune the controller. Zero values fall back to defaults.
type Options struct {
	DefaultVolume int
	IdleGrace     time.Duration
	SeekStep      time.Duration
	VolumeStep    int
	PageSize      int
	DefaultSource string
}

func (o Options) withDefaults() Options {
	if o.DefaultVolume <= 0 {
		o.DefaultVolume = 100
	}
	if o.IdleGrace <= 0 {
		o.IdleGrace = 2 * time.Minute
	}
	if o.SeekStep <= 0 {
		o.SeekStep = 10 * time.Second
	}
	if o.VolumeStep <= 0 {
		o.VolumeStep = 10
	}
	if o.PageSize <= 0 {
		o.PageSize = 10
	}
	if o.DefaultSource == "" {
		o.DefaultSource = "ytsearch"
	}
	return o
}

// Controller is the state machine driving what plays next per session.
// It is the only component that mutates queue and current.
type Controller struct {
	store  *SessionStore
	panels *PanelSequencer
	opts   Options
}

// NewController wires the controller over its collaborators.
func NewController(store *SessionStore, panels *PanelSequencer, opts Options) *Controller {
	return &Controller{
		store:  store,
		panels: panels,
		opts:   opts.withDefaults(),
	}
}

// Store exposes the session store to transports.
func (c *Controller) Store() *SessionStore { return c.store }

// Options exposes the effective controller options.
func (c *Controller) Options() Options { return c.opts }

// PlayRequest is the intake form of a play command, already extracted by
// the transport layer.
type PlayRequest struct {
	Room             domain.RoomID
	Requester        domain.UserID
	RequesterChannel domain.ChannelID
	PanelChannel     domain.ChannelID
	Query            string
	Source           string
}

// AddSummary reports what a play command added.
type AddSummary struct {
	Count    int
	First    domain.Track
	Playlist string
}

// Play ensures a session, resolves the query and enqueues the results.
// If nothing is loaded on the backend it immediately starts playback.
func (c *Controller) Play(ctx context.Context, req PlayRequest) (AddSummary, error) {
	s, created, err := c.store.Ensure(ctx, req.Room, req.RequesterChannel, req.PanelChannel, c.opts.DefaultVolume)
	if err != nil {
		return AddSummary{}, err
	}
	if created {
		c.bindSession(s)
		if err := s.player.SetVolume(ctx, backendVolume(s.Volume())); err != nil {
			log.Warn().Err(err).Str("module", "app.controller").Str("room", string(req.Room)).Msg("initial volume push failed")
		}
	}

	source := req.Source
	if source == "" {
		source = c.opts.DefaultSource
	}
	tracks, playlist, err := c.resolve(ctx, req.Query, source, req.Requester)
	if err != nil {
		return AddSummary{}, err
	}

	// The resolve above awaited the backend; the session may have been
	// torn down meanwhile.
	s, ok := c.store.Get(req.Room)
	if !ok {
		return AddSummary{}, core.ErrNoActiveSession
	}

	s.mu.Lock()
	s.queue = append(s.queue, tracks...)
	s.cancelIdleLocked()
	if s.current == nil && !s.player.HasTrack() {
		if err := c.advanceLocked(ctx, s, false); err != nil {
			s.mu.Unlock()
			return AddSummary{}, err
		}
	}
	s.mu.Unlock()

	c.panels.Render(ctx, req.Room)

	sum := AddSummary{Count: len(tracks), First: tracks[0]}
	if playlist != nil {
		sum.Playlist = playlist.Name
	}
	return sum, nil
}

// bindSession registers the lifecycle handler; one per session, at
// creation time.
func (c *Controller) bindSession(s *Session) {
	room := s.Room()
	s.player.OnEvent(func(ev core.PlayerEvent) {
		c.handleEvent(context.Background(), room, ev)
	})
}

// advanceLocked pops the next track into current and starts it, applying
// the loop policy to a finished track first. Caller holds s.mu.
func (c *Controller) advanceLocked(ctx context.Context, s *Session, endedNormally bool) error {
	if endedNormally && s.current != nil {
		finished := *s.current
		switch s.loop {
		case domain.LoopTrack:
			s.queue = append([]domain.Track{finished}, s.queue...)
		case domain.LoopQueue:
			s.queue = append(s.queue, finished)
		default:
			s.history = append(s.history, finished)
		}
	}

	if len(s.queue) == 0 {
		s.current = nil
		s.state = StateIdle
		c.armIdleLocked(s)
		return nil
	}

	next := s.queue[0]
	s.queue = s.queue[1:]
	s.current = &next
	s.cancelIdleLocked()
	s.state = StateLoading

	if err := s.player.Play(ctx, next.Encoded); err != nil {
		return wrapBackend(err)
	}
	return nil
}

// Pause pauses the current track.
func (c *Controller) Pause(ctx context.Context, room domain.RoomID) error {
	return c.setPaused(ctx, room, true)
}

// Resume resumes a paused track.
func (c *Controller) Resume(ctx context.Context, room domain.RoomID) error {
	return c.setPaused(ctx, room, false)
}

// Toggle flips between paused and playing.
func (c *Controller) Toggle(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}
	s.mu.Lock()
	paused := s.state == StatePaused
	s.mu.Unlock()
	return c.setPaused(ctx, room, !paused)
}

func (c *Controller) setPaused(ctx context.Context, room domain.RoomID, paused bool) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return core.ErrNothingPlaying
	}
	if err := s.player.SetPaused(ctx, paused); err != nil {
		s.mu.Unlock()
		return wrapBackend(err)
	}
	if paused {
		s.state = StatePaused
	} else {
		s.state = StatePlaying
	}
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return nil
}

// Skip stops the current track on the backend. It never advances the
// queue itself; the resulting end event does, which is what keeps a skip
// from double-advancing.
func (c *Controller) Skip(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return core.ErrNothingPlaying
	}
	if err := s.player.Stop(ctx); err != nil {
		return wrapBackend(err)
	}
	return nil
}

// Previous re-queues the current track at the head and replays the most
// recent history entry.
func (c *Controller) Previous(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		return core.ErrNoHistory
	}

	last := s.history[len(s.history)-1]
	if s.current != nil {
		s.queue = append([]domain.Track{*s.current}, s.queue...)
	}
	s.history = s.history[:len(s.history)-1]
	s.current = &last
	s.cancelIdleLocked()
	s.state = StateLoading
	if err := s.player.Play(ctx, last.Encoded); err != nil {
		s.mu.Unlock()
		return wrapBackend(err)
	}
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return nil
}

// SeekRelative moves the playhead by delta, clamped to the track bounds,
// and returns the target position.
func (c *Controller) SeekRelative(ctx context.Context, room domain.RoomID, delta time.Duration) (time.Duration, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return 0, core.ErrNoActiveSession
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return 0, core.ErrNothingPlaying
	}
	if s.current.IsLive() {
		s.mu.Unlock()
		return 0, core.ErrSeekUnsupported
	}

	target := s.player.Position() + delta
	maxPos := s.current.Duration - seekTailGuard
	if maxPos < 0 {
		maxPos = 0
	}
	if target < 0 {
		target = 0
	}
	if target > maxPos {
		target = maxPos
	}
	if err := s.player.Seek(ctx, target); err != nil {
		s.mu.Unlock()
		return 0, wrapBackend(err)
	}
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return target, nil
}

// SeekBack steps the playhead back by the configured step.
func (c *Controller) SeekBack(ctx context.Context, room domain.RoomID) (time.Duration, error) {
	return c.SeekRelative(ctx, room, -c.opts.SeekStep)
}

// SeekForward steps the playhead forward by the configured step.
func (c *Controller) SeekForward(ctx context.Context, room domain.RoomID) (time.Duration, error) {
	return c.SeekRelative(ctx, room, c.opts.SeekStep)
}

// SetVolume clamps v into the valid range, records it, and pushes the
// converted value to the backend. Returns the clamped volume of record.
func (c *Controller) SetVolume(ctx context.Context, room domain.RoomID, v int) (int, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return 0, core.ErrNoActiveSession
	}

	if v < MinVolume {
		v = MinVolume
	}
	if v > MaxVolume {
		v = MaxVolume
	}

	s.mu.Lock()
	if err := s.player.SetVolume(ctx, backendVolume(v)); err != nil {
		s.mu.Unlock()
		return 0, wrapBackend(err)
	}
	s.volume = v
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return v, nil
}

// VolumeBy adjusts the volume of record by delta.
func (c *Controller) VolumeBy(ctx context.Context, room domain.RoomID, delta int) (int, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return 0, core.ErrNoActiveSession
	}
	return c.SetVolume(ctx, room, s.Volume()+delta)
}

// VolumeUp raises the volume by one configured step.
func (c *Controller) VolumeUp(ctx context.Context, room domain.RoomID) (int, error) {
	return c.VolumeBy(ctx, room, c.opts.VolumeStep)
}

// VolumeDown lowers the volume by one configured step.
func (c *Controller) VolumeDown(ctx context.Context, room domain.RoomID) (int, error) {
	return c.VolumeBy(ctx, room, -c.opts.VolumeStep)
}

// SetLoop sets the loop mode.
func (c *Controller) SetLoop(ctx context.Context, room domain.RoomID, mode domain.LoopMode) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}
	s.mu.Lock()
	s.loop = mode
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return nil
}

// CycleLoop advances off -> track -> queue -> off and returns the new mode.
func (c *Controller) CycleLoop(ctx context.Context, room domain.RoomID) (domain.LoopMode, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return domain.LoopOff, core.ErrNoActiveSession
	}
	s.mu.Lock()
	s.loop = s.loop.Next()
	mode := s.loop
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return mode, nil
}

// Shuffle permutes the queue uniformly. Queues of 0 or 1 are left alone.
func (c *Controller) Shuffle(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	if len(s.queue) > 1 {
		rand.Shuffle(len(s.queue), func(i, j int) {
			s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
		})
	}
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return nil
}

// ClearQueue empties the queue without touching the current track.
func (c *Controller) ClearQueue(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return nil
}

// Stop empties the queue, stops the backend track best-effort, and always
// destroys the session. A backend failure never blocks destruction.
func (c *Controller) Stop(ctx context.Context, room domain.RoomID) error {
	s, ok := c.store.Get(room)
	if !ok {
		return core.ErrNoActiveSession
	}

	s.mu.Lock()
	s.queue = nil
	s.current = nil
	if err := s.player.Stop(ctx); err != nil {
		log.Warn().Err(err).Str("module", "app.controller").Str("room", string(room)).Msg("backend stop failed, destroying anyway")
	}
	s.mu.Unlock()

	c.store.Destroy(ctx, room)
	return nil
}

// Refresh re-renders the panel from current state.
func (c *Controller) Refresh(ctx context.Context, room domain.RoomID) error {
	if _, ok := c.store.Get(room); !ok {
		return core.ErrNoActiveSession
	}
	c.panels.Render(ctx, room)
	return nil
}

// Now returns the current track.
func (c *Controller) Now(room domain.RoomID) (domain.Track, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return domain.Track{}, core.ErrNoActiveSession
	}
	t, ok := s.Current()
	if !ok {
		return domain.Track{}, core.ErrNothingPlaying
	}
	return t, nil
}

// Panel projects the session into the panel view without rendering it.
func (c *Controller) Panel(room domain.RoomID) (viewmodels.PanelView, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return viewmodels.PanelView{}, core.ErrNoActiveSession
	}
	return viewmodels.BuildPanel(s.Snapshot()), nil
}

// QueuePage projects one page of the queue view.
func (c *Controller) QueuePage(room domain.RoomID, page, pageSize int) (viewmodels.QueuePage, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return viewmodels.QueuePage{}, core.ErrNoActiveSession
	}
	return viewmodels.BuildQueuePage(s.Snapshot(), page, pageSize), nil
}

// SameChannel is the co-location rule for control commands: when the
// backend is connected the requester must share its channel, otherwise
// any occupied channel will do.
func (c *Controller) SameChannel(room domain.RoomID, requesterChannel domain.ChannelID) bool {
	s, ok := c.store.Get(room)
	if !ok {
		return requesterChannel != ""
	}
	return requesterChannel != "" && requesterChannel == s.Channel()
}

// backendVolume converts the 0-200 volume of record to the backend's
// native 0-1000 scale. This is the only place the conversion exists.
func backendVolume(v int) int {
	return v * 5
}

func wrapBackend(err error) error {
	if errors.Is(err, core.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
}
