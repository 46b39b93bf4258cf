package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/dkeye/Jukebox/internal/ui/viewmodels"
)

// fakePlayer records every control call and lets tests feed lifecycle
// events back through the registered handler.
type fakePlayer struct {
	mu sync.Mutex

	handler core.EventHandler

	PlayCalls   []string
	StopCalls   int
	PauseCalls  []bool
	SeekCalls   []time.Duration
	VolumeCalls []int
	FilterCalls []core.FilterConfig
	ClearCalls  int
	Closed      bool

	pos      time.Duration
	hasTrack bool
	paused   bool

	Err error // returned by every control call when set
}

func (p *fakePlayer) Play(_ context.Context, encoded string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.PlayCalls = append(p.PlayCalls, encoded)
	p.hasTrack = true
	p.paused = false
	return nil
}

func (p *fakePlayer) SetPaused(_ context.Context, paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.PauseCalls = append(p.PauseCalls, paused)
	p.paused = paused
	return nil
}

func (p *fakePlayer) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.StopCalls++
	return nil
}

func (p *fakePlayer) Seek(_ context.Context, position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.SeekCalls = append(p.SeekCalls, position)
	p.pos = position
	return nil
}

func (p *fakePlayer) SetVolume(_ context.Context, backendVolume int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.VolumeCalls = append(p.VolumeCalls, backendVolume)
	return nil
}

func (p *fakePlayer) SetFilters(_ context.Context, filters core.FilterConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.FilterCalls = append(p.FilterCalls, filters)
	return nil
}

func (p *fakePlayer) ClearFilters(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.ClearCalls++
	return nil
}

func (p *fakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *fakePlayer) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = d
}

func (p *fakePlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *fakePlayer) HasTrack() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasTrack
}

func (p *fakePlayer) OnEvent(h core.EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *fakePlayer) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Emit feeds one lifecycle event to the registered handler, mirroring
// the real adapter's track bookkeeping.
func (p *fakePlayer) Emit(ev core.PlayerEvent) {
	p.mu.Lock()
	switch ev.Type {
	case core.EventTrackStart:
		p.hasTrack = true
	case core.EventTrackEnd:
		p.hasTrack = false
	}
	h := p.handler
	p.mu.Unlock()

	if h != nil {
		h(ev)
	}
}

type fakeBackend struct {
	mu sync.Mutex

	Player  *fakePlayer
	Joins   int
	JoinErr error

	Result     *core.LoadResult
	ResolveErr error
	Resolved   []string
}

func (b *fakeBackend) Join(_ context.Context, _ domain.RoomID, _ domain.ChannelID) (core.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.JoinErr != nil {
		return nil, b.JoinErr
	}
	b.Joins++
	if b.Player == nil {
		b.Player = &fakePlayer{}
	}
	return b.Player, nil
}

func (b *fakeBackend) Resolve(_ context.Context, identifier string) (*core.LoadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Resolved = append(b.Resolved, identifier)
	if b.ResolveErr != nil {
		return nil, b.ResolveErr
	}
	return b.Result, nil
}

type fakeTransport struct {
	mu sync.Mutex

	Creates   int
	Edits     int
	CreateErr error
	EditErr   error
	LastView  viewmodels.PanelView
}

func (tr *fakeTransport) Create(_ context.Context, _ domain.ChannelID, view viewmodels.PanelView) (domain.MessageID, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.CreateErr != nil {
		return "", tr.CreateErr
	}
	tr.Creates++
	tr.LastView = view
	return domain.MessageID("msg-" + string(rune('0'+tr.Creates))), nil
}

func (tr *fakeTransport) Edit(_ context.Context, _ core.PanelRef, view viewmodels.PanelView) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.EditErr != nil {
		return tr.EditErr
	}
	tr.Edits++
	tr.LastView = view
	return nil
}

// singleTrackResult is the legacy flat resolve shape with one track.
func singleTrackResult(encoded, title string, length int64) *core.LoadResult {
	return &core.LoadResult{
		LoadType: core.LoadSearch,
		Tracks: []core.RawTrack{
			{Encoded: encoded, Info: core.RawTrackInfo{Title: title, Author: "artist", Length: length, URI: "https://tracks.example/" + encoded}},
		},
	}
}

func newTestController(backend *fakeBackend, opts Options) (*Controller, *SessionStore, *fakeTransport) {
	store := NewSessionStore(backend)
	tr := &fakeTransport{}
	panels := NewPanelSequencer(store, tr)
	return NewController(store, panels, opts), store, tr
}
