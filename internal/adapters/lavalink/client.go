package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// Node is one remote audio node. It implements core.Backend.
type Node struct {
	host     string
	password string
	http     *http.Client

	mu        sync.RWMutex
	sessionID string
	players   map[domain.RoomID]*player
}

// NewNode builds a client for the node at host (host:port, no scheme).
func NewNode(host, password string) *Node {
	return &Node{
		host:      host,
		password:  password,
		http:      &http.Client{Timeout: 10 * time.Second},
		sessionID: uuid.NewString(),
		players:   make(map[domain.RoomID]*player),
	}
}

// Join binds a player to an audio channel. The returned handle is owned
// by exactly one session; a second Join for the same room reuses the
// remote player but hands out a fresh handle.
func (n *Node) Join(ctx context.Context, room domain.RoomID, channel domain.ChannelID) (core.Player, error) {
	ch := string(channel)
	if err := n.patchPlayer(ctx, room, playerUpdate{VoiceChannelID: &ch}); err != nil {
		return nil, err
	}

	p := &player{node: n, room: room}
	n.mu.Lock()
	n.players[room] = p
	n.mu.Unlock()

	log.Info().Str("module", "lavalink").Str("room", string(room)).Str("channel", ch).Msg("joined audio channel")
	return p, nil
}

// Resolve loads tracks for an identifier. The raw result keeps whichever
// protocol shape the node answered with.
func (n *Node) Resolve(ctx context.Context, identifier string) (*core.LoadResult, error) {
	u := fmt.Sprintf("http://%s/v4/loadtracks?identifier=%s", n.host, url.QueryEscape(identifier))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", n.password)

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: loadtracks status %d", core.ErrBackendUnavailable, resp.StatusCode)
	}

	var out core.LoadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	return &out, nil
}

// patchPlayer issues one player control command.
func (n *Node) patchPlayer(ctx context.Context, room domain.RoomID, upd playerUpdate) error {
	n.mu.RLock()
	sid := n.sessionID
	n.mu.RUnlock()

	body, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("http://%s/v4/sessions/%s/players/%s", n.host, sid, room)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", n.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: player patch status %d: %s", core.ErrBackendUnavailable, resp.StatusCode, msg)
	}
	return nil
}

// destroyPlayer removes the remote player and drops the local handle.
func (n *Node) destroyPlayer(ctx context.Context, room domain.RoomID) error {
	n.mu.Lock()
	delete(n.players, room)
	sid := n.sessionID
	n.mu.Unlock()

	u := fmt.Sprintf("http://%s/v4/sessions/%s/players/%s", n.host, sid, room)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", n.password)

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: player delete status %d", core.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (n *Node) playerFor(room domain.RoomID) (*player, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	p, ok := n.players[room]
	return p, ok
}

// player is the handle for one room's remote player. Implements
// core.Player.
type player struct {
	node *Node
	room domain.RoomID

	mu         sync.Mutex
	handler    core.EventHandler
	hasTrack   bool
	paused     bool
	position   time.Duration
	positionAt time.Time
}

func (p *player) Play(ctx context.Context, encoded string) error {
	if err := p.node.patchPlayer(ctx, p.room, playerUpdate{Track: &trackUpdate{Encoded: &encoded}}); err != nil {
		return err
	}
	p.mu.Lock()
	p.hasTrack = true
	p.paused = false
	p.position = 0
	p.positionAt = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *player) SetPaused(ctx context.Context, paused bool) error {
	if err := p.node.patchPlayer(ctx, p.room, playerUpdate{Paused: &paused}); err != nil {
		return err
	}
	p.mu.Lock()
	// Freeze the interpolated position at the moment of the flip.
	p.position = p.positionLocked()
	p.positionAt = time.Now()
	p.paused = paused
	p.mu.Unlock()
	return nil
}

func (p *player) Stop(ctx context.Context) error {
	return p.node.patchPlayer(ctx, p.room, playerUpdate{Track: &trackUpdate{Encoded: nil}})
}

func (p *player) Seek(ctx context.Context, position time.Duration) error {
	ms := position.Milliseconds()
	if err := p.node.patchPlayer(ctx, p.room, playerUpdate{Position: &ms}); err != nil {
		return err
	}
	p.mu.Lock()
	p.position = position
	p.positionAt = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *player) SetVolume(ctx context.Context, backendVolume int) error {
	return p.node.patchPlayer(ctx, p.room, playerUpdate{Volume: &backendVolume})
}

func (p *player) SetFilters(ctx context.Context, filters core.FilterConfig) error {
	raw, err := json.Marshal(filters)
	if err != nil {
		return err
	}
	return p.node.patchPlayer(ctx, p.room, playerUpdate{Filters: raw})
}

func (p *player) ClearFilters(ctx context.Context) error {
	return p.node.patchPlayer(ctx, p.room, playerUpdate{Filters: json.RawMessage(`{}`)})
}

func (p *player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// positionLocked interpolates between node updates while playing.
func (p *player) positionLocked() time.Duration {
	if !p.hasTrack {
		return 0
	}
	if p.paused {
		return p.position
	}
	return p.position + time.Since(p.positionAt)
}

func (p *player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *player) HasTrack() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasTrack
}

func (p *player) OnEvent(h core.EventHandler) {
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()
}

func (p *player) Close(ctx context.Context) error {
	return p.node.destroyPlayer(ctx, p.room)
}

// dispatch translates one node event and hands it to the session handler.
func (p *player) dispatch(ev core.PlayerEvent) {
	p.mu.Lock()
	switch ev.Type {
	case core.EventTrackStart:
		p.hasTrack = true
		p.position = 0
		p.positionAt = time.Now()
	case core.EventTrackEnd:
		p.hasTrack = false
	}
	h := p.handler
	p.mu.Unlock()

	if h != nil {
		h(ev)
	}
}

func (p *player) updateState(st playerState) {
	p.mu.Lock()
	p.position = time.Duration(st.Position) * time.Millisecond
	p.positionAt = time.Now()
	p.mu.Unlock()
}
