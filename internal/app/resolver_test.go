package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Jukebox/internal/core"
)

func resolveWith(t *testing.T, res *core.LoadResult) (*fakeBackend, error) {
	t.Helper()
	b := &fakeBackend{Result: res}
	ctrl, _, _ := newTestController(b, Options{})
	_, err := ctrl.Play(context.Background(), playReq("some query"))
	return b, err
}

func TestResolve_LegacyFlatShape(t *testing.T) {
	b := &fakeBackend{Result: &core.LoadResult{
		LoadType: "SEARCH_RESULT",
		Tracks: []core.RawTrack{
			{Encoded: "e1", Info: core.RawTrackInfo{Title: "One", Length: 60_000}},
			{Encoded: "e2", Info: core.RawTrackInfo{Title: "Two", Length: 90_000}},
		},
	}}
	ctrl, store, _ := newTestController(b, Options{})

	sum := mustPlay(t, ctrl, "some query")
	if sum.Count != 2 {
		t.Errorf("Count = %d, want 2", sum.Count)
	}
	s, _ := store.Get(testRoom)
	cur, _ := s.Current()
	if cur.Title != "One" || cur.Duration != time.Minute {
		t.Errorf("Current = %+v, want One at 1m", cur)
	}
}

func TestResolve_DiscriminatedTrack(t *testing.T) {
	data, _ := json.Marshal(core.RawTrack{Encoded: "e1", Info: core.RawTrackInfo{Title: "Solo", Length: 45_000}})
	b := &fakeBackend{Result: &core.LoadResult{LoadType: core.LoadTrack, Data: data}}
	ctrl, store, _ := newTestController(b, Options{})

	sum := mustPlay(t, ctrl, "https://tracks.example/solo")
	if sum.Count != 1 {
		t.Errorf("Count = %d, want 1", sum.Count)
	}
	s, _ := store.Get(testRoom)
	cur, _ := s.Current()
	if cur.Title != "Solo" {
		t.Errorf("Current = %q, want Solo", cur.Title)
	}
}

func TestResolve_DiscriminatedPlaylist(t *testing.T) {
	data, _ := json.Marshal(struct {
		Info   core.PlaylistInfo `json:"info"`
		Tracks []core.RawTrack   `json:"tracks"`
	}{
		Info: core.PlaylistInfo{Name: "Mix"},
		Tracks: []core.RawTrack{
			{Encoded: "e1", Info: core.RawTrackInfo{Title: "One"}},
			{Encoded: "e2", Info: core.RawTrackInfo{Title: "Two"}},
			{Encoded: "e3", Info: core.RawTrackInfo{Title: "Three"}},
		},
	})
	b := &fakeBackend{Result: &core.LoadResult{LoadType: core.LoadPlaylist, Data: data}}
	ctrl, store, _ := newTestController(b, Options{})

	sum := mustPlay(t, ctrl, "https://tracks.example/mix")
	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
	if sum.Playlist != "Mix" {
		t.Errorf("Playlist = %q, want Mix", sum.Playlist)
	}
	s, _ := store.Get(testRoom)
	if s.QueueLen() != 2 {
		t.Errorf("QueueLen = %d, want 2 behind the current track", s.QueueLen())
	}
}

func TestResolve_DiscriminatedSearch(t *testing.T) {
	data, _ := json.Marshal([]core.RawTrack{
		{Encoded: "e1", Info: core.RawTrackInfo{Title: "Hit"}},
	})
	b := &fakeBackend{Result: &core.LoadResult{LoadType: core.LoadSearch, Data: data}}
	ctrl, _, _ := newTestController(b, Options{})

	sum := mustPlay(t, ctrl, "hit song")
	if sum.Count != 1 || sum.First.Title != "Hit" {
		t.Errorf("summary = %+v, want one Hit", sum)
	}
}

func TestResolve_EmptyIsNoMatch(t *testing.T) {
	_, err := resolveWith(t, &core.LoadResult{LoadType: core.LoadEmpty})
	if !errors.Is(err, core.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolve_ErrorLoadIsNoMatch(t *testing.T) {
	_, err := resolveWith(t, &core.LoadResult{LoadType: core.LoadError})
	if !errors.Is(err, core.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolve_MissingPayloadIsInvalid(t *testing.T) {
	_, err := resolveWith(t, &core.LoadResult{
		LoadType: "SEARCH_RESULT",
		Tracks:   []core.RawTrack{{Info: core.RawTrackInfo{Title: "Ghost"}}},
	})
	if !errors.Is(err, core.ErrInvalidTrack) {
		t.Errorf("err = %v, want ErrInvalidTrack", err)
	}
}

func TestResolve_BackendFailure(t *testing.T) {
	b := &fakeBackend{ResolveErr: errors.New("timeout")}
	ctrl, _, _ := newTestController(b, Options{})

	_, err := ctrl.Play(context.Background(), playReq("anything"))
	if !errors.Is(err, core.ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestResolve_StreamHasNoDuration(t *testing.T) {
	res := singleTrackResult("eL", "Radio", 123_456)
	res.Tracks[0].Info.IsStream = true
	b := &fakeBackend{Result: res}
	ctrl, store, _ := newTestController(b, Options{})

	mustPlay(t, ctrl, "radio")
	s, _ := store.Get(testRoom)
	cur, _ := s.Current()
	if !cur.IsLive() {
		t.Errorf("Duration = %v, stream must be live", cur.Duration)
	}
}
