package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Jukebox/internal/core"
)

func TestStore_EnsureCreatesOnce(t *testing.T) {
	b := &fakeBackend{}
	store := NewSessionStore(b)
	ctx := context.Background()

	s1, created, err := store.Ensure(ctx, testRoom, testChannel, testPanelCh, 100)
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if !created {
		t.Error("first Ensure must report created")
	}

	s2, created, err := store.Ensure(ctx, testRoom, testChannel, testPanelCh, 100)
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if created {
		t.Error("second Ensure must reuse")
	}
	if s1 != s2 {
		t.Error("Ensure handed out two sessions for one room")
	}
	if b.Joins != 1 {
		t.Errorf("Joins = %d, want 1", b.Joins)
	}
}

func TestStore_EnsureConcurrent(t *testing.T) {
	b := &fakeBackend{}
	store := NewSessionStore(b)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Ensure(context.Background(), testRoom, testChannel, testPanelCh, 100)
			if err != nil {
				t.Errorf("Ensure error: %v", err)
			}
		}()
	}
	wg.Wait()

	if b.Joins != 1 {
		t.Errorf("Joins = %d, want exactly one backend join", b.Joins)
	}
	if got := len(store.Rooms()); got != 1 {
		t.Errorf("Rooms = %d, want 1", got)
	}
}

func TestStore_EnsureRejectsEmptyChannel(t *testing.T) {
	store := NewSessionStore(&fakeBackend{})

	_, _, err := store.Ensure(context.Background(), testRoom, "", testPanelCh, 100)
	if !errors.Is(err, core.ErrNoChannel) {
		t.Errorf("err = %v, want ErrNoChannel", err)
	}
}

func TestStore_EnsureConflictOnOtherChannel(t *testing.T) {
	store := NewSessionStore(&fakeBackend{})
	ctx := context.Background()

	if _, _, err := store.Ensure(ctx, testRoom, testChannel, testPanelCh, 100); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	_, _, err := store.Ensure(ctx, testRoom, "voice-2", testPanelCh, 100)
	if !errors.Is(err, core.ErrChannelConflict) {
		t.Errorf("err = %v, want ErrChannelConflict", err)
	}
}

func TestStore_EnsureJoinFailure(t *testing.T) {
	b := &fakeBackend{JoinErr: errors.New("node down")}
	store := NewSessionStore(b)

	_, _, err := store.Ensure(context.Background(), testRoom, testChannel, testPanelCh, 100)
	if !errors.Is(err, core.ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
	if len(store.Rooms()) != 0 {
		t.Error("failed create must not register a session")
	}
}

func TestStore_DestroyIdempotent(t *testing.T) {
	b := &fakeBackend{}
	store := NewSessionStore(b)
	ctx := context.Background()

	if _, _, err := store.Ensure(ctx, testRoom, testChannel, testPanelCh, 100); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}

	store.Destroy(ctx, testRoom)
	if _, ok := store.Get(testRoom); ok {
		t.Error("session still present after destroy")
	}
	if !b.Player.Closed {
		t.Error("player not released")
	}

	// Second destroy is a no-op.
	store.Destroy(ctx, testRoom)
}
