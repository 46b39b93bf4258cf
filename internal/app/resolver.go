package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// resolve turns a query into playable tracks. Direct URIs resolve as-is;
// anything else is prefixed with the search source.
func (c *Controller) resolve(ctx context.Context, query, source string, requester domain.UserID) ([]domain.Track, *core.PlaylistInfo, error) {
	identifier := query
	if !isURL(query) {
		identifier = fmt.Sprintf("%s:%s", source, query)
	}

	res, err := c.store.backend.Resolve(ctx, identifier)
	if err != nil {
		return nil, nil, wrapBackend(err)
	}

	raw, playlist, err := normalizeLoadResult(res)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, core.ErrNoMatch
	}

	playable := lo.Filter(raw, func(t core.RawTrack, _ int) bool {
		return t.Encoded != ""
	})
	if len(playable) == 0 {
		return nil, nil, core.ErrInvalidTrack
	}

	tracks := lo.Map(playable, func(t core.RawTrack, _ int) domain.Track {
		return toTrack(t, requester)
	})
	return tracks, playlist, nil
}

// normalizeLoadResult folds both backend protocol shapes into one list.
// The legacy shape carries a flat Tracks array; the newer one
// discriminates a Data payload on LoadType. Nothing past this function
// ever branches on protocol shape again.
func normalizeLoadResult(res *core.LoadResult) ([]core.RawTrack, *core.PlaylistInfo, error) {
	if res == nil {
		return nil, nil, nil
	}

	if res.Tracks != nil {
		return res.Tracks, res.PlaylistInfo, nil
	}

	switch core.LoadType(strings.ToLower(string(res.LoadType))) {
	case core.LoadTrack:
		var t core.RawTrack
		if err := json.Unmarshal(res.Data, &t); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
		}
		return []core.RawTrack{t}, nil, nil

	case core.LoadPlaylist:
		var p struct {
			Info   core.PlaylistInfo `json:"info"`
			Tracks []core.RawTrack   `json:"tracks"`
		}
		if err := json.Unmarshal(res.Data, &p); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
		}
		return p.Tracks, &p.Info, nil

	case core.LoadSearch:
		var ts []core.RawTrack
		if err := json.Unmarshal(res.Data, &ts); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
		}
		return ts, nil, nil

	default:
		// empty, error, or anything unrecognized: no tracks.
		return nil, nil, nil
	}
}

func toTrack(t core.RawTrack, requester domain.UserID) domain.Track {
	dur := time.Duration(t.Info.Length) * time.Millisecond
	if t.Info.IsStream {
		dur = 0
	}
	return domain.Track{
		Encoded:    t.Encoded,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		Duration:   dur,
		ArtworkURL: t.Info.ArtworkURL,
		URI:        t.Info.URI,
		Requester:  requester,
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
