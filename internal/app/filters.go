package app

import (
	"context"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// presetConfigs is the fixed preset-to-filter-graph table. Not user
// tunable; changing a preset means changing this table.
var presetConfigs = map[domain.FilterPreset]core.FilterConfig{
	domain.PresetBassBoost: {
		Equalizer: []core.EqualizerBand{
			{Band: 0, Gain: 0.20},
			{Band: 1, Gain: 0.18},
			{Band: 2, Gain: 0.12},
			{Band: 3, Gain: 0.06},
		},
	},
	domain.PresetNightcore: {
		Timescale: &core.Timescale{Speed: 1.2, Pitch: 1.15, Rate: 1.0},
	},
	domain.PresetEightD: {
		Rotation: &core.Rotation{RotationHz: 0.2},
	},
	domain.PresetVaporwave: {
		Timescale: &core.Timescale{Speed: 0.85, Pitch: 0.85, Rate: 1.0},
		Equalizer: []core.EqualizerBand{
			{Band: 0, Gain: 0.15},
			{Band: 1, Gain: 0.10},
		},
	},
}

// SetPreset applies a named filter preset to the room's session. Unknown
// names fall back to none, which clears all backend filter state.
func (c *Controller) SetPreset(ctx context.Context, room domain.RoomID, name string) (domain.FilterPreset, error) {
	s, ok := c.store.Get(room)
	if !ok {
		return domain.PresetNone, core.ErrNoActiveSession
	}

	preset := domain.ParseFilterPreset(name)

	s.mu.Lock()
	var err error
	if preset == domain.PresetNone {
		err = s.player.ClearFilters(ctx)
	} else {
		err = s.player.SetFilters(ctx, presetConfigs[preset])
	}
	if err != nil {
		s.mu.Unlock()
		return domain.PresetNone, wrapBackend(err)
	}
	s.preset = preset
	s.mu.Unlock()

	c.panels.Render(ctx, room)
	return preset, nil
}
