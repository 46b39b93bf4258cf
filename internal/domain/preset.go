package domain

// FilterPreset names one fixed audio-effect configuration.
type FilterPreset string

const (
	PresetNone      FilterPreset = "none"
	PresetBassBoost FilterPreset = "bassboost"
	PresetNightcore FilterPreset = "nightcore"
	PresetEightD    FilterPreset = "8d"
	PresetVaporwave FilterPreset = "vaporwave"
)

// ParseFilterPreset maps free-form input to a preset.
// Unknown names are treated as PresetNone.
func ParseFilterPreset(s string) FilterPreset {
	switch FilterPreset(s) {
	case PresetBassBoost, PresetNightcore, PresetEightD, PresetVaporwave:
		return FilterPreset(s)
	default:
		return PresetNone
	}
}
