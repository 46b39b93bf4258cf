package core

// FilterConfig is one backend filter-graph configuration. Zero-value
// sections are omitted from the wire payload.
type FilterConfig struct {
	Equalizer []EqualizerBand `json:"equalizer,omitempty"`
	Timescale *Timescale      `json:"timescale,omitempty"`
	Rotation  *Rotation       `json:"rotation,omitempty"`
}

// EqualizerBand sets the gain of one of the backend's fixed bands.
type EqualizerBand struct {
	Band int     `json:"band"`
	Gain float64 `json:"gain"`
}

// Timescale adjusts speed, pitch and sample rate.
type Timescale struct {
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
}

// Rotation pans the audio around the listener.
type Rotation struct {
	RotationHz float64 `json:"rotationHz"`
}
