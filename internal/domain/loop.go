package domain

// LoopMode governs what happens to a finished track.
type LoopMode string

const (
	LoopOff   LoopMode = "off"
	LoopTrack LoopMode = "track"
	LoopQueue LoopMode = "queue"
)

// Next cycles off -> track -> queue -> off.
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopOff:
		return LoopTrack
	case LoopTrack:
		return LoopQueue
	default:
		return LoopOff
	}
}

// ParseLoopMode maps free-form input to a mode, defaulting to LoopOff.
func ParseLoopMode(s string) LoopMode {
	switch LoopMode(s) {
	case LoopTrack:
		return LoopTrack
	case LoopQueue:
		return LoopQueue
	default:
		return LoopOff
	}
}
