// Package viewmodels projects session state into renderable view models.
// Everything here is a pure function of its inputs; no transport, no locks.
package viewmodels

import (
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Jukebox/internal/domain"
)

const progressBarCells = 22

// SessionState is the read-only snapshot a projection works from.
type SessionState struct {
	Current  *domain.Track
	Queue    []domain.Track
	Position time.Duration
	Paused   bool
	Volume   int
	Loop     domain.LoopMode
	Preset   domain.FilterPreset
}

// Field is one labelled section of a panel.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Control is one affordance with its enabled flag. The transport decides
// how it is drawn; the projection only decides whether it makes sense.
type Control struct {
	ID      string
	Enabled bool
}

// PanelView is the complete renderable state of the live panel.
type PanelView struct {
	Title       string
	Description string
	ImageURL    string
	Fields      []Field
	Controls    [][]Control
}

// BuildPanel projects a session snapshot into the panel view.
// A session with no current track gets a distinct idle view.
func BuildPanel(st SessionState) PanelView {
	badges := badgeLine(st)

	if st.Current == nil {
		return PanelView{
			Title: "Jukebox",
			Description: strings.Join([]string{
				"Nothing playing.",
				"Queue a track to get started.",
				"",
				badges,
			}, "\n"),
			Controls: buildControls(st),
		}
	}

	t := st.Current
	lines := []string{
		fmt.Sprintf("**%s**", t.Title),
		fmt.Sprintf("*%s*", t.Author),
		"",
		badges,
		"",
		"**Progress**",
		ProgressBar(st.Position, t.Duration, progressBarCells),
		"",
		fmt.Sprintf("Requested by %s", t.Requester),
	}
	if t.URI != "" {
		lines[0] = fmt.Sprintf("[**%s**](%s)", t.Title, t.URI)
	}

	view := PanelView{
		Title:       "Now Playing",
		Description: strings.Join(lines, "\n"),
		ImageURL:    t.ArtworkURL,
		Controls:    buildControls(st),
	}

	upNext := "—"
	if len(st.Queue) > 0 {
		upNext = st.Queue[0].Title
	}
	view.Fields = append(view.Fields, Field{Name: "Up Next", Value: upNext})

	return view
}

func badgeLine(st SessionState) string {
	badges := []string{
		fmt.Sprintf("`VOL %d`", st.Volume),
		fmt.Sprintf("`LOOP %s`", strings.ToUpper(string(st.Loop))),
		fmt.Sprintf("`FX %s`", strings.ToUpper(string(st.Preset))),
		fmt.Sprintf("`QUEUE %d`", len(st.Queue)),
	}
	if st.Current != nil {
		badges = append(badges, fmt.Sprintf("`%s`", FormatDuration(st.Current.Duration)))
	}
	return strings.Join(badges, " ")
}

func buildControls(st SessionState) [][]Control {
	hasTrack := st.Current != nil
	canSeek := hasTrack && !st.Current.IsLive()
	queued := len(st.Queue)

	toggleID := "pause"
	if st.Paused {
		toggleID = "resume"
	}

	return [][]Control{
		{
			{ID: "previous", Enabled: hasTrack},
			{ID: toggleID, Enabled: hasTrack},
			{ID: "skip", Enabled: hasTrack},
			{ID: "stop", Enabled: hasTrack || queued > 0},
			{ID: "loop", Enabled: true},
		},
		{
			{ID: "shuffle", Enabled: queued > 1},
			{ID: "add", Enabled: true},
			{ID: "filters", Enabled: true},
			{ID: "queue", Enabled: true},
			{ID: "clear", Enabled: queued > 0},
		},
		{
			{ID: "seekback", Enabled: canSeek},
			{ID: "seekfwd", Enabled: canSeek},
			{ID: "voldown", Enabled: true},
			{ID: "volup", Enabled: true},
			{ID: "refresh", Enabled: true},
		},
	}
}

// FormatDuration renders a track length, or LIVE for unbounded streams.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "LIVE"
	}
	total := int(d / time.Second)
	s := total % 60
	m := total / 60 % 60
	h := total / 3600
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ProgressBar renders the playhead position over a fixed number of cells.
func ProgressBar(position, duration time.Duration, cells int) string {
	if duration <= 0 {
		return "LIVE"
	}
	pct := float64(position) / float64(duration)
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	idx := int(pct * float64(cells))
	if idx >= cells {
		idx = cells - 1
	}

	var b strings.Builder
	for i := 0; i < cells; i++ {
		if i == idx {
			b.WriteString("o")
		} else {
			b.WriteString("-")
		}
	}
	return fmt.Sprintf("%s | %s | %s",
		FormatDuration(position), b.String(), FormatDuration(duration))
}
