// Package http is the command-intake transport: it extracts room,
// requester and action from requests and hands them to the controller.
// No playback decision is made here.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/app"
	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

// Command is the intake envelope: everything platform-specific has
// already been extracted by the caller.
type Command struct {
	RoomID           string      `json:"room_id" binding:"required"`
	RequesterID      string      `json:"requester_id"`
	RequesterChannel string      `json:"requester_channel_id"`
	BotChannel       string      `json:"bot_channel_id"`
	Action           string      `json:"action" binding:"required"`
	Args             CommandArgs `json:"args"`
}

// CommandArgs carries per-action parameters; unused fields are ignored.
type CommandArgs struct {
	Query   string `json:"query"`
	Source  string `json:"source"`
	Value   int    `json:"value"`
	Mode    string `json:"mode"`
	Preset  string `json:"preset"`
	DeltaMs int64  `json:"delta_ms"`
	Page    int    `json:"page"`
}

// Handlers binds the intake surface to the controller.
type Handlers struct {
	Ctrl *app.Controller
}

// HandleCommand dispatches one intake command.
func (h *Handlers) HandleCommand(c *gin.Context) {
	var cmd Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad command payload"})
		return
	}

	ctx := c.Request.Context()
	room := domain.RoomID(cmd.RoomID)

	// Everything except the initial play requires the requester to share
	// the backend's channel (or, if the backend is not connected, to be
	// in some channel at all).
	if cmd.Action != "play" && !h.Ctrl.SameChannel(room, domain.ChannelID(cmd.RequesterChannel)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "join the playback channel first"})
		return
	}

	switch cmd.Action {
	case "play":
		sum, err := h.Ctrl.Play(ctx, app.PlayRequest{
			Room:             room,
			Requester:        domain.UserID(cmd.RequesterID),
			RequesterChannel: domain.ChannelID(cmd.RequesterChannel),
			PanelChannel:     domain.ChannelID(cmd.BotChannel),
			Query:            cmd.Args.Query,
			Source:           cmd.Args.Source,
		})
		if err != nil {
			fail(c, err)
			return
		}
		msg := fmt.Sprintf("added %d tracks", sum.Count)
		if sum.Count == 1 {
			msg = fmt.Sprintf("added %q", sum.First.Title)
		}
		if sum.Playlist != "" {
			msg = fmt.Sprintf("added %d tracks from %q", sum.Count, sum.Playlist)
		}
		ok(c, gin.H{"message": msg, "added": sum.Count})

	case "pause":
		reply(c, h.Ctrl.Pause(ctx, room), "paused")
	case "resume":
		reply(c, h.Ctrl.Resume(ctx, room), "resumed")
	case "toggle":
		reply(c, h.Ctrl.Toggle(ctx, room), "toggled")
	case "skip":
		reply(c, h.Ctrl.Skip(ctx, room), "skipped")
	case "previous":
		reply(c, h.Ctrl.Previous(ctx, room), "went back")
	case "stop":
		reply(c, h.Ctrl.Stop(ctx, room), "stopped and left")

	case "volume":
		v, err := h.Ctrl.SetVolume(ctx, room, cmd.Args.Value)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"volume": v})
	case "volume_up":
		v, err := h.Ctrl.VolumeUp(ctx, room)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"volume": v})
	case "volume_down":
		v, err := h.Ctrl.VolumeDown(ctx, room)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"volume": v})

	case "loop":
		reply(c, h.Ctrl.SetLoop(ctx, room, domain.ParseLoopMode(cmd.Args.Mode)), "loop set")
	case "loop_cycle":
		mode, err := h.Ctrl.CycleLoop(ctx, room)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"loop": mode})

	case "seek":
		pos, err := h.Ctrl.SeekRelative(ctx, room, time.Duration(cmd.Args.DeltaMs)*time.Millisecond)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"position_ms": pos.Milliseconds()})
	case "seek_back":
		pos, err := h.Ctrl.SeekBack(ctx, room)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"position_ms": pos.Milliseconds()})
	case "seek_fwd":
		pos, err := h.Ctrl.SeekForward(ctx, room)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"position_ms": pos.Milliseconds()})

	case "shuffle":
		reply(c, h.Ctrl.Shuffle(ctx, room), "shuffled")
	case "clear":
		reply(c, h.Ctrl.ClearQueue(ctx, room), "queue cleared")

	case "refresh":
		reply(c, h.Ctrl.Refresh(ctx, room), "panel refreshed")

	case "filters":
		preset, err := h.Ctrl.SetPreset(ctx, room, cmd.Args.Preset)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"preset": preset})

	default:
		log.Warn().Str("module", "adapters.http").Str("action", cmd.Action).Msg("unknown action")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

// HandlePanel returns the current panel view model.
func (h *Handlers) HandlePanel(c *gin.Context) {
	view, err := h.Ctrl.Panel(domain.RoomID(c.Param("room")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleQueue returns one page of the queue view.
func (h *Handlers) HandleQueue(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	qp, err := h.Ctrl.QueuePage(domain.RoomID(c.Param("room")), page, h.Ctrl.Options().PageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, qp)
}

// HandleNow returns the current track.
func (h *Handlers) HandleNow(c *gin.Context) {
	t, err := h.Ctrl.Now(domain.RoomID(c.Param("room")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":       t.Title,
		"author":      t.Author,
		"uri":         t.URI,
		"duration_ms": t.Duration.Milliseconds(),
		"live":        t.IsLive(),
		"requester":   t.Requester,
	})
}

func ok(c *gin.Context, body gin.H) {
	body["ok"] = true
	c.JSON(http.StatusOK, body)
}

func reply(c *gin.Context, err error, msg string) {
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": msg})
}

// fail maps the command-boundary taxonomy onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, core.ErrNoActiveSession),
		errors.Is(err, core.ErrNoMatch):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrChannelConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrBackendUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
