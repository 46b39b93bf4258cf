package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/adapters/panelws"
	"github.com/dkeye/Jukebox/internal/app"
	"github.com/dkeye/Jukebox/internal/config"
)

// SetupRouter wires the command intake API and the panel websocket.
func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *app.Controller, hub *panelws.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	h := &Handlers{Ctrl: ctrl}

	api := r.Group("/api")
	api.POST("/commands", h.HandleCommand)
	api.GET("/rooms/:room/panel", h.HandlePanel)
	api.GET("/rooms/:room/queue", h.HandleQueue)
	api.GET("/rooms/:room/now", h.HandleNow)

	api.GET("/ws/panel", func(c *gin.Context) {
		hub.HandleSubscribe(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
