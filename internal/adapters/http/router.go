// Package http wires the gin router: websocket signaling endpoint, the users
// API and the static frontend.
package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/adapters/signal"
	"github.com/khushal-Taskar/Zoom/internal/config"
	"github.com/khushal-Taskar/Zoom/internal/users"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, us *users.Service) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = []string{"Authorization", "Content-Type", "Origin", "Accept"}
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ZoomSessions", store))
	r.Use(ClientToken())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.GET("/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	uc := NewUserController(us)
	v1 := api.Group("/v1/users")
	v1.POST("/register", uc.Register)
	v1.POST("/login", uc.Login)
	v1.POST("/add_to_activity", uc.AddToActivity)
	v1.GET("/get_all_activity", uc.GetAllActivity)

	return r
}
