package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/clean-auth/internal/container"
	handlers "github.com/oksasatya/clean-auth/internal/interface/http"
	"github.com/oksasatya/clean-auth/internal/interface/middleware"
	"github.com/oksasatya/clean-auth/internal/router/modules"
	"github.com/oksasatya/clean-auth/pkg/validation"
)

// InitModules builds the feature modules from the container and adds them to the registry.
func InitModules(r *Registry, c *container.Container) {
	svc := c.AccountService()
	handler := handlers.NewAccountHandler(svc, c.Logger)

	var allow middleware.AllowFunc
	if c.Config.Env == "development" {
		allow = middleware.AllowPrivateIP()
	}
	r.Add(modules.NewAccountModule(handler, c.JWT, c.Redis, c.Logger, allow))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Blacklist, c.Redis, c.Logger))
	}
}

// NewEngine returns the gin engine with global middleware, /healthz and all modules.
// The revocation gate runs before every route.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := c.Config.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.Blacklist(c.Blacklist))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	reg := NewRegistry(r)
	// /healthz stays out of the access log
	if c.Config.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(c.Logger))
	}
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
