package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clean-auth/internal/infrastructure/blacklist"
	"github.com/oksasatya/clean-auth/internal/interface/middleware"
)

type DebugModule struct {
	Blacklist *blacklist.Registry
	Redis     *redis.Client
	Logger    *logrus.Logger
}

func NewDebugModule(reg *blacklist.Registry, rdb *redis.Client, logger *logrus.Logger) *DebugModule {
	return &DebugModule{Blacklist: reg, Redis: rdb, Logger: logger}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar names are process-global; the first registry published wins.
	if expvar.Get("revoked_tokens") == nil {
		expvar.Publish("revoked_tokens", expvar.Func(func() any { return m.Blacklist.Len() }))
	}
	rl := middleware.RateLimit(m.Redis, m.Logger, 120, time.Minute, middleware.KeyByIPAndPath("rl:debug"), nil)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
