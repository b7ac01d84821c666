package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/clean-auth/internal/interface/http"
	"github.com/oksasatya/clean-auth/internal/interface/middleware"
)

// AccountModule wires the account handlers under /api/account.
// Public: register, login, refresh-token, confirm-email-code, request-confirmation-code
// Protected (bearer): logout, me
type AccountModule struct {
	Handler  *handlers.AccountHandler
	Verifier middleware.TokenVerifier
	Redis    *redis.Client
	Logger   *logrus.Logger
	Allow    middleware.AllowFunc
}

func NewAccountModule(h *handlers.AccountHandler, v middleware.TokenVerifier, rdb *redis.Client, logger *logrus.Logger, allow middleware.AllowFunc) *AccountModule {
	return &AccountModule{Handler: h, Verifier: v, Redis: rdb, Logger: logger, Allow: allow}
}

func (m *AccountModule) limit(max int) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, m.Logger, max, time.Minute, middleware.KeyByIPAndPath("rl:account"), m.Allow)
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/account")

	g.POST("/register", m.limit(10), m.Handler.Register)
	g.POST("/login", m.limit(10), m.Handler.Login)
	g.POST("/refresh-token", m.limit(60), m.Handler.RefreshToken)
	g.POST("/confirm-email-code", m.limit(30), m.Handler.ConfirmEmail)
	g.POST("/request-confirmation-code", m.limit(5), m.Handler.RequestConfirmationCode)

	auth := g.Group("")
	auth.Use(middleware.JWTAuth(m.Verifier))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
