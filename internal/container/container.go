// Package container builds the process-wide components once at startup and
// hands them to the router and commands explicitly.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clean-auth/config"
	"github.com/oksasatya/clean-auth/internal/application"
	"github.com/oksasatya/clean-auth/internal/domain/repository"
	"github.com/oksasatya/clean-auth/internal/infrastructure/blacklist"
	"github.com/oksasatya/clean-auth/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/clean-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/clean-auth/pkg/helpers"
	"github.com/oksasatya/clean-auth/pkg/mailer"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool           // nil with STORE_DRIVER=memory
	Redis     *redis.Client           // nil when rate limiting is disabled
	RabbitPub *helpers.RabbitPublisher // nil unless NOTIFIER=queue

	JWT       *helpers.JWTManager
	Hasher    *helpers.PasswordHasher
	Blacklist *blacklist.Registry
	Users     repository.UserRepository
	Notifier  application.Notifier
}

// New connects the configured infrastructure. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (_ *Container, err error) {
	c := &Container{
		Config:    cfg,
		Logger:    logger,
		JWT:       helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL),
		Hasher:    helpers.NewPasswordHasher(0),
		Blacklist: blacklist.NewRegistry(),
	}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	switch cfg.StoreDriver {
	case "postgres":
		if err = pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		c.PGPool, err = pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		c.Users = pginfra.NewUserRepository(c.PGPool)
	default:
		logger.Warn("using in-memory user store; data is lost on restart")
		c.Users = memory.NewUserRepository()
	}

	if cfg.RateLimitEnabled {
		c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err = helpers.PingRedis(ctx, c.Redis); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	if c.Notifier, err = c.buildNotifier(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) buildNotifier() (application.Notifier, error) {
	cfg := c.Config
	if !cfg.MailSendEnabled || cfg.Notifier == "log" {
		// The log notifier prints confirmation codes in plain text.
		switch cfg.Env {
		case "development":
		case "production":
			return nil, errors.New("log notifier is not allowed in production; enable MAIL_SEND_ENABLED with NOTIFIER=queue or mailgun")
		default:
			c.Logger.WithField("env", cfg.Env).Warn("confirmation codes are logged instead of mailed")
		}
		return &mailer.LogNotifier{Logger: c.Logger}, nil
	}
	switch cfg.Notifier {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			return nil, errors.New("mailgun notifier: MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER are required")
		}
		return &mailer.MailgunNotifier{
			Sender:    mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, mailer.WithAPIBase(cfg.MailgunAPIBase)),
			AppName:   cfg.AppName,
			ExpiresIn: cfg.ConfirmationCodeTTL,
		}, nil
	default:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		c.RabbitPub = pub
		return &mailer.QueueNotifier{Pub: pub, AppName: cfg.AppName, ExpiresIn: cfg.ConfirmationCodeTTL}, nil
	}
}

// AccountService wires the account core from the container's components.
func (c *Container) AccountService(opts ...application.Option) *application.AccountService {
	opts = append([]application.Option{
		application.WithRefreshTTL(c.Config.RefreshTTL),
		application.WithConfirmationCodeTTL(c.Config.ConfirmationCodeTTL),
	}, opts...)
	return application.NewAccountService(c.Users, c.JWT, c.Hasher, c.Notifier, c.Blacklist, c.Logger, opts...)
}

func (c *Container) Close() {
	if c.RabbitPub != nil {
		c.RabbitPub.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
