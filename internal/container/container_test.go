package container

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clean-auth/config"
	"github.com/oksasatya/clean-auth/internal/infrastructure/memory"
	"github.com/oksasatya/clean-auth/pkg/helpers"
	"github.com/oksasatya/clean-auth/pkg/mailer"
)

func memoryConfig() *config.Config {
	return &config.Config{
		AppName:             "clean-auth",
		Env:                 "development",
		StoreDriver:         "memory",
		JWTSecret:           "container-test-secret-container-test",
		JWTIssuer:           "clean-auth",
		AccessTTL:           time.Hour,
		RefreshTTL:          time.Hour,
		ConfirmationCodeTTL: time.Minute,
		Notifier:            "log",
		MailSendEnabled:     true,
	}
}

func TestNewMemoryContainer(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(), helpers.NewDiscardLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &memory.UserRepository{}, c.Users)
	assert.IsType(t, &mailer.LogNotifier{}, c.Notifier)
	assert.Nil(t, c.PGPool)
	assert.Nil(t, c.Redis)

	svc := c.AccountService()
	assert.Equal(t, time.Hour, svc.RefreshTTL)
	assert.Equal(t, time.Minute, svc.CodeTTL)
	assert.Same(t, c.Blacklist, svc.Revoker)
}

func TestNotifierSelection(t *testing.T) {
	t.Run("mailgun requires credentials", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Notifier = "mailgun"
		_, err := New(context.Background(), cfg, helpers.NewDiscardLogger())
		assert.Error(t, err)
	})

	t.Run("mailgun", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Notifier = "mailgun"
		cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender = "mg.example.com", "key", "noreply@example.com"
		c, err := New(context.Background(), cfg, helpers.NewDiscardLogger())
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &mailer.MailgunNotifier{}, c.Notifier)
	})

	t.Run("sending disabled falls back to log", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Notifier = "queue"
		cfg.MailSendEnabled = false
		c, err := New(context.Background(), cfg, helpers.NewDiscardLogger())
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &mailer.LogNotifier{}, c.Notifier)
		assert.Nil(t, c.RabbitPub)
	})

	t.Run("log notifier refused in production", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Env = "production"
		cfg.MailSendEnabled = false
		_, err := New(context.Background(), cfg, helpers.NewDiscardLogger())
		assert.ErrorContains(t, err, "log notifier")
	})

	t.Run("log notifier warns outside development", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Env = "staging"
		cfg.Notifier = "log"
		logger, hook := test.NewNullLogger()
		c, err := New(context.Background(), cfg, logger)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &mailer.LogNotifier{}, c.Notifier)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "staging", hook.LastEntry().Data["env"])
	})
}
