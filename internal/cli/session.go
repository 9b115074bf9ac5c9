package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/internal/commerce"
	appconfig "github.com/lewisedginton/shopping_chat_client/internal/config"
	"github.com/lewisedginton/shopping_chat_client/internal/profile"
	"github.com/lewisedginton/shopping_chat_client/internal/widget"
	"github.com/lewisedginton/shopping_chat_client/pkg/health"
	"github.com/lewisedginton/shopping_chat_client/pkg/health/checkers"
	"github.com/lewisedginton/shopping_chat_client/pkg/httpclient"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/lewisedginton/shopping_chat_client/pkg/metrics"
)

// chatSession is everything one command needs: backends, the profile store and a
// controller bound to a terminal view.
type chatSession struct {
	cfg     *appconfig.AppConfig
	log     logger.Logger
	store   profile.Store
	metrics *metrics.Metrics
	checker *health.Checker
	view    *TerminalView
	ctrl    *widget.Controller
}

// openSession wires the backends and a controller bound to view. It does not restore history.
func openSession(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger, view *TerminalView) (*chatSession, error) {
	cfg.LogConfig(log)

	store, err := profile.Open(ctx, cfg.Storage, cfg.Profile, log)
	if err != nil {
		log.Error("Failed to open profile store", logger.ErrorField(err))
		return nil, err
	}

	m := metrics.NewMetrics(log)
	httpClient := httpclient.New(cfg.HTTP, log)
	chat := chatapi.NewClient(cfg.ChatAPIURL, httpClient, chatapi.WithMetrics(m), chatapi.WithLogger(log))
	shop := commerce.NewClient(cfg.CommerceAPIURL, httpClient, m, log)

	s := &chatSession{
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: m,
		checker: newChecker(cfg, httpClient, store, log),
		view:    view,
	}

	if cfg.Metrics.ExposeMetrics {
		m.Handle("/health", s.checker.Handler())
		m.Listen(cfg.Metrics.Port)
	}

	s.ctrl, err = widget.New(ctx, widget.Deps{
		Chat:            chat,
		Commerce:        shop,
		Store:           store,
		View:            s.view,
		Log:             log,
		Metrics:         m,
		PrefillUsername: cfg.Login.PrefillUsername,
		PrefillPassword: cfg.Login.PrefillPassword,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// newChecker checks both backends and the profile store.
func newChecker(cfg *appconfig.AppConfig, httpClient *http.Client, store profile.Store, log logger.Logger) *health.Checker {
	c := health.New(health.WithTimeout(cfg.Monitoring.HealthCheckTimeout), health.WithLogger(log))
	c.Add(checkers.NewHTTPChecker("chat-api", cfg.ChatAPIURL, httpClient))
	c.Add(checkers.NewHTTPChecker("commerce-api", cfg.CommerceAPIURL, httpClient))

	if rs, ok := store.(*profile.RedisStore); ok {
		c.Add(checkers.NewRedisChecker(rs.Client(), "profile-store"))
	} else {
		c.Add(health.NewCheckFunc("profile-store", func(ctx context.Context) error {
			_, _, err := store.Get(ctx, profile.KeySessionID)
			return err
		}))
	}
	return c
}

// Close waits for background sends, then releases the store and the metrics listener.
func (s *chatSession) Close() {
	if s.ctrl != nil {
		s.ctrl.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.metrics.Shutdown(ctx); err != nil {
		s.log.Warn("Failed to stop metrics listener", logger.ErrorField(err))
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("Failed to close profile store", logger.ErrorField(err))
	}
}
