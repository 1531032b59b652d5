// Package bootstrap wires repositories, services and the router from a Config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/folio/pkg/adapters/handler"
	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/memory"
	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/redisstore"
	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/folio/pkg/config"
	"github.com/wadjakorntonsri/folio/pkg/core/analytics"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/core/services"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

type App struct {
	Profiles         *sqlite.SQLiteRepository
	Analytics        ports.AnalyticsRepository
	ProfileService   *services.ProfileService
	AnalyticsService *services.AnalyticsService
	Limiter          *handler.RateLimiter
	Handler          http.Handler

	redis *redis.Client
}

// New opens the configured stores and builds the HTTP handler.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := cfg.Analytics

	policy := domain.RetentionPolicy{
		MaxFingerprints:  a.MaxFingerprints,
		KeepFingerprints: a.KeepFingerprints,
		MaxDailyEntries:  a.MaxDailyEntries,
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	profiles, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, sqlite.WithMaxRetries(a.MaxUpdateRetries))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	app := &App{Profiles: profiles}

	switch a.Store {
	case "", "sqlite":
		app.Analytics = profiles.Analytics()
	case "memory":
		app.Analytics = memory.NewStore()
	case "redis":
		rdb, err := redisstore.Connect(ctx, a.RedisURL)
		if err != nil {
			_ = profiles.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.redis = rdb
		app.Analytics = redisstore.NewStore(rdb, redisstore.WithMaxRetries(a.MaxUpdateRetries))
	default:
		_ = profiles.Close()
		return nil, fmt.Errorf("unknown analytics store %q", a.Store)
	}
	slog.Info("analytics store ready", "store", a.Store)

	app.ProfileService = services.NewProfileService(profiles, app.Analytics)
	app.AnalyticsService = services.NewAnalyticsService(app.Analytics, app.ProfileService,
		services.WithRetention(policy),
		services.WithHasher(analytics.NewHasher(a.FingerprintSalt)),
		services.WithTrackTimeout(a.TrackTimeout),
	)
	app.Limiter = handler.NewRateLimiter(a.TrackRatePerSecond, a.TrackBurst)
	app.Handler = handler.NewRouter(cfg, app.AnalyticsService, app.ProfileService, app.Limiter)

	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.Profiles.Close())
	return errors.Join(errs...)
}
