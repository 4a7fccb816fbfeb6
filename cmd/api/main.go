// API binary: loads the configuration, wires the dependencies and starts the
// HTTP server.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MichelFaust/MCW-Food-Voting/internal/app/export"
	"github.com/MichelFaust/MCW-Food-Voting/internal/app/httpapi"
	"github.com/MichelFaust/MCW-Food-Voting/internal/app/rating"
	"github.com/MichelFaust/MCW-Food-Voting/internal/app/web"
	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/clock"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/config"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/health"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/ids"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/logger"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/migrations"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/ratelimit"
	redisstorage "github.com/MichelFaust/MCW-Food-Voting/internal/platform/storage/redis"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/storage/sqldb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	dsn := cfg.SQLitePath
	if cfg.DBDriver == sqldb.DriverPostgres {
		dsn = cfg.PostgresDSN()
	}

	db, err := sqldb.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		logger.Fatal("database connection failed", "err", err, "driver", cfg.DBDriver)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("getting sql.DB failed", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("auto migration failed", "err", err)
		}
	}

	// Redis carries the voted-names set, the live tally and the rate limiter.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", "err", err)
	}
	defer redisClient.Close()

	voteRepo := sqldb.NewVoteRepository(db)
	guestRepo := sqldb.NewGuestRepository(db)
	dishRepo := sqldb.NewDishRepository(db)
	votedNames := redisstorage.NewVotedNames(redisClient, cfg.VotedNamesKey)
	tally := redisstorage.NewTally(redisClient, cfg.TallyKeyPrefix)
	systemClock := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	var guard domain.RateGuard = ratelimit.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSec) * time.Second
		guard = ratelimit.NewRedisRateLimiter(redisClient, cfg.RateLimitMax, window, cfg.RateLimitKeyPrefix)
	}

	storeTimeout := time.Duration(cfg.StoreTimeoutSec) * time.Second
	ratingService := rating.NewService(
		voteRepo,
		guestRepo,
		dishRepo,
		votedNames,
		tally,
		guard,
		systemClock,
		idGen,
		logger.L(),
		storeTimeout,
	)
	exportService := export.NewService(voteRepo, storeTimeout)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(ratingService, exportService, logger.L(), cfg.AdminToken)
	api.Register(mux)

	frontend, err := web.New(ratingService, cfg.AdminToken)
	if err != nil {
		logger.Fatal("loading templates failed", "err", err)
	}
	frontend.Register(mux)

	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api listening", "addr", cfg.HTTPAddress, "driver", cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
