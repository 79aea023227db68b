package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/http/ban"
	"github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/product-catalog/internal/http/router"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	visitorIdle     = 5 * time.Minute
	visitorSweep    = time.Minute
	readHeaderLimit = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg config.Config) error {
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.close()

	var opts []catalog.Option
	routerOpts := router.Options{CORSOrigins: cfg.CORSOrigins, TrustProxy: cfg.TrustProxy}
	var banner *ban.Banner

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		redisService := redissvc.NewRedisService(rdb, cfg.CacheTTL)
		if err := redisService.Ping(ctx); err != nil {
			return err
		}
		handlers.SetRedisService(redisService)
		opts = append(opts, catalog.WithCategoryCache(redisService))
		banner = ban.NewBanner(rdb, cfg.BanStrikes, cfg.BanWindow, cfg.BanDuration)
		routerOpts.Banner = banner
	} else {
		log.Info("REDIS_ADDR not set; category cache and bans disabled")
	}

	var limiter *rl.Limiter
	if cfg.RateLimitEnabled() {
		limiter = rl.New(cfg.RateLimitRPS, cfg.RateLimitBurst, visitorIdle)
		routerOpts.Limiter = limiter
	}

	handlers.SetProductService(catalog.NewService(store.products, opts...))
	handlers.SetMetricsRepo(store.metrics)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.NewRouter(routerOpts),
		ReadHeaderTimeout: readHeaderLimit,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{"addr": cfg.HTTPAddr, "storage": cfg.StorageDriver}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if limiter != nil {
		g.Go(func() error {
			limiter.StartVisitorCleanupLoop(gctx, visitorSweep)
			return nil
		})
	}
	if banner != nil {
		g.Go(func() error {
			banner.StartDailyBanSummary(gctx)
			return nil
		})
	}

	return g.Wait()
}
