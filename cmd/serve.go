package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/backup"
	"github.com/junaidrashid-git/storefront-api/config"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/locker"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	localBucket     = "media"
	shutdownTimeout = 15 * time.Second
	tokenTTL        = 7 * 24 * time.Hour
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Info().Msg("✅ Starting application...")

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	store, bucket, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	locks, closeLocks := openLocker(cfg)
	defer closeLocks()

	hub := events.NewHub()
	publisher := events.Fanout{hub}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic)
		defer kp.Close()
		publisher = append(publisher, kp)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaOrderTopic).Msg("order events go to kafka")
	}

	origins := cfg.CORSOriginList()
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           12 * time.Hour,
	}))
	if cfg.StorageDriver == "local" {
		// Serve uploaded images
		r.Static("/uploads", cfg.UploadDir)
	}

	routes.SetupRoutes(r, routes.Deps{
		DB:         db,
		Resolver:   auth.NewUserResolver(auth.NewTokenResolver(auth.NewIssuer(cfg.JWTSecret, tokenTTL)), db),
		Store:      store,
		Bucket:     bucket,
		Reconciler: cartControllers.NewReconciler(db, locks),
		Hub:        hub,
		Publisher:  publisher,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.StorageDriver == "local" && cfg.BackupDir != "" {
		sched := backup.NewScheduler(cfg.UploadDir, cfg.BackupDir,
			time.Duration(cfg.BackupRetentionDays)*24*time.Hour, cfg.BackupHour)
		g.Go(func() error { return sched.Run(gctx) })
	}

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, string, func(), error) {
	if cfg.StorageDriver == "gcs" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, "", nil, err
		}
		return gcs, cfg.GCSBucket, func() { _ = gcs.Close() }, nil
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL), localBucket, func() {}, nil
}

// openLocker shares reorder locks through Redis when configured so several
// API instances serialize on the same cart.
func openLocker(cfg *config.Config) (locker.Locker, func()) {
	if cfg.RedisAddr == "" {
		return locker.NewLocal(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	log.Info().Str("addr", cfg.RedisAddr).Msg("cart locks shared through redis")
	return locker.NewRedis(client, "storefront:lock", 10*time.Second), func() { _ = client.Close() }
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
