package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/nodereg/internal/config"
	"github.com/dropDatabas3/nodereg/internal/eviction"
	httpx "github.com/dropDatabas3/nodereg/internal/http"
	"github.com/dropDatabas3/nodereg/internal/http/metrics"
	"github.com/dropDatabas3/nodereg/internal/http/router"
	"github.com/dropDatabas3/nodereg/internal/observability/logger"
	"github.com/dropDatabas3/nodereg/internal/rate"
	"github.com/dropDatabas3/nodereg/internal/replay"
	"github.com/dropDatabas3/nodereg/internal/store"
	"github.com/dropDatabas3/nodereg/internal/store/pg"
)

const version = "0.3.0"

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func printConfigSummary(c *config.Config) {
	fmt.Printf(`nodereg config efectiva:
  server.addr              = %s
  storage.driver           = %s
  storage.dsn              = %s
  nonce_validation.window  = %s
  node_eviction.max        = %d
  rate.disabled            = %v
  rate.redis.addr          = %s
  log.env                  = %s
  log.level                = %s
`,
		c.Server.Addr,
		c.Storage.Driver, maskDSN(c.Storage.DSN),
		c.NonceValidation.WindowDuration,
		c.NodeEviction.MaxNodesPerClusterVersion,
		c.Rate.Disabled, c.Rate.Redis.Addr,
		c.Log.Env, c.Log.Level,
	)
}

// maskDSN oculta credenciales al imprimir
func maskDSN(dsn string) string {
	if dsn == "" {
		return "(memoria)"
	}
	return "(set)"
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env (y .env si se pasa -env-file)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && (fileExists(*flagEnvFile) || *flagEnvOnly) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	var cfg *config.Config
	if *flagEnvOnly || (*flagConfigPath == "" && os.Getenv("CONFIG_PATH") == "") {
		cfg = config.FromEnv()
	} else {
		cfgPath := *flagConfigPath
		if cfgPath == "" {
			cfgPath = os.Getenv("CONFIG_PATH")
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		ServiceName: "nodereg",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores (memoria o postgres según config)
	stores, err := store.Open(ctx, store.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
		Postgres: pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		},
	})
	if err != nil {
		lg.Fatal("store open", logger.Err(err))
	}
	defer func() { _ = stores.Close() }()

	// Anti-replay con la ventana configurada
	window, err := cfg.Window()
	if err != nil {
		lg.Fatal("window", logger.Err(err))
	}
	replayCache := replay.New(window)

	// Eviction: cola + worker
	hints := eviction.NewQueue()
	worker := eviction.NewWorker(hints, stores.Registrations, cfg.NodeEviction.MaxNodesPerClusterVersion)
	worker.OnEvicted = metrics.RecordEvicted

	// Rate limiting (colaborador externo; deshabilitable por config)
	var limiter rate.Limiter
	if !cfg.Rate.Disabled {
		if cfg.Rate.Redis.Addr != "" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			limiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, cfg.RateWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
		}
	}

	handler := router.New(router.Deps{
		Stores:      stores,
		Replay:      replayCache,
		Hints:       hints,
		MaxPerGroup: cfg.NodeEviction.MaxNodesPerClusterVersion,
		Limiter:     limiter,
		WithMetrics: true,
	})

	srv := httpx.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		return httpx.Shutdown(srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("exit", logger.Err(err))
	}
	lg.Info("bye")
}
