// stewardd hosts the moderation core as a daemon: it opens the backing
// stores, builds the engine for the surrounding bot shell to drive, and
// runs the recurring-alert scheduler and a metrics endpoint.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v2"

	"github.com/stewardbot/steward/alerts"
	"github.com/stewardbot/steward/configstore"
	"github.com/stewardbot/steward/engine"
	"github.com/stewardbot/steward/ledger"
	"github.com/stewardbot/steward/rolecache"
	"github.com/stewardbot/steward/termstore"
	"github.com/stewardbot/steward/visual"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "stewardd",
		Usage:   "group chat moderation daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection string (sqlite:// or postgres://)",
			Value:   "sqlite://data/steward/steward.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection for the violation ledger and role cache; empty runs in-process only",
			EnvVars: []string{"STEWARD_REDIS_URL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "platform-host",
			Usage:   "base URL of the bot-shell platform adapter",
			EnvVars: []string{"STEWARD_PLATFORM_HOST"},
		},
		&cli.StringFlag{
			Name:    "platform-token",
			EnvVars: []string{"STEWARD_PLATFORM_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "classifier-host",
			Usage:   "base URL of the primary image classification API",
			EnvVars: []string{"STEWARD_CLASSIFIER_HOST"},
		},
		&cli.StringFlag{
			Name:    "classifier-token",
			EnvVars: []string{"STEWARD_CLASSIFIER_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "vision-host",
			Usage:   "base URL of the vision-model API (review and OCR passes)",
			EnvVars: []string{"STEWARD_VISION_HOST"},
		},
		&cli.StringFlag{
			Name:    "vision-token",
			EnvVars: []string{"STEWARD_VISION_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "global-terms-file",
			Usage:   "optional JSON file of global denylist terms, loaded at startup",
			EnvVars: []string{"STEWARD_GLOBAL_TERMS_FILE"},
		},
		&cli.Int64Flag{
			Name:    "operator-id",
			Usage:   "platform account ID the bot runs as (never moderated)",
			EnvVars: []string{"STEWARD_OPERATOR_ID"},
		},
		&cli.BoolFlag{
			Name:    "disable-payload-scan",
			Usage:   "turn off the encoded-payload heuristic stage",
			EnvVars: []string{"STEWARD_DISABLE_PAYLOAD_SCAN"},
		},
		&cli.BoolFlag{
			Name:    "disable-ocr-scan",
			Usage:   "turn off the OCR term-scan heuristic stage",
			EnvVars: []string{"STEWARD_DISABLE_OCR_SCAN"},
		},
		&cli.StringFlag{
			Name:    "api-listen",
			Usage:   "IP or address, and port, for the event and admin APIs",
			Value:   ":3988",
			EnvVars: []string{"STEWARD_API_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"STEWARD_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		db, err := setupDatabase(cctx.String("database-url"))
		if err != nil {
			return err
		}

		configs, err := configstore.NewGormStore(db)
		if err != nil {
			return fmt.Errorf("initializing config store: %w", err)
		}
		terms, err := termstore.NewGormTermStore(db)
		if err != nil {
			return fmt.Errorf("initializing term store: %w", err)
		}
		if p := cctx.String("global-terms-file"); p != "" {
			seed := termstore.NewMemTermStore()
			if err := seed.LoadFromFileJSON(ctx, p); err != nil {
				return fmt.Errorf("loading global terms file: %w", err)
			}
			for _, t := range seed.GlobalTerms(ctx) {
				if err := terms.AddGlobalTerm(ctx, t); err != nil {
					return fmt.Errorf("seeding global terms: %w", err)
				}
			}
			if err := terms.ReloadGlobal(ctx); err != nil {
				return err
			}
		}
		alertStore, err := alerts.NewGormStore(db)
		if err != nil {
			return fmt.Errorf("initializing alert store: %w", err)
		}

		var violations ledger.Store
		var roleCache rolecache.Cache
		if redisURL := cctx.String("redis-url"); redisURL != "" {
			rs, err := ledger.NewRedisStore(redisURL)
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			violations = rs
			rc, err := rolecache.NewRedisCache(redisURL, rolecache.DefaultTTL)
			if err != nil {
				return fmt.Errorf("connecting to redis role cache: %w", err)
			}
			roleCache = rc
		} else {
			logger.Warn("no redis configured, violation counts will not survive restarts")
			violations = ledger.NewMemStore()
			roleCache = rolecache.NewMemCache(10_000, rolecache.DefaultTTL)
		}

		classifier := visual.NewClassifierClient(cctx.String("classifier-host"), cctx.String("classifier-token"))
		vision := visual.NewVisionClient(cctx.String("vision-host"), cctx.String("vision-token"))

		platformClient, err := newPlatformClient(cctx)
		if err != nil {
			return err
		}

		eng := &engine.Engine{
			Logger:            logger,
			Platform:          platformClient,
			Configs:           configs,
			Terms:             terms,
			Ledger:            ledger.NewLedger(violations, logger),
			RoleCache:         roleCache,
			Classifier:        &classifier,
			Vision:            &vision,
			OperatorID:        cctx.Int64("operator-id"),
			EnablePayloadScan: !cctx.Bool("disable-payload-scan"),
			EnableOCRScan:     !cctx.Bool("disable-ocr-scan"),
		}

		scheduler := alerts.NewScheduler(alertStore, platformClient, logger)
		scheduler.Start()
		defer scheduler.Shutdown()

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cctx.String("metrics-listen"), mux); err != nil {
				slog.Error("failed to start metrics endpoint", "err", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		shell, err := newEventShell(cctx.String("api-listen"), eng, alertStore)
		if err != nil {
			return err
		}
		shell.echo.Use(echoprometheus.NewMiddleware("stewardd"))
		go shell.Run(ctx)

		logger.Info("stewardd running", "version", versioninfo.Short())
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutdown signal received")
		return shell.Shutdown(ctx)
	},
}
