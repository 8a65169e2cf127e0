package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"WeddingSite/internal/config"
	"WeddingSite/internal/db"
	"WeddingSite/internal/email"
	"WeddingSite/internal/events"
	"WeddingSite/internal/reminder"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "weddingsite",
	Short: "Wedding site backend: RSVP API and reminder dispatcher",
	Long: `weddingsite serves the guest RSVP API and the admin routes, and sends
scheduled reminder emails to parties that have not answered yet.

Without a subcommand it behaves like "serve".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(migrateCmd)
}

// runtime holds what every subcommand needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *db.Store
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := db.New(ctx, cfg.DatabaseURL, cfg.DBConnectRetry)
	if err != nil {
		logger.Error("database connection failed", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, store: store}, nil
}

func (rt *runtime) close() {
	rt.store.Close()
	_ = rt.logger.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

// newDispatcher builds the reminder dispatcher. The returned closer releases
// the event publisher when one is configured.
func (rt *runtime) newDispatcher() (*reminder.Dispatcher, func(), error) {
	loc, err := rt.cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	// An unconfigured mailer is reported by each run, not at startup.
	mailer, err := email.New(rt.cfg)
	if err != nil {
		rt.logger.Warn("mail sender unavailable", zap.Error(err))
		mailer = email.Unavailable(err)
	}

	d := &reminder.Dispatcher{
		Recipients: rt.store,
		Campaigns:  rt.store,
		Log:        rt.store,
		Mailer:     mailer,
		Renderer:   reminder.DefaultTemplates(),
		Location:   loc,
		Logger:     rt.logger.Named("reminder"),
	}
	if rt.cfg.MailRateLimit > 0 {
		d.Limiter = rate.NewLimiter(rate.Limit(rt.cfg.MailRateLimit), 1)
	}

	closer := func() {}
	if rt.cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(rt.cfg.AMQPURL, rt.cfg.AMQPQueue)
		if err != nil {
			rt.logger.Warn("reminder events disabled", zap.Error(err))
		} else {
			d.Events = pub
			closer = func() {
				if err := pub.Close(); err != nil {
					rt.logger.Warn("event publisher close failed", zap.Error(err))
				}
			}
		}
	}

	return d, closer, nil
}
