package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"folio/config"
	"folio/contact"
	"folio/database"
	"folio/handlers"
	"folio/logging"
	"folio/middleware"
	"folio/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logFormat := cfg.Log.Format
	if cfg.DebugMode {
		logFormat = "console"
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: logFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited")
	}
	logging.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, handlers.ServiceName, handlers.ServiceVersion)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logging.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	db, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	relay, err := newRelay(cfg, db)
	if err != nil {
		return err
	}

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(),
		otelgin.Middleware(handlers.ServiceName),
		middleware.Timeout(cfg.BackendTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	deps := handlers.Deps{
		DB:         db,
		Projects:   db,
		Contact:    relay,
		APIVersion: cfg.APIVersion,
	}
	if cfg.AdminEnabled() {
		deps.Messages = db
		deps.AdminSecret = cfg.Admin.JWTSecret
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
		deps.RateLimiter = limiter
		g.Go(func() error {
			limiter.Run(gctx)
			return nil
		})
	}
	handlers.Register(r, deps)

	servers := []*http.Server{{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.MetricsEnabled() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	for _, srv := range servers {
		g.Go(func() error {
			logging.Info().Str("addr", srv.Addr).Msg("Server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("Shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(sctx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newRelay uses SMTP when credentials are configured and otherwise logs
// submissions instead of sending them.
func newRelay(cfg *config.Config, db *database.DB) (*contact.Relay, error) {
	var mailer contact.Mailer = contact.LogMailer{}
	if cfg.Email.User != "" {
		smtp, err := contact.NewSMTPMailer(contact.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.Email.User,
			Password: cfg.Email.Pass,
			To:       cfg.Contact.Recipient,
			Timeout:  cfg.BackendTimeout,
		})
		if err != nil {
			return nil, err
		}
		mailer = smtp
	} else {
		logging.Warn().Msg("EMAIL_USER not set; contact submissions will be logged, not emailed")
	}

	rules := contact.DefaultRules()
	rules.MinMessage = cfg.Contact.MinMessageLength
	rules.MaxMessage = cfg.Contact.MaxMessageLength

	spam := contact.DefaultSpamConfig()
	spam.MaxLinks = cfg.Spam.MaxLinks
	spam.MaxCapsLength = cfg.Spam.MaxCapsLength
	spam.CapsRatio = cfg.Spam.CapsRatio

	return contact.NewRelay(mailer,
		contact.WithStore(db),
		contact.WithRules(rules),
		contact.WithDetector(contact.NewDetector(spam)),
	), nil
}
