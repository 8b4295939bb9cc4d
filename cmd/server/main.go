package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/sjajred-backend/internal/api"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/app"
	"github.com/welldanyogia/sjajred-backend/internal/assist"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
	"github.com/welldanyogia/sjajred-backend/internal/config"
	"github.com/welldanyogia/sjajred-backend/internal/identity"
	"github.com/welldanyogia/sjajred-backend/internal/inquiry"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"github.com/welldanyogia/sjajred-backend/internal/notify"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	slog.Info("Starting Sjaj&Red API server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStorage(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Development mail catcher
	var sink *notify.Sink
	var sinkServer *smtp.Server
	if cfg.MailSinkAddr != "" {
		sink = notify.NewSink(notify.DefaultSinkCapacity, log)
		sinkServer = notify.NewSinkServer(sink, notify.SinkServerConfig{Addr: cfg.MailSinkAddr})
		go func() {
			log.Info("mail sink listening", slog.String("addr", cfg.MailSinkAddr))
			if err := sinkServer.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
				log.Error("mail sink stopped", slog.Any("error", err))
			}
		}()
	}

	// Inquiry store and engine
	store := inquiry.Open(ctx, inquiry.NewKVPersister(st.KV), inquiry.WithLogger(log))
	engineOpts := []inquiry.EngineOption{inquiry.WithEngineLogger(log)}

	var dispatcher *notify.Dispatcher
	if cfg.HandoffEnabled {
		dispatcher = notify.NewDispatcher(newSender(cfg, log), notify.DispatcherConfig{
			From:      cfg.SMTPFrom,
			QueueSize: cfg.HandoffQueueSize,
			Logger:    log,
		})
		engineOpts = append(engineOpts, inquiry.WithHandoff(dispatcher))
	}
	engine := inquiry.NewEngine(store, engineOpts...)

	cleaners := catalog.Open(ctx, st.KV, catalog.WithLogger(log))
	sessions := identity.NewService(st.KV, identity.WithTTL(cfg.SessionTTL), identity.WithLogger(log))
	if n, err := sessions.PurgeExpired(ctx); err != nil {
		log.Warn("failed to purge expired sessions", slog.Any("error", err))
	} else if n > 0 {
		log.Info("purged expired sessions", slog.Int("count", n))
	}

	assistant := assist.NewService(newGenerator(ctx, cfg, log), log)

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	go limiter.RunCleanup(ctx)

	routerCfg := &api.RouterConfig{
		DB:             st.DB,
		Inquiries:      engine,
		Catalog:        cleaners,
		Sessions:       sessions,
		Resolver:       sessions,
		Assistant:      assistant,
		Persistence:    store,
		Logger:         log,
		SecurityLogger: logger.NewSecurityLogger(),
		AllowedOrigins: middleware.ParseOrigins(cfg.AllowedOrigins, cfg.AppEnv),
		RateLimiter:    limiter,
	}
	if dispatcher != nil {
		routerCfg.Handoff = dispatcher
	}
	if sink != nil {
		routerCfg.MailSink = sink
	}
	e := api.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.APIPort)),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", slog.Any("error", err))
	}
	// Stop accepting inquiries before draining the handoff queue
	store.Close()
	if dispatcher != nil {
		dispatcher.Close()
	}
	if sinkServer != nil {
		if err := sinkServer.Close(); err != nil {
			log.Error("mail sink shutdown failed", slog.Any("error", err))
		}
	}

	slog.Info("Server stopped")
	return nil
}

// newSender picks the SMTP relay, falling back to the local mail sink and then to logging only
func newSender(cfg *config.Config, log *slog.Logger) notify.Sender {
	switch {
	case cfg.SMTPHost != "":
		sender := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort)
		log.Info("handoff mail via SMTP relay", slog.String("addr", sender.Addr()))
		return sender
	case cfg.MailSinkAddr != "":
		host, port, err := net.SplitHostPort(cfg.MailSinkAddr)
		if err == nil {
			if host == "" {
				host = "127.0.0.1"
			}
			if p, perr := strconv.Atoi(port); perr == nil {
				sender := notify.NewSMTPSender(host, p)
				log.Info("handoff mail via local mail sink", slog.String("addr", sender.Addr()))
				return sender
			}
		}
		log.Warn("invalid MAIL_SINK_ADDR, handoff mail will only be logged", slog.String("addr", cfg.MailSinkAddr))
	}
	return notify.NewLogSender(log)
}

func newGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) assist.Generator {
	if cfg.GeminiAPIKey == "" {
		log.Info("GEMINI_API_KEY not set, text assistance disabled")
		return assist.NoopGenerator{}
	}
	gen, err := assist.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Error("failed to create Gemini client, text assistance disabled", slog.Any("error", err))
		return assist.NoopGenerator{}
	}
	return gen
}
