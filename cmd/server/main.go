package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"studentclubs/internal/adapters/catalog"
	emailPkg "studentclubs/internal/adapters/email"
	"studentclubs/internal/adapters/enrollment"
	web "studentclubs/internal/adapters/http"
	"studentclubs/internal/adapters/http/middleware"
	"studentclubs/internal/adapters/http/perf"
	"studentclubs/internal/adapters/manifest"
	"studentclubs/internal/adapters/storage"
	clubStore "studentclubs/internal/adapters/storage/clubs"
	"studentclubs/internal/application/orchestrators"
	"studentclubs/internal/application/projections"
	"studentclubs/internal/platform/config"
	"studentclubs/internal/platform/i18n"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}
	cardSettings, err := m.Settings(cfg.EthosAPIKey, cfg.Production())
	if err != nil {
		return err
	}
	if cardSettings.UsesPlaceholderKey() {
		slog.Warn("ethos_api_key_placeholder", "hint", "set CLUBS_ETHOS_API_KEY or the manifest's ethos_api_key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var (
		source    catalog.Source
		submitter enrollment.Submitter
	)
	switch cfg.DataSource {
	case config.SourcePipeline:
		source = &catalog.PipelineSource{
			BaseURL:   cfg.DataConnectURL,
			Pipeline:  m.Card().Pipeline,
			CardID:    cfg.CardID,
			Client:    httpClient,
			Collector: collector,
		}
		submitter = &enrollment.EthosSubmitter{
			BaseURL:    cfg.EthosURL,
			CardPrefix: cfg.CardPrefix,
			CardID:     cfg.CardID,
			APIKey:     cardSettings.EthosAPIKey,
			Client:     httpClient,
			Collector:  collector,
		}
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
		store := clubStore.NewSQLiteStore(timedDB)
		source = &catalog.SQLiteSource{Store: store, Collector: collector}
		submitter = &enrollment.SQLiteSubmitter{Store: store, Collector: collector, Now: time.Now, NewID: uuid.NewString}
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.Production() && cfg.NotifyEmail != "" {
			slog.Warn("email_delivery_disabled", "hint", "set CLUBS_RESEND_KEY")
		}
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return err
	}
	if err := bundle.Register(); err != nil {
		return err
	}

	registry := orchestrators.NewCardRegistry(orchestrators.CardRegistryDeps{
		Template: orchestrators.CardSessionDeps{
			Source:        source,
			Submitter:     submitter,
			Sender:        sender,
			NotifyTo:      cfg.NotifyEmail,
			Settings:      cardSettings,
			PreviewMode:   cfg.PreviewMode,
			FetchTimeout:  cfg.HTTPTimeout,
			SubmitTimeout: cfg.HTTPTimeout,
		},
		IdleTimeout: cfg.SessionIdle,
		GenerateID:  uuid.NewString,
	})
	stopRefresh := orchestrators.StartRefreshScheduler(ctx, registry, orchestrators.RefreshSchedulerConfig{
		Interval: cfg.RefreshInterval,
		Enabled:  cfg.RefreshInterval > 0,
	})
	defer stopRefresh()

	var csrfKey []byte
	if cfg.CSRFKey != "" {
		csrfKey = []byte(cfg.CSRFKey)
	} else {
		slog.Warn("csrf_key_random", "hint", "set CLUBS_CSRF_KEY so forms survive a restart")
	}

	card := m.Card()
	handler := web.NewMux(web.Deps{
		Registry:       registry,
		Resolver:       i18n.NewResolver(bundle),
		Meta:           projections.CardMeta{Title: card.Title, Description: card.Description, Publisher: m.Publisher},
		Collector:      collector,
		Identify:       middleware.BearerIdentity(cfg.DevBannerID),
		CSRFKey:        csrfKey,
		Production:     cfg.Production(),
		TrustedOrigins: cfg.TrustedOrigins,
		FrameAncestors: cfg.FrameAncestors,
		SlowRequest:    cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "source", cfg.DataSource, "card", card.Type)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	registry.Wait()
	return nil
}

// openDB opens the development database with WAL mode, foreign keys and a busy timeout.
func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := storage.InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	if !cfg.Production() {
		if err := storage.SeedDevelopment(ctx, db, cfg.DevBannerID); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("development_seed_loaded", "banner_id", cfg.DevBannerID)
	}
	slog.Info("database_ready", "path", cfg.DBPath)
	return db, nil
}
