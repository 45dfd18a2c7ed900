package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/outreach/internal/config"
	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/db/migrations"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/internal/rewrite"
	"github.com/dmitrymomot/outreach/internal/server"
	"github.com/dmitrymomot/outreach/pkg/db"
	"github.com/dmitrymomot/outreach/pkg/health"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
	"github.com/dmitrymomot/outreach/pkg/mailer/resend"
	"github.com/dmitrymomot/outreach/pkg/mailer/s3store"
	"github.com/dmitrymomot/outreach/pkg/mailer/smtp"
	"github.com/dmitrymomot/outreach/pkg/redis"
)

const ledgerCachePrefix = "outreach:ledger:"

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	pool       *pgxpool.Pool
	redis      goredis.UniversalClient
	contacts   contact.Store
	ledger     ledger.Ledger
	templates  mailer.TemplateStore
	subjects   mailer.SubjectMap
	dispatcher *dispatch.Dispatcher
	location   *time.Location
	readiness  health.Checks
	closers    []server.Hook
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.Sentry.MinLevel = slog.LevelWarn
	log := logger.NewWithSentry(cfg.Sentry, cfg.Log.SlogLevel(), logger.DefaultExtractors()...)
	return cfg, log, nil
}

// newApp connects to every backing service. Callers must run close.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, log: log, readiness: health.Checks{}}
	a.closers = append(a.closers, logger.Shutdown(2*time.Second))
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	if a.location, err = cfg.Scheduler.Location(); err != nil {
		return nil, err
	}

	a.pool, err = db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, db.Shutdown(a.pool))
	a.readiness["postgres"] = db.Healthcheck(a.pool)

	if err := db.Migrate(ctx, a.pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Redis.URL != "" {
		a.redis, err = redis.Open(ctx, cfg.Redis.URL, redis.WithPoolSize(cfg.Redis.PoolSize))
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, redis.Shutdown(a.redis))
		a.readiness["redis"] = redis.Healthcheck(a.redis)
	}

	a.contacts = contact.NewRepository(a.pool)
	a.ledger = a.buildLedger()

	if a.templates, a.subjects, err = buildTemplates(cfg.Templates); err != nil {
		return nil, err
	}

	sender, err := buildSender(cfg.Mail)
	if err != nil {
		return nil, err
	}

	opts := []dispatch.Option{
		dispatch.WithFrom(cfg.Mail.SenderName, cfg.Mail.SenderEmail),
		dispatch.WithRewriter(rewrite.New(cfg.AI)),
		dispatch.WithLogger(log),
	}
	if a.redis != nil {
		opts = append(opts, dispatch.WithClaimer(dispatch.NewRedisClaims(a.redis, cfg.Scheduler.ClaimTTL)))
	}
	a.dispatcher = dispatch.New(a.templates, sender, a.ledger, opts...)

	return a, nil
}

func (a *app) buildLedger() ledger.Ledger {
	pg := ledger.NewPostgres(a.pool)
	var cache ledger.Cache
	if a.redis != nil {
		cache = ledger.NewRedisCache(a.redis, ledgerCachePrefix, a.cfg.Ledger.CacheTTL)
	} else {
		cache = ledger.NewMemoryCache(a.cfg.Ledger.CacheTTL)
	}
	return ledger.NewCached(pg, cache, ledger.WithCacheLogger(a.log))
}

func buildTemplates(cfg config.TemplatesConfig) (mailer.TemplateStore, mailer.SubjectMap, error) {
	subjectsPath := cfg.SubjectsFile

	var store mailer.TemplateStore
	switch cfg.Source {
	case config.SourceS3:
		s, err := s3store.New(cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("template store: %w", err)
		}
		store = s
	default:
		store = mailer.NewDirStore(cfg.Dir)
		if subjectsPath != "" && !filepath.IsAbs(subjectsPath) {
			subjectsPath = filepath.Join(cfg.Dir, subjectsPath)
		}
	}

	subjects, err := mailer.LoadSubjectsFile(subjectsPath)
	if err != nil {
		return nil, nil, err
	}
	return store, subjects, nil
}

func buildSender(cfg config.MailConfig) (mailer.Sender, error) {
	if cfg.Provider == config.ProviderSMTP {
		s, err := smtp.New(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("smtp sender: %w", err)
		}
		return s, nil
	}
	s, err := resend.New(cfg.Resend)
	if err != nil {
		return nil, fmt.Errorf("resend sender: %w", err)
	}
	return s, nil
}

// close runs the shutdown hooks in reverse order of registration.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

// shutdownHooks returns the close steps for server.Run, newest first.
func (a *app) shutdownHooks() []server.Hook {
	hooks := make([]server.Hook, 0, len(a.closers))
	for i := len(a.closers) - 1; i >= 0; i-- {
		hooks = append(hooks, a.closers[i])
	}
	return hooks
}
