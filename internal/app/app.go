// Package app opens the connections and collaborators shared by the
// server and worker binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/content"
	"github.com/outreachly/outreach-backend/internal/db"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/mailer"
	"github.com/outreachly/outreach-backend/internal/repository"
	"github.com/outreachly/outreach-backend/internal/service"
)

type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *sqlx.DB
	Redis  *db.Redis // nil unless redis.enabled

	Emails    *repository.EmailRepository
	Prospects *repository.ProspectRepository
	Generator content.Generator
	Sender    mailer.Sender
}

// Open connects to Postgres (and Redis when enabled) and builds the
// mail and content collaborators
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to PostgreSQL")

	a := &App{
		Config:    cfg,
		Log:       log,
		DB:        conn,
		Emails:    &repository.EmailRepository{DB: conn},
		Prospects: &repository.ProspectRepository{DB: conn},
		Generator: content.NewLLMGenerator(cfg.LLM),
	}

	if cfg.Redis.Enabled {
		rdb, err := db.NewRedis(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		log.Info().Msg("connected to Redis")
	}

	sender, err := mailer.New(ctx, cfg.Mail)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to configure mail provider: %w", err)
	}
	a.Sender = sender
	log.Info().Str("provider", cfg.Mail.Provider).Msg("mail transport ready")

	return a, nil
}

// FollowUpService builds the sweeper; it shares the Redis lock when
// Redis is enabled so server and worker never sweep at the same time
func (a *App) FollowUpService() *service.FollowUpService {
	svc := &service.FollowUpService{
		EmailRepo:    a.Emails,
		ProspectRepo: a.Prospects,
		Generator:    a.Generator,
		Sender:       a.Sender,
		Campaign:     a.Config.Campaign,
		TrackingURL:  a.Config.Tracking.BaseURL,
		Log:          a.Log.WithComponent("followup"),
		Threshold:    a.Config.FollowUp.Threshold,
		LockTTL:      a.Config.FollowUp.LockTTL,
	}
	if a.Redis != nil {
		svc.Locker = redisLocker{a.Redis}
	}
	return svc
}

type redisLocker struct {
	r *db.Redis
}

func (l redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (service.Lock, bool, error) {
	lock, ok, err := l.r.TryLock(ctx, key, ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock, true, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	a.DB.Close()
}
