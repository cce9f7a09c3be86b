package handler

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/outreachly/outreach-backend/internal/db"
	"github.com/outreachly/outreach-backend/internal/logger"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves the operational endpoints
type Handler struct {
	db  pinger
	rdb healthChecker // nil when Redis is disabled
	log *logger.Logger
}

// New creates a Handler; rdb may be nil
func New(conn *sqlx.DB, rdb *db.Redis, log *logger.Logger) *Handler {
	h := &Handler{db: conn, log: log.WithComponent("health")}
	if rdb != nil {
		h.rdb = rdb
	}
	return h
}
