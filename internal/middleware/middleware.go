package middleware

import (
	"github.com/outreachly/outreach-backend/internal/logger"
)

// Middleware holds the HTTP middleware shared by every route
type Middleware struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Middleware {
	return &Middleware{log: log.WithComponent("http")}
}
