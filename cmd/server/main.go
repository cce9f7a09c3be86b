// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/outreachly/outreach-backend/internal/app"
	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/controller"
	"github.com/outreachly/outreach-backend/internal/handler"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/middleware"
	"github.com/outreachly/outreach-backend/internal/queue"
	"github.com/outreachly/outreach-backend/internal/router"
	"github.com/outreachly/outreach-backend/internal/service"
	"github.com/outreachly/outreach-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("starting outreach server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	source, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure storage")
	}

	// With RabbitMQ the worker binary consumes sweep requests; without it
	// the server sweeps in-process.
	var q queue.Queue
	if cfg.AMQP.URL != "" {
		aq, err := queue.DialAMQP(cfg.AMQP.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer aq.Close()
		q = aq
		log.Info().Msg("connected to RabbitMQ")
	} else {
		mq := queue.NewInMemoryQueue(log)
		if err := queue.StartFollowUpSweepSubscriber(ctx, mq, cfg.AMQP.SweepQueue, a.FollowUpService(), log); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe sweep consumer")
		}
		q = mq
		log.Info().Msg("using in-memory queue, follow-up sweeps run in-process")
		if a.Redis == nil {
			log.Warn().Msg("redis disabled, follow-up sweeps are only exclusive within this process")
		}
	}

	emailService := &service.EmailService{
		EmailRepo:    a.Emails,
		ProspectRepo: a.Prospects,
		Generator:    a.Generator,
		Sender:       a.Sender,
		Campaign:     cfg.Campaign,
		TrackingURL:  cfg.Tracking.BaseURL,
		Log:          log.WithComponent("email"),
	}

	controllers := router.Controllers{
		Email: &controller.EmailController{EmailService: emailService, Log: log},
		Tracking: &controller.TrackingController{
			TrackingService: &service.TrackingService{EmailRepo: a.Emails, Log: log.WithComponent("tracking")},
		},
		Import: &controller.ImportController{
			ImportService:   &service.ImportService{Source: source, ProspectRepo: a.Prospects, Log: log.WithComponent("import")},
			ProspectService: &service.ProspectService{ProspectRepo: a.Prospects},
			Log:             log,
		},
		FollowUp: &controller.FollowUpController{Queue: q, Topic: cfg.AMQP.SweepQueue, Log: log},
	}

	r := router.New(controllers, handler.New(a.DB, a.Redis, log), middleware.New(log), cfg.CORS.AllowedOrigins)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // send-email waits on the model and the mail server
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}
