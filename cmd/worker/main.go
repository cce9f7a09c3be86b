package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/outreachly/outreach-backend/internal/app"
	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/queue"
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Follow-up worker for the outreach service",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume sweep requests and run the periodic follow-up sweep",
	RunE:  runWorker,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single follow-up sweep and exit",
	RunE:  runOnce,
}

var interval time.Duration

func init() {
	runCmd.Flags().DurationVar(&interval, "interval", 0, "sweep interval (defaults to followup.interval)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, error) {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).WithComponent("worker")
	return app.Open(ctx, cfg, log)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	log, cfg := a.Log, a.Config

	sweeper := a.FollowUpService()

	var closed <-chan error
	if cfg.AMQP.URL != "" {
		q, err := queue.DialAMQP(cfg.AMQP.URL, log)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer q.Close()

		if err := queue.StartFollowUpSweepSubscriber(ctx, q, cfg.AMQP.SweepQueue, sweeper, log); err != nil {
			return fmt.Errorf("failed to consume %s: %w", cfg.AMQP.SweepQueue, err)
		}
		errs := make(chan error, 1)
		go func() {
			if amqpErr, ok := <-q.NotifyClose(); ok && amqpErr != nil {
				errs <- amqpErr
			}
		}()
		closed = errs
		log.Info().Str("queue", cfg.AMQP.SweepQueue).Msg("consuming sweep requests")
	}

	every := interval
	if every <= 0 {
		every = cfg.FollowUp.Interval
	}
	go sweeper.Run(ctx, every)
	log.Info().Dur("interval", every).Dur("threshold", cfg.FollowUp.Threshold).Msg("worker running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		log.Info().Msg("shutting down worker...")
		return nil
	case err := <-closed:
		return fmt.Errorf("RabbitMQ connection closed: %w", err)
	}
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.FollowUpService().SweepOnce(ctx, "cli")
}
