// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/outreachly/outreach-backend/internal/config"
	"github.com/outreachly/outreach-backend/internal/db"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/repository"
	"github.com/outreachly/outreach-backend/internal/service"
	"github.com/outreachly/outreach-backend/internal/storage"
)

// Imports a local prospect CSV through the same path as /api/process-csv.
//
//	seeder seed/prospects.csv
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: seeder <file.csv>")
		os.Exit(2)
	}
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).WithComponent("seeder")

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	path := os.Args[1]
	svc := &service.ImportService{
		Source:       storage.NewLocalSource(filepath.Dir(path)),
		ProspectRepo: &repository.ProspectRepository{DB: conn},
		Log:          log,
	}

	res, err := svc.ImportCSV(context.Background(), filepath.Base(path))
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("seeding failed")
	}
	log.Info().Str("file", path).Int("inserted", res.InsertedCount).Msg(res.Message)
}
