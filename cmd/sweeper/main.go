// Command sweeper runs a single cleanup pass over the expired token tables
// and exits. Intended to be scheduled externally (cron, systemd timer).
package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()

	sweeper := services.NewSweepService(db, rm, logger)
	if _, err := sweeper.Sweep(ctx); err != nil {
		logger.Error(ctx, "sweep failed", "error", err)
		os.Exit(1)
	}

}
