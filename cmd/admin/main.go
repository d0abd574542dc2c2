package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/rms/internal/admin"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/config"
	"github.com/dmitrijs2005/rms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rms/internal/server/services"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogBackend, os.Stderr)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	us := services.NewUserService(db, rm, auth.NewPasswordHasher(cfg.BcryptCost), logger)

	identity, err := admin.Bootstrap(ctx, bufio.NewReader(os.Stdin), os.Stdout, us)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s %s (%s)\n", identity.Role, identity.Email, identity.ID)
	return nil
}
