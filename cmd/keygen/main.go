package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/stockwise-ai/stockwise-backend/internal/apikeys"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/db"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/migrate"
)

// keygen issues and revokes hashed API keys. The plaintext key is
// printed exactly once at issue time and cannot be recovered later.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "keygen"})

	_ = godotenv.Load()

	name := flag.String("name", "", "key name to issue")
	revoke := flag.String("revoke", "", "key name to revoke")
	flag.Parse()

	if (*name == "") == (*revoke == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -name or -revoke is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "keygen",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	repo := apikeys.NewRepository(dbClient.DB())

	if *revoke != "" {
		if err := repo.Revoke(ctx, *revoke); err != nil {
			logg.Error(ctx, "failed to revoke key", err)
			os.Exit(1)
		}
		fmt.Println("revoked key:", *revoke)
		return
	}

	plaintext, err := repo.Issue(ctx, *name)
	if err != nil {
		logg.Error(ctx, "failed to issue key", err)
		os.Exit(1)
	}

	fmt.Println("issued key:", *name)
	fmt.Println(plaintext)
	fmt.Println("store it now; the plaintext is not recoverable")
}
