package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/digipraman/loantrack/internal/config"
	pgstore "github.com/digipraman/loantrack/internal/store/pg"
)

// Applies the embedded schema migrations. Usage:
//
//	migrate [-config path] [up|down]
func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (fallback: $CONFIG_PATH)")
		envFile    = flag.String("env-file", ".env", "path to .env (loaded when present)")
	)
	flag.Parse()

	if st, err := os.Stat(*envFile); err == nil && !st.IsDir() {
		_ = godotenv.Load(*envFile)
	}

	action := "up"
	if args := flag.Args(); len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("no DSN configured (storage.dsn / STORAGE_DSN)")
	}

	ctx := context.Background()
	store, err := pgstore.New(ctx, cfg.Storage.DSN, pgstore.Tuning{})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer store.Close()

	switch action {
	case "up":
		if err := store.RunMigrations(ctx); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("up migrations completed")
	case "down":
		if err := store.RunMigrationsDown(ctx); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("down migrations completed")
	default:
		log.Fatalf("unknown action %q (want up or down)", action)
	}
}
