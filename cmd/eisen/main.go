package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"eisen/internal/api"
	"eisen/internal/config"
	"eisen/internal/session"
	"eisen/internal/storage"
	"eisen/internal/task"
	"eisen/internal/ui"
)

func main() {
	// Optional; a missing .env just means the config file decides.
	godotenv.Load()

	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if url := os.Getenv("EISEN_API_URL"); url != "" {
		cfg.APIURL = url
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sess, err := session.Load(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load session: %v\n", err)
		os.Exit(1)
	}

	// With no API URL the sqlite store doubles as the task backend and the
	// app runs without an account.
	var backend task.Backend = store
	var client *api.Client
	if cfg.APIURL != "" {
		client = api.NewClient(cfg.APIURL, sess.Token)
		backend = client
	}

	if err := ui.Run(backend, client, sess, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}
