package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/adapter"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/archive"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/bridge"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/config"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/httpserver"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	// A key saved through the shared store takes over when the environment
	// does not provide one.
	if cfg.CerebrasKey == "" {
		if v, found, serr := st.Get(context.Background(), store.KeyAPIKey); serr == nil && found && v != "" {
			cfg.CerebrasKey = v
			log.Printf("using chat api key from store")
		}
	}

	var archiver bridge.Archiver
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" && cfg.SupabaseBucket != "" {
		a, aerr := archive.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if aerr != nil {
			log.Printf("supabase archive disabled: %v", aerr)
		} else {
			archiver = a
		}
	}

	bs := bridge.NewServer(adapter.New(cfg), st, archiver, cfg.VoiceName)
	e := httpserver.New(bs)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("coordinator listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
