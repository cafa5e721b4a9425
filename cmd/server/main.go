// Command main is the entry point for the Foodgram backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/server"
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API with favorites, shopping carts and author subscriptions
// @contact.name Foodgram maintainers
// @contact.email support@foodgram.example.com

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type "Token" followed by a space and the auth token.

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-stop.Done()
		log.Printf("foodgram: shutting down (timeout %s)", shutdownTimeout)
		ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("foodgram: listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.Env, cfg.StorageDriver)
	if err := srv.Start(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
