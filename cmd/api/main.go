package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/wheeldeal/wheeldeal-backend/internal/config"
	"github.com/wheeldeal/wheeldeal-backend/internal/db"
	"github.com/wheeldeal/wheeldeal-backend/internal/server"
)

// set via -ldflags at build time
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	srv := server.New(nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	// Start serving before the DB is up; repositories answer 503 until
	// SetDB swaps the live connection in.
	go func() {
		log.Printf("starting server on %s (sha=%s)", addr, gitSHA)
		errCh <- srv.Start(addr)
	}()

	go func() {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("config load error: %v", err)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := db.Migrate(conn); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
		log.Printf("database ready")
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
