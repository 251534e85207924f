package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"dealerdash/internal/api"
	"dealerdash/internal/core"
	"dealerdash/internal/store"
)

func main() {
	dbDir := os.Getenv("DB_DIR")
	if dbDir == "" {
		dbDir = "/var/lib/dealerdash"
	}
	dbPath := dbDir + "/dealerdash.db"

	// Ensure DB directory exists
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		log.Printf("Warning: failed to create db directory: %v", err)
	}

	// Initialize Store
	st, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open DB: %v", err)
	}

	srv := api.NewServer(st)

	// Start Background Scheduler (dashboard snapshots)
	go startScheduler(core.NewDashboardService(st))

	// Start HTTP Server
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8880"
	}
	log.Printf("dealerdash backend listening on %s\n", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func startScheduler(ds *core.DashboardService) {
	log.Println("Starting background scheduler...")

	// Snapshot immediately on startup so a fresh install has dashboards
	go func() {
		log.Println("[Scheduler] Running initial dashboard refresh...")
		if err := ds.RefreshAll(); err != nil {
			log.Printf("Dashboard refresh error: %v", err)
		}
	}()

	refreshTicker := time.NewTicker(15 * time.Minute)

	for range refreshTicker.C {
		log.Println("[Scheduler] Refreshing dashboard snapshots...")
		if err := ds.RefreshAll(); err != nil {
			log.Printf("Dashboard refresh error: %v", err)
		}
	}
}
