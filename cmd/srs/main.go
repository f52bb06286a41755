package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/studygenius/srs/internal/config"
	"github.com/studygenius/srs/internal/review"
	"github.com/studygenius/srs/internal/session"
	"github.com/studygenius/srs/internal/sm2"
	"github.com/studygenius/srs/internal/storage"
	srssync "github.com/studygenius/srs/internal/sync"
	"github.com/studygenius/srs/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("srs", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to a YAML config file")
	flags.String("db", "srs.db", "Path to the SQLite database file")
	flags.String("listen", ":8080", "Address for the web UI")
	flags.String("repos-dir", "repos", "Directory for mirrored git deck sources")
	flags.Int("max-interval", 36500, "Cap on review intervals in days (0 = uncapped)")
	flags.Int("max-cards", 20, "Hard cap on cards per study session")
	flags.Int("max-new-cards", 10, "Cap on new cards introduced per session")
	addSource := flags.String("add-source", "", "Register a deck source (directory or git URL)")
	runSync := flags.Bool("sync", false, "Reconcile all deck sources with the database")
	serve := flags.Bool("serve", false, "Start the web UI")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if *addSource != "" {
		typ := srssync.DetectType(*addSource)
		if _, err := db.InsertSource(*addSource, typ); err != nil {
			log.Fatalf("Failed to add source %s: %v", *addSource, err)
		}
		fmt.Printf("Added %s source: %s\n", typ, *addSource)
	}

	if *runSync {
		srssync.Run(db, cfg.ReposDir, time.Now())
	}

	if *serve {
		scheduler := sm2.New(sm2.Config{MaxInterval: cfg.MaxInterval})
		reviews := review.NewService(db, scheduler)
		planner := session.NewPlanner(cfg.Session.MaxCards, cfg.Session.MaxNewCards)

		srv := web.NewServer(db, reviews, planner, cfg.ReposDir)
		log.Printf("Listening on %s", cfg.Listen)
		log.Fatal(http.ListenAndServe(cfg.Listen, srv))
	}

	if *addSource == "" && !*runSync {
		printSummary(db)
	}
}

// printSummary reports what a study session would look like right now.
func printSummary(db *storage.DB) {
	due, fresh, err := db.CountDue(time.Now())
	if err != nil {
		log.Fatalf("Failed to count cards: %v", err)
	}
	fmt.Printf("%d cards due, %d new cards waiting.\n", due, fresh)
	if due+fresh > 0 {
		fmt.Println("Run with --serve to start reviewing.")
	}
}
