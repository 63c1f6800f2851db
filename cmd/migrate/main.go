package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"chatwave/config"
	"chatwave/internal/repository"
	"chatwave/pkg/database"
)

const usage = `Database CLI

Usage:
  migrate [command]

Commands:
  up       Create or update the schema
  status   Show database connection status
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch cmd {
	case "up":
		if err := repository.InitSchema(ctx, db); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		fmt.Println("schema up to date")
	case "status":
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("unreachable: %v", err)
		}
		fmt.Println("database reachable")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
