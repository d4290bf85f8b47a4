package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"circles/config"
	"circles/internal/domain/user"
	"circles/internal/repository"
	"circles/internal/services"
	"circles/pkg/database"
)

const usage = `
Circles - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up            Create the schema (idempotent)
  status        Show database connection status and table sizes
  seed-prompts  Schedule the default weekly prompts
  dev-token     Print a signed identity token for local testing

Flags:
  -subject string   Identity subject for dev-token (default "dev|local")
  -name string      Display name for dev-token (default "Dev User")
  -ttl duration     Lifetime of the dev-token (default 24h)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-prompts
  go run cmd/migrate/main.go -subject "dev|ada" -name Ada dev-token
`

func main() {
	subject := flag.String("subject", "dev|local", "Identity subject for dev-token")
	name := flag.String("name", "Dev User", "Display name for dev-token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Lifetime of the dev-token")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	cfg := config.LoadConfig()

	if command == "dev-token" {
		runDevToken(cfg, *subject, *name, *ttl)
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn := repository.NewConn(db.Conn, db.Dialect)

	switch command {
	case "up":
		runMigrationsUp(ctx, conn)
	case "status":
		showStatus(ctx, db, conn)
	case "seed-prompts":
		runSeedPrompts(ctx, db, conn)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(ctx context.Context, conn *repository.Conn) {
	log.Println("Creating schema...")

	if err := repository.InitSchema(ctx, conn); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema is up to date")
}

func showStatus(ctx context.Context, db *database.Database, conn *repository.Conn) {
	log.Printf("Checking %s database status...", db.Dialect)

	if err := db.HealthCheck(ctx); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	counts, err := repository.TableCounts(ctx, conn)
	if err != nil {
		log.Fatalf("Failed to count tables (run 'up' first?): %v", err)
	}
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		log.Printf("Table %-20s %d rows", table, counts[table])
	}
}

func runSeedPrompts(ctx context.Context, db *database.Database, conn *repository.Conn) {
	if err := repository.InitSchema(ctx, conn); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	result, err := database.SeedPrompts(ctx, db, database.DefaultSeedConfig(time.Now()))
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seed Summary:")
	log.Printf("   - Prompts inserted: %d", result.Inserted)
	log.Printf("   - Slots skipped: %d", result.Skipped)
}

func runDevToken(cfg *config.Config, subject, name string, ttl time.Duration) {
	identity := services.NewIdentityService(nil, cfg.IdentitySecret, cfg.IdentityIssuer)
	token, err := identity.IssueToken(user.Identity{Subject: subject, DisplayName: name}, ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
