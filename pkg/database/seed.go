package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// SeedConfig holds configuration for seeding prompts
type SeedConfig struct {
	Start       time.Time
	Cadence     time.Duration
	RevealAfter time.Duration
	Prompts     []string
}

// DefaultSeedConfig schedules one prompt a week starting at the most recent
// Monday 00:00 UTC, revealed six days later.
func DefaultSeedConfig(now time.Time) *SeedConfig {
	now = now.UTC()
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	return &SeedConfig{
		Start:       monday,
		Cadence:     7 * 24 * time.Hour,
		RevealAfter: 6 * 24 * time.Hour,
		Prompts: []string{
			"What made you laugh this week?",
			"Share a photo-worthy moment you didn't photograph.",
			"What's one small thing you're proud of lately?",
			"If this week had a soundtrack, what song would open it?",
			"What's something you changed your mind about recently?",
			"Describe your ideal lazy Sunday.",
			"Who surprised you this week, and how?",
			"What are you looking forward to next month?",
		},
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Inserted int
	Skipped  int
}

// SeedPrompts inserts the configured prompts, one per cadence step. Slots that
// already hold a prompt with the same activation time are skipped.
func SeedPrompts(ctx context.Context, db *Database, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig(time.Now())
	}
	if cfg.RevealAfter < 0 || cfg.Cadence <= 0 {
		return nil, fmt.Errorf("invalid seed schedule")
	}

	result := &SeedResult{}
	log.Println("Seeding prompts...")

	for i, content := range cfg.Prompts {
		activeAt := cfg.Start.Add(time.Duration(i) * cfg.Cadence)
		revealAt := activeAt.Add(cfg.RevealAfter)

		var exists int
		q, args := Rebind(db.Dialect, `SELECT COUNT(*) FROM prompts WHERE active_at = $1`, []any{activeAt.UnixMilli()})
		if err := db.Conn.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check prompt slot: %w", err)
		}
		if exists > 0 {
			result.Skipped++
			continue
		}

		q, args = Rebind(db.Dialect, `
			INSERT INTO prompts (id, content, active_at, reveal_at, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			[]any{uuid.New(), content, activeAt.UnixMilli(), revealAt.UnixMilli(), time.Now().UnixMilli()})
		if _, err := db.Conn.ExecContext(ctx, q, args...); err != nil {
			return nil, fmt.Errorf("insert prompt: %w", err)
		}
		result.Inserted++
	}

	log.Printf("Prompt seeding completed: %d inserted, %d skipped", result.Inserted, result.Skipped)
	return result, nil
}
