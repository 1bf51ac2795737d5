package main

import (
	"context"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/campushub/portal/backend/internal/infrastructure/clients/postgres"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
	"github.com/campushub/portal/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT,
	subject    TEXT,
	course     TEXT,
	semester   TEXT,
	file_url   TEXT,
	downloads  INTEGER NOT NULL DEFAULT 0,
	likes      INTEGER NOT NULL DEFAULT 0,
	tags       TEXT[],
	user_id    UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id                UUID PRIMARY KEY,
	title             TEXT NOT NULL,
	description       TEXT,
	location          TEXT,
	event_date        TIMESTAMPTZ NOT NULL,
	current_attendees INTEGER NOT NULL DEFAULT 0,
	max_attendees     INTEGER,
	tags              TEXT[],
	user_id           UUID,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lost_found (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT,
	type         TEXT NOT NULL CHECK (type IN ('lost', 'found')),
	status       TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'resolved')),
	location     TEXT,
	image_url    TEXT,
	contact_info TEXT,
	user_id      UUID,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_analytics (
	id           UUID PRIMARY KEY,
	query        TEXT NOT NULL,
	content_type TEXT NOT NULL,
	result_count INTEGER NOT NULL,
	failed_types TEXT[] NOT NULL DEFAULT '{}',
	latency_ms   INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_event_date ON events (event_date);
CREATE INDEX IF NOT EXISTS idx_lost_found_created_at ON lost_found (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_analytics_zero ON search_analytics (created_at DESC) WHERE result_count = 0;
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("campus-portal-seed", cfg.Log.Env, cfg.Log.Level)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := goqu.New("postgres", pgClient.DB())

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE notes, events, lost_found, search_analytics`); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	now := time.Now().UTC()
	day := 24 * time.Hour
	author := uuid.New().String()
	capacity := 120

	notes := []goqu.Record{
		{"id": uuid.New().String(), "title": "Calculus I: limits and continuity", "content": "Epsilon-delta proofs with worked examples.", "subject": "Mathematics", "course": "MATH101", "semester": "Fall 2026", "downloads": 58, "likes": 14, "tags": pq.StringArray{"calculus", "exam prep"}, "user_id": author, "created_at": now.Add(-3 * day)},
		{"id": uuid.New().String(), "title": "Organic chemistry reaction map", "content": "Substitution and elimination at a glance.", "subject": "Chemistry", "course": "CHEM210", "semester": "Fall 2026", "downloads": 31, "likes": 9, "tags": pq.StringArray{"organic"}, "user_id": author, "created_at": now.Add(-2 * day)},
		{"id": uuid.New().String(), "title": "Data structures cheat sheet", "content": "Heaps, tries and balanced trees.", "subject": "Computer Science", "course": "CS201", "semester": "Spring 2026", "downloads": 102, "likes": 40, "tags": pq.StringArray{"algorithms", "library"}, "user_id": author, "created_at": now.Add(-day)},
	}
	events := []goqu.Record{
		{"id": uuid.New().String(), "title": "Autumn career fair", "description": "Meet employers from across the region.", "location": "Main hall", "event_date": now.Add(10 * day), "current_attendees": 45, "max_attendees": capacity, "tags": pq.StringArray{"careers"}, "user_id": author, "created_at": now.Add(-5 * day)},
		{"id": uuid.New().String(), "title": "Library study marathon", "description": "Quiet group revision with free coffee.", "location": "Central library", "event_date": now.Add(3 * day), "current_attendees": 12, "max_attendees": nil, "tags": pq.StringArray{"study"}, "user_id": author, "created_at": now.Add(-4 * day)},
	}
	lostFound := []goqu.Record{
		{"id": uuid.New().String(), "title": "Blue backpack", "description": "Left on the second floor, has a calculus textbook inside.", "type": "lost", "status": "active", "location": "Central library", "contact_info": "owner@campus.example", "user_id": author, "created_at": now.Add(-6 * time.Hour)},
		{"id": uuid.New().String(), "title": "Student ID card", "description": "Found near the vending machines.", "type": "found", "status": "resolved", "location": "Science building", "contact_info": nil, "user_id": author, "created_at": now.Add(-2 * day)},
	}

	for table, rows := range map[string][]goqu.Record{"notes": notes, "events": events, "lost_found": lostFound} {
		values := make([]interface{}, len(rows))
		for i, r := range rows {
			values[i] = r
		}
		query, _, err := db.Insert(table).Rows(values...).ToSQL()
		if err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("Failed to build insert")
		}
		if _, err := pgClient.DB().ExecContext(ctx, query); err != nil {
			log.Error().Err(err).Str("table", table).Msg("Failed to seed table")
			continue
		}
		log.Info().Str("table", table).Int("rows", len(rows)).Msg("Seeded table")
	}
}
