package main

import (
	"context"
	"database/sql"

	"github.com/ahsanfayaz52/hopperhelps/internal/ai"
	"github.com/ahsanfayaz52/hopperhelps/internal/auth"
	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/ahsanfayaz52/hopperhelps/internal/store"
)

// app holds the wired services shared by the commands.
type app struct {
	conn        *sql.DB
	users       *store.UserRepository
	auth        *auth.Service
	analyzer    *ai.MoodAnalyzer
	recommender *ai.Recommender
	sync        *journal.Synchronizer
	stale       *journal.StaleSet
	journal     *journal.Service
}

func newApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*app, error) {
	conn, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.OpenAIKey == "" {
		log.Warn(ctx, "OPENAI_KEY is not set, mood analysis will fail")
	}
	client := ai.NewClient(cfg)
	analyzer := ai.NewMoodAnalyzer(client, cfg.OpenAIModel, cfg.AnalyzerTimeout)
	recommender := ai.NewRecommender(client, cfg.OpenAIModel, cfg.AnalyzerTimeout)

	notes := store.NewNoteRepository(conn)
	summaries := store.NewSummaryRepository(conn)
	users := store.NewUserRepository(conn)

	stale := journal.NewStaleSet()
	syncer := journal.NewSynchronizer(notes, summaries, journal.PolicyFromConfig(cfg))
	journalSvc := journal.NewService(notes, summaries, store.NewDayReader(conn), analyzer, syncer, stale, log)

	return &app{
		conn:        conn,
		users:       users,
		auth:        auth.NewService(users, auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)),
		analyzer:    analyzer,
		recommender: recommender,
		sync:        syncer,
		stale:       stale,
		journal:     journalSvc,
	}, nil
}

func (a *app) Close() error {
	return a.conn.Close()
}
