package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/file"
	"quizdesk/internal/infra/postgres"
)

// backends holds the uncached stores selected by config.
type backends struct {
	documents   app.DocumentStore
	submissions app.SubmissionStore
	pool        *pgxpool.Pool
	db          *bun.DB
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// openBackends connects the configured stores. Submissions go to Postgres when
// a URL is configured and to the data directory otherwise; quiz documents
// follow quiz.source.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.db = openBun(cfg.Postgres.URL)
		if err := b.db.PingContext(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		b.submissions = postgres.NewSubmissionStore(b.db)
		log.Printf("submissions: postgres")
	} else {
		store := file.NewSubmissionStore(cfg.Storage.DataDir)
		if err := store.EnsureFile(); err != nil {
			return nil, err
		}
		b.submissions = store
		log.Printf("submissions: %s", cfg.Storage.DataDir)
	}

	switch cfg.Quiz.Source {
	case config.SourcePostgres:
		if b.pool == nil {
			b.Close()
			return nil, fmt.Errorf("quiz source %q needs postgres.url", cfg.Quiz.Source)
		}
		b.documents = postgres.NewDocumentStore(b.pool)
	case config.SourceFile:
		b.documents = file.NewDocumentStore(cfg.Storage.DataDir)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown quiz source %q", cfg.Quiz.Source)
	}
	log.Printf("quiz documents: %s", cfg.Quiz.Source)
	return b, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
