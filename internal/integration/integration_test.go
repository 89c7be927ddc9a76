package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/postgres"
	pgmigrations "quizdesk/internal/infra/postgres/migrations"
	infraredis "quizdesk/internal/infra/redis"
)

const scannedQuiz = `{"title":"Scanned midterm","mode":"pdf","pdfUrl":"/api/static/midterm.pdf","count":4,"questions":[{"id":1,"correct":"ب"},{"id":2,"correct":"د"}]}`

func TestSubmitAndReviewEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	documents := infraredis.NewDocumentCache(redisClient, postgres.NewDocumentStore(pool), 5*time.Minute)
	if err := documents.SaveDocument(ctx, "midterm", []byte(scannedQuiz)); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	feed := app.NewFeed()
	broker := infraredis.NewFeedBroker(redisClient, feed)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = broker.Run(runCtx) }()
	waitForSubscription(t, ctx, redisClient)

	live, cancel := feed.Subscribe()
	defer cancel()

	submissions := postgres.NewSubmissionStore(db)
	quizzes := app.NewQuizService(documents, submissions, broker)
	results := app.NewResultService(submissions, quizzes)

	right, wrong := domain.StringScalar("ب"), domain.StringScalar("الف")
	answers := domain.AnswerMap{"1": &right, "2": &wrong}

	receipt, err := quizzes.Submit(ctx, app.SubmitRequest{Name: "Sara", QuizID: "midterm", Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.Score != 1 || receipt.Total != 4 || receipt.ID == 0 || receipt.Time.IsZero() {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	select {
	case sub := <-live:
		if sub.ID != receipt.ID {
			t.Fatalf("feed delivered %+v, expected id %d", sub, receipt.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("submission not relayed through redis")
	}

	rows, err := results.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].QuizTitle != "Scanned midterm" || rows[0].Percent != 25 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	detail, err := results.Get(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := domain.Breakdown{Correct: 1, Wrong: 1, Unanswered: 0, Unscored: 2}
	if detail.Breakdown != want {
		t.Fatalf("unexpected breakdown %+v", detail.Breakdown)
	}
	if got := detail.Submission.Answers["1"]; got == nil || got.String() != "ب" {
		t.Fatalf("answers not persisted, got %+v", detail.Submission.Answers)
	}

	if _, err := results.Get(ctx, receipt.ID+1000); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func waitForSubscription(t *testing.T, ctx context.Context, client *goredis.Client) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		counts, err := client.PubSubNumSub(ctx, infraredis.FeedChannel).Result()
		if err == nil && counts[infraredis.FeedChannel] > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("feed broker never subscribed")
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
