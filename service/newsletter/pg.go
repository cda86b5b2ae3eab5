package newsletter

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lunelle.GO/model/entity"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PgStore writes straight to the Postgres database behind Supabase.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const insertSubscriber = `
INSERT INTO newsletter_subscribers (email, source)
VALUES ($1, $2)
RETURNING id::text, email, created_at, subscribed_at, unsubscribed_at, source`

func (s *PgStore) Insert(ctx context.Context, email string, source *string) (*entity.NewsletterSubscriber, error) {
	var sub entity.NewsletterSubscriber
	err := s.pool.QueryRow(ctx, insertSubscriber, email, source).Scan(
		&sub.ID, &sub.Email, &sub.CreatedAt, &sub.SubscribedAt, &sub.UnsubscribedAt, &sub.Source,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("pool.QueryRow: %w", err)
	}
	return &sub, nil
}

// Migrate applies the embedded Postgres migrations to databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs.New: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("migrate.NewWithSourceInstance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}
	return nil
}

// migrateURL switches a postgres:// URL to the pgx5 driver scheme.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
