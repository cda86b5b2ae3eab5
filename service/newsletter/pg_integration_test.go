//go:build integration

package newsletter_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"lunelle.GO/service/newsletter"
)

func TestPgStore_SubscribeTwiceStoresOnce(t *testing.T) {
	ctx := context.Background()
	pc, err := postgres.Run(ctx, "postgres:17.6-alpine3.22", postgres.BasicWaitStrategies())
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pc) })

	connStr, err := pc.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, newsletter.Migrate(connStr))
	require.NoError(t, newsletter.Migrate(connStr), "second run must be a no-op")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	svc := newsletter.NewService(newsletter.NewPgStore(pool))
	sub, err := svc.Subscribe(ctx, "Jane@Example.com", newsletter.SourceHomepage)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "jane@example.com", sub.Email)
	assert.Len(t, sub.ID, 36)

	again, err := svc.Subscribe(ctx, "jane@example.com", "")
	require.NoError(t, err)
	assert.Nil(t, again)

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM newsletter_subscribers").Scan(&n))
	assert.Equal(t, 1, n)
}
