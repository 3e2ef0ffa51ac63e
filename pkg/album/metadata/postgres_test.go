package metadata_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedshare/album-backend/pkg/album"
	"github.com/wedshare/album-backend/pkg/album/metadata"
)

// setupPostgresStore connects to the database named by TEST_DATABASE_URL,
// skipping the test when none is configured.
func setupPostgresStore(t *testing.T) *metadata.Postgres {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	store := metadata.NewPostgresWithPool(pool)
	require.NoError(t, store.CreateSchema(ctx))

	_, err = pool.Exec(ctx, "TRUNCATE media_metadata")
	require.NoError(t, err)

	return store
}

func TestPostgresWriteRead(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	created := time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC)
	recA := album.MetadataRecord{Title: "vows", UploaderName: "Noa", MediaType: "video", CreatedDate: &created}
	recB := album.MetadataRecord{Title: "rings", UploaderName: "Eli"}

	require.NoError(t, store.Write(ctx, map[string]album.MetadataRecord{"wedding-uploads/a.mp4": recA}))
	require.NoError(t, store.Write(ctx, map[string]album.MetadataRecord{"wedding-uploads/b.jpg": recB}))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "vows", got["wedding-uploads/a.mp4"].Title)
	assert.Equal(t, "Noa", got["wedding-uploads/a.mp4"].UploaderName)
	require.NotNil(t, got["wedding-uploads/a.mp4"].CreatedDate)
	assert.True(t, got["wedding-uploads/a.mp4"].CreatedDate.Equal(created))
	assert.Equal(t, recB.Title, got["wedding-uploads/b.jpg"].Title)

	// Rewriting a key replaces only that row.
	recA.Title = "updated vows"
	require.NoError(t, store.Write(ctx, map[string]album.MetadataRecord{"wedding-uploads/a.mp4": recA}))

	got, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "updated vows", got["wedding-uploads/a.mp4"].Title)
	assert.Equal(t, "rings", got["wedding-uploads/b.jpg"].Title)
}
