package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// newDryRunDB builds statements without a server and captures the last SQL
func newDryRunDB(t *testing.T) (*gorm.DB, *string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=test dbname=test sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	var captured string
	capture := func(tx *gorm.DB) { captured = tx.Statement.SQL.String() }
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))

	return db, &captured
}

func TestStatsRepository_RecordTranslationUpserts(t *testing.T) {
	db, sql := newDryRunDB(t)
	repo := NewStatsRepository(db)

	require.NoError(t, repo.RecordTranslation(context.Background(), "en", "fr", false, 5))

	assert.Contains(t, *sql, `INSERT INTO "translation_stats"`)
	assert.Contains(t, *sql, `ON CONFLICT ("source_lang","target_lang") DO UPDATE SET`)
	assert.Contains(t, *sql, "translation_stats.cache_misses + 1")
	assert.NotContains(t, *sql, "translation_stats.cache_hits + 1")
}

func TestStatsRepository_RecordCacheHit(t *testing.T) {
	db, sql := newDryRunDB(t)
	repo := NewStatsRepository(db)

	require.NoError(t, repo.RecordTranslation(context.Background(), "en", "fr", true, 5))

	assert.Contains(t, *sql, "translation_stats.cache_hits + 1")
	assert.NotContains(t, *sql, "translation_stats.cache_misses + 1")
}

func TestStatsRepository_ListStatsOrdering(t *testing.T) {
	db, sql := newDryRunDB(t)
	repo := NewStatsRepository(db)

	stats, err := repo.ListStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)

	assert.Contains(t, *sql, `FROM "translation_stats"`)
	assert.Contains(t, *sql, "ORDER BY total_requests DESC, source_lang, target_lang")
}

func TestNoopStatsRepository(t *testing.T) {
	repo := NoopStatsRepository{}

	assert.NoError(t, repo.RecordTranslation(context.Background(), "en", "fr", true, 5))
	stats, err := repo.ListStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
