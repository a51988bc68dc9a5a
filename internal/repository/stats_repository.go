package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tesseract-hub/cloud-translate-service/internal/models"
)

// StatsRepository records translation usage per language pair
type StatsRepository interface {
	RecordTranslation(ctx context.Context, sourceLang, targetLang string, cacheHit bool, characters int64) error
	ListStats(ctx context.Context) ([]models.TranslationStats, error)
}

// statsRepository implements StatsRepository on Postgres
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// RecordTranslation upserts the counters of a language pair
func (r *statsRepository) RecordTranslation(ctx context.Context, sourceLang, targetLang string, cacheHit bool, characters int64) error {
	now := time.Now()
	stats := models.TranslationStats{
		SourceLang:      sourceLang,
		TargetLang:      targetLang,
		TotalRequests:   1,
		TotalCharacters: characters,
		LastRequestAt:   now,
	}

	updates := map[string]interface{}{
		"total_requests":   gorm.Expr("translation_stats.total_requests + 1"),
		"total_characters": gorm.Expr("translation_stats.total_characters + ?", characters),
		"last_request_at":  now,
		"updated_at":       now,
	}
	if cacheHit {
		stats.CacheHits = 1
		updates["cache_hits"] = gorm.Expr("translation_stats.cache_hits + 1")
	} else {
		stats.CacheMisses = 1
		updates["cache_misses"] = gorm.Expr("translation_stats.cache_misses + 1")
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_lang"}, {Name: "target_lang"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(&stats).Error
}

// ListStats returns all language pairs, most used first
func (r *statsRepository) ListStats(ctx context.Context) ([]models.TranslationStats, error) {
	stats := make([]models.TranslationStats, 0)
	err := r.db.WithContext(ctx).
		Order("total_requests DESC, source_lang, target_lang").
		Find(&stats).Error
	return stats, err
}

// NoopStatsRepository is used when no database is configured
type NoopStatsRepository struct{}

func (NoopStatsRepository) RecordTranslation(context.Context, string, string, bool, int64) error {
	return nil
}

func (NoopStatsRepository) ListStats(context.Context) ([]models.TranslationStats, error) {
	return []models.TranslationStats{}, nil
}
