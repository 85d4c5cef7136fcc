package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Store persists combined recommendations to a local sqlite database.
type Store struct {
	db *gorm.DB
}

var _ interfaces.RecommendationStore = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&RecommendationModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, runID string, rec types.CombinedRecommendation) error {
	m := toModel(runID, rec)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert recommendation %s: %w", rec.Symbol, err)
	}
	return nil
}

// ListLatest returns the most recent recommendations, newest first.
// An empty symbol matches all symbols.
func (s *Store) ListLatest(ctx context.Context, symbol string, limit int) ([]types.CombinedRecommendation, error) {
	if limit <= 0 {
		limit = 10
	}
	q := s.db.WithContext(ctx).
		Model(&RecommendationModel{}).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}

	var rows []RecommendationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	recs := make([]types.CombinedRecommendation, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, fromModel(row))
	}
	return recs, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
