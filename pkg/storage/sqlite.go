package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type object struct {
	Path      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (object) TableName() string { return "objects" }

// SQLiteStorage implements Storage on a single SQLite table.
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (or creates) the database at dsn and migrates the
// objects table. Use "file::memory:?cache=shared" for an in-memory database.
func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&object{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite %s: %w", dsn, err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Read(ctx context.Context, path string) ([]byte, error) {
	var obj object
	if err := s.db.WithContext(ctx).First(&obj, "path = ?", path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return obj.Data, nil
}

func (s *SQLiteStorage) Write(ctx context.Context, path string, data []byte) error {
	obj := object{Path: path, Data: data, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&obj).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, path string) error {
	result := s.db.WithContext(ctx).Delete(&object{}, "path = ?", path)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) List(ctx context.Context, prefix string) ([]string, error) {
	dir := strings.TrimSuffix(strings.TrimPrefix(prefix, "/"), "/") + "/"
	var paths []string
	err := s.db.WithContext(ctx).Model(&object{}).
		Where("path LIKE ? AND path NOT LIKE ?", dir+"%", dir+"%/%").
		Order("path").
		Pluck("path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return paths, nil
}

func (s *SQLiteStorage) Exists(ctx context.Context, path string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&object{}).Where("path = ?", path).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return n > 0, nil
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
