package storage

import (
	"os"
	"time"

	"github.com/haierkeys/personal-notes/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one row of the kv_store table
type kvEntry struct {
	Key       string    `gorm:"column:kv_key;primaryKey"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (kvEntry) TableName() string {
	return "kv_store"
}

// SQLiteKV stores values in an embedded SQLite file
// SQLiteKV 将数据保存在内嵌 SQLite 文件中
type SQLiteKV struct {
	db       *gorm.DB
	maxBytes int64
}

func NewSQLiteKV(cfg *Config) (*SQLiteKV, error) {
	if cfg.SavePath == "" {
		return nil, errors.New("sqlite storage save-path is required")
	}
	if !fileurl.IsExist(cfg.SavePath) {
		if err := fileurl.CreatePath(cfg.SavePath, os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "create sqlite storage directory failed")
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.SavePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite storage failed")
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate sqlite storage failed")
	}
	return &SQLiteKV{db: db, maxBytes: cfg.MaxBytes}, nil
}

func (s *SQLiteKV) Get(key string) ([]byte, error) {
	var e kvEntry
	err := s.db.Where("kv_key = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read sqlite storage failed")
	}
	return e.Value, nil
}

func (s *SQLiteKV) Set(key string, value []byte) error {
	if err := checkQuota(s.maxBytes, value); err != nil {
		return err
	}
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return errors.Wrap(err, "write sqlite storage failed")
}

func (s *SQLiteKV) Remove(key string) error {
	return errors.Wrap(s.db.Where("kv_key = ?", key).Delete(&kvEntry{}).Error, "delete sqlite storage failed")
}

// Close releases the underlying database handle
// Close 关闭底层数据库连接
func (s *SQLiteKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
