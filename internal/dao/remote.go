package dao

import (
	"fmt"
	"time"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/model"
	"go.uber.org/zap"
)

// Remote driver names
// 远端驱动名称
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// RemoteConfig 远端存储配置
// RemoteConfig settings of the remote row store
type RemoteConfig struct {
	// URL 远端地址：rest 为 Supabase 项目地址，其余驱动为 DSN
	URL string `yaml:"url"`
	// Key 访问密钥：rest 为 anon key，其余驱动作为数据库密码
	Key string `yaml:"key"`
	// Driver 驱动 rest / postgres / mysql / sqlite
	Driver string `yaml:"driver" default:"rest"`
	// Table 笔记表名
	Table string `yaml:"table" default:"notes"`
	// Timeout 单次远端调用超时
	Timeout string `yaml:"timeout" default:"10s"`
	// AutoMigrate 初始化时自动建表（仅 gorm 驱动）
	AutoMigrate bool `yaml:"auto-migrate"`
	// ProbeInterval 远端连通性探测周期
	ProbeInterval string `yaml:"probe-interval" default:"1m"`
	MaxIdleConns  int    `yaml:"max-idle-conns" default:"2"`
	MaxOpenConns  int    `yaml:"max-open-conns" default:"10"`
	Debug         bool   `yaml:"debug"`
}

// NewRemoteNoteStore 根据驱动创建远端存储
// NewRemoteNoteStore builds the remote adapter selected by cfg.Driver
func NewRemoteNoteStore(cfg RemoteConfig, timeout time.Duration, logger *zap.Logger) (domain.RemoteNoteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := cfg.Table
	if table == "" {
		table = model.TableNameNote
	}

	switch cfg.Driver {
	case "", DriverREST:
		return NewRESTNoteStore(RESTOptions{
			URL:     cfg.URL,
			Key:     cfg.Key,
			Table:   table,
			Timeout: timeout,
		}, logger)
	case DriverPostgres, DriverMySQL, DriverSQLite:
		db, err := NewDBEngine(DatabaseConfig{
			Type:         cfg.Driver,
			DSN:          cfg.URL,
			Password:     cfg.Key,
			MaxIdleConns: cfg.MaxIdleConns,
			MaxOpenConns: cfg.MaxOpenConns,
			Debug:        cfg.Debug,
		})
		if err != nil {
			return nil, err
		}
		return NewGormNoteStore(db, cfg.Driver, table, cfg.AutoMigrate), nil
	}
	return nil, fmt.Errorf("unsupported remote driver %q", cfg.Driver)
}
