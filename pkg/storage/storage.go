// Package storage provides on-device key-value storage backends
// Package storage 提供设备本地的键值存储后端
package storage

import (
	"errors"
)

type Type = string

const LOCAL Type = "localfs"
const SQLITE Type = "sqlite"
const MEMORY Type = "memory"

var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	SQLITE: true,
	MEMORY: true,
}

var (
	// ErrInvalidStorageType unknown storage type
	// ErrInvalidStorageType 未知的存储类型
	ErrInvalidStorageType = errors.New("invalid storage type")
	// ErrNotFound the key has never been written
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("storage key not found")
	// ErrQuotaExceeded the value does not fit the configured quota
	// ErrQuotaExceeded 写入内容超出配置的配额
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// SavePath directory (localfs) or database file (sqlite)
	// SavePath 目录（localfs）或数据库文件（sqlite）
	SavePath string `yaml:"save-path" default:"storage/local"`

	// MaxBytes per-value quota, 0 means unlimited
	// MaxBytes 单个值的大小上限，0 表示不限制
	MaxBytes int64 `yaml:"max-bytes" default:"5242880"`
}

// Storager is a synchronous key-value store holding one blob per key
// Storager 同步键值存储，每个键保存一个数据块
type Storager interface {
	// Get returns ErrNotFound when the key has never been written
	// Get 键不存在时返回 ErrNotFound
	Get(key string) ([]byte, error)
	// Set overwrites the whole value, ErrQuotaExceeded when it does not fit
	// Set 覆盖写入整个值，超出配额时返回 ErrQuotaExceeded
	Set(key string, value []byte) error
	// Remove deletes the key, absent keys are not an error
	// Remove 删除键，不存在时不报错
	Remove(key string) error
}

func NewClient(config *Config) (Storager, error) {
	if config == nil {
		return nil, ErrInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return NewLocalFS(config)
	case SQLITE:
		return NewSQLiteKV(config)
	case MEMORY:
		return NewMemory(config.MaxBytes), nil
	}
	return nil, ErrInvalidStorageType
}

func checkQuota(max int64, value []byte) error {
	if max > 0 && int64(len(value)) > max {
		return ErrQuotaExceeded
	}
	return nil
}
