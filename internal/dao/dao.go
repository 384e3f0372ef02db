// Package dao 实现数据访问层
// Package dao implements the remote and local note stores
package dao

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/personal-notes/pkg/fileurl"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库连接配置
// DatabaseConfig connection settings for the gorm remote drivers
type DatabaseConfig struct {
	// Type 数据库类型 postgres / mysql / sqlite
	Type string
	// DSN 连接串，sqlite 为文件路径
	DSN string
	// Password 访问密钥，DSN 未携带密码时注入
	Password     string
	MaxIdleConns int
	MaxOpenConns int
	// Debug 打印 SQL
	Debug bool
}

func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := userDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database failed", c.Type)
	}
	if c.Debug {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		// SetMaxOpenConns 设置打开数据库连接的最大数量。
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	return db, nil
}

func userDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case DriverPostgres:
		return postgres.Open(postgresDSN(c.DSN, c.Password)), nil
	case DriverMySQL:
		dsn, err := mysqlDSN(c.DSN, c.Password)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case DriverSQLite:
		path := strings.TrimPrefix(c.DSN, "file:")
		if dir := filepath.Dir(path); !fileurl.IsExist(dir) {
			if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite directory failed")
			}
		}
		return sqlite.Open(c.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.Type)
}

// postgresDSN injects the access key as password, for URL and keyword/value DSNs alike
// postgresDSN 将访问密钥作为密码注入，兼容 URL 和 key=value 两种格式
func postgresDSN(dsn, password string) string {
	if password == "" {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil || u.User == nil {
			return dsn
		}
		if _, ok := u.User.Password(); ok {
			return dsn
		}
		u.User = url.UserPassword(u.User.Username(), password)
		return u.String()
	}
	if strings.Contains(dsn, "password=") {
		return dsn
	}
	return strings.TrimSpace(dsn + " password=" + password)
}

// mysqlDSN 注入密码并强制 parseTime
func mysqlDSN(dsn, password string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql dsn failed")
	}
	if cfg.Passwd == "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
