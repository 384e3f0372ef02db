package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate 按模型名迁移表结构，db 可通过 Table 指定表名
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(&Note{})
	}
	return fmt.Errorf("unknown model %q", key)
}
