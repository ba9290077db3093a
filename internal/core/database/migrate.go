package database

import (
	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

// Models 参与自动迁移的全部模型（gorm 会按外键依赖排序）
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Role{},
		&domain.Permission{},
		&domain.UserRole{},
		&domain.RolePermission{},
		&domain.Country{},
		&domain.UserFollow{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
