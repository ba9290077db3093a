package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

// first 查不到返回 (nil, nil)
func first[T any](db *gorm.DB, query any, args ...any) (*T, error) {
	var m T
	err := db.Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// countIDs 统计 ids 中实际存在的行数（ids 需已去重）
func countIDs[T any](db *gorm.DB, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := db.Model(new(T)).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

func existsID[T any](db *gorm.DB, id uint64) (bool, error) {
	n, err := countIDs[T](db, []uint64{id})
	return n > 0, err
}

// excludeID 唯一性检查时排除自身
func excludeID(db *gorm.DB, id uint64) *gorm.DB {
	if id == 0 {
		return db
	}
	return db.Where("id <> ?", id)
}

// pageUsers q 须已带 Model；count 与分页查询各自克隆 statement
func pageUsers(q *gorm.DB, offset, limit int, order string) ([]domain.User, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := q.Session(&gorm.Session{}).Select("users.*").Order(order).Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
