package database

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 把一组写操作包在同一个事务里：fn 返回 nil 提交，返回错误或 panic 回滚
type TxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) *TxManager { return &TxManager{db: db} }

func (m *TxManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}

// InTx 带返回值的事务；失败时返回零值
func InTx[T any](ctx context.Context, m *TxManager, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var out T
	err := m.Do(ctx, func(tx *gorm.DB) error {
		v, e := fn(tx)
		if e != nil {
			return e
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
