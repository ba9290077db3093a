package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *gorm.DB) *UserRepo { return &UserRepo{db: tx} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx), "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx), "email = ?", email)
}

// FindOne 按非零字段组合查询
func (r *UserRepo) FindOne(ctx context.Context, f domain.UserFilter) (*domain.User, error) {
	q := r.db.WithContext(ctx)
	if f.ID != 0 {
		q = q.Where("id = ?", f.ID)
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.PhoneNumber != "" {
		q = q.Where("phone_number = ?", f.PhoneNumber)
	}
	return first[domain.User](q, "1 = 1")
}

// EmailTaken / PhoneTaken：exceptID 为 0 时不排除
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.User{}), exceptID).
		Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) PhoneTaken(ctx context.Context, phone string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.User{}), exceptID).
		Where("phone_number = ?", phone).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return existsID[domain.User](r.db.WithContext(ctx), id)
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	return pageUsers(q, offset, limit, "users.id desc")
}

// Updates 只写入给定列
func (r *UserRepo) Updates(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 物理删除，返回影响行数
func (r *UserRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}
