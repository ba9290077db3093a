package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type UserRoleRepo struct{ db *gorm.DB }

func NewUserRoleRepo(db *gorm.DB) *UserRoleRepo { return &UserRoleRepo{db: db} }

func (r *UserRoleRepo) WithTx(tx *gorm.DB) *UserRoleRepo { return &UserRoleRepo{db: tx} }

func (r *UserRoleRepo) Exists(ctx context.Context, userID, roleID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).Count(&n).Error
	return n > 0, err
}

func (r *UserRoleRepo) Create(ctx context.Context, userID, roleID uint64) (*domain.UserRole, error) {
	m := &domain.UserRole{UserID: userID, RoleID: roleID}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *UserRoleRepo) Delete(ctx context.Context, userID, roleID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&domain.UserRole{})
	return res.RowsAffected, res.Error
}

// RoleIDs 用户当前持有的 role id
func (r *UserRoleRepo) RoleIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Where("user_id = ?", userID).Pluck("role_id", &ids).Error
	return ids, err
}

func (r *UserRoleRepo) AddRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]domain.UserRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		rows = append(rows, domain.UserRole{UserID: userID, RoleID: id})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *UserRoleRepo) RemoveRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id IN ?", userID, roleIDs).
		Delete(&domain.UserRole{}).Error
}

func (r *UserRoleRepo) RolesOf(ctx context.Context, userID uint64) ([]domain.Role, error) {
	var out []domain.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Order("roles.id").Find(&out).Error
	return out, err
}

// RoleNames 签发 token 时用
func (r *UserRoleRepo) RoleNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&domain.Role{}).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Order("roles.name").Pluck("roles.name", &names).Error
	return names, err
}

func (r *UserRoleRepo) UsersOf(ctx context.Context, roleID uint64) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Where("ur.role_id = ?", roleID).
		Order("users.id").Find(&out).Error
	return out, err
}
