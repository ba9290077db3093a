package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type RolePermissionRepo struct{ db *gorm.DB }

func NewRolePermissionRepo(db *gorm.DB) *RolePermissionRepo { return &RolePermissionRepo{db: db} }

func (r *RolePermissionRepo) WithTx(tx *gorm.DB) *RolePermissionRepo {
	return &RolePermissionRepo{db: tx}
}

func (r *RolePermissionRepo) Exists(ctx context.Context, roleID, permID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permID).Count(&n).Error
	return n > 0, err
}

func (r *RolePermissionRepo) Create(ctx context.Context, roleID, permID uint64) (*domain.RolePermission, error) {
	m := &domain.RolePermission{RoleID: roleID, PermissionID: permID}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *RolePermissionRepo) Delete(ctx context.Context, roleID, permID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permID).
		Delete(&domain.RolePermission{})
	return res.RowsAffected, res.Error
}

func (r *RolePermissionRepo) PermissionIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.RolePermission{}).
		Where("role_id = ?", roleID).Pluck("permission_id", &ids).Error
	return ids, err
}

func (r *RolePermissionRepo) AddPermissions(ctx context.Context, roleID uint64, permIDs []uint64) error {
	if len(permIDs) == 0 {
		return nil
	}
	rows := make([]domain.RolePermission, 0, len(permIDs))
	for _, id := range permIDs {
		rows = append(rows, domain.RolePermission{RoleID: roleID, PermissionID: id})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *RolePermissionRepo) RemovePermissions(ctx context.Context, roleID uint64, permIDs []uint64) error {
	if len(permIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id IN ?", roleID, permIDs).
		Delete(&domain.RolePermission{}).Error
}

func (r *RolePermissionRepo) PermissionsOf(ctx context.Context, roleID uint64) ([]domain.Permission, error) {
	var out []domain.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Order("permissions.id").Find(&out).Error
	return out, err
}

func (r *RolePermissionRepo) RolesOf(ctx context.Context, permID uint64) ([]domain.Role, error) {
	var out []domain.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions rp ON rp.role_id = roles.id").
		Where("rp.permission_id = ?", permID).
		Order("roles.id").Find(&out).Error
	return out, err
}
