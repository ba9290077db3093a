package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type PermissionRepo struct{ db *gorm.DB }

func NewPermissionRepo(db *gorm.DB) *PermissionRepo { return &PermissionRepo{db: db} }

func (r *PermissionRepo) WithTx(tx *gorm.DB) *PermissionRepo { return &PermissionRepo{db: tx} }

func (r *PermissionRepo) Create(ctx context.Context, m *domain.Permission) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PermissionRepo) FindByID(ctx context.Context, id uint64) (*domain.Permission, error) {
	return first[domain.Permission](r.db.WithContext(ctx), "id = ?", id)
}

func (r *PermissionRepo) FindByName(ctx context.Context, name string) (*domain.Permission, error) {
	return first[domain.Permission](r.db.WithContext(ctx), "name = ?", name)
}

func (r *PermissionRepo) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.Permission{}), exceptID).
		Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *PermissionRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return existsID[domain.Permission](r.db.WithContext(ctx), id)
}

func (r *PermissionRepo) CountIDs(ctx context.Context, ids []uint64) (int64, error) {
	return countIDs[domain.Permission](r.db.WithContext(ctx), ids)
}

func (r *PermissionRepo) List(ctx context.Context) ([]domain.Permission, error) {
	var out []domain.Permission
	err := r.db.WithContext(ctx).Order("id desc").Find(&out).Error
	return out, err
}

func (r *PermissionRepo) Updates(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Permission{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PermissionRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Permission{})
	return res.RowsAffected, res.Error
}
