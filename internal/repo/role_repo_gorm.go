package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) WithTx(tx *gorm.DB) *RoleRepo { return &RoleRepo{db: tx} }

func (r *RoleRepo) Create(ctx context.Context, m *domain.Role) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *RoleRepo) FindByID(ctx context.Context, id uint64) (*domain.Role, error) {
	return first[domain.Role](r.db.WithContext(ctx), "id = ?", id)
}

func (r *RoleRepo) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return first[domain.Role](r.db.WithContext(ctx), "name = ?", name)
}

func (r *RoleRepo) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.Role{}), exceptID).
		Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *RoleRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return existsID[domain.Role](r.db.WithContext(ctx), id)
}

func (r *RoleRepo) CountIDs(ctx context.Context, ids []uint64) (int64, error) {
	return countIDs[domain.Role](r.db.WithContext(ctx), ids)
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	var out []domain.Role
	err := r.db.WithContext(ctx).Order("id desc").Find(&out).Error
	return out, err
}

func (r *RoleRepo) Updates(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Role{}).Where("id = ?", id).Updates(fields).Error
}

func (r *RoleRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Role{})
	return res.RowsAffected, res.Error
}
