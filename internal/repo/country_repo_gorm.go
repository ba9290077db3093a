package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type CountryRepo struct{ db *gorm.DB }

func NewCountryRepo(db *gorm.DB) *CountryRepo { return &CountryRepo{db: db} }

func (r *CountryRepo) Create(ctx context.Context, m *domain.Country) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *CountryRepo) FindByID(ctx context.Context, id uint64) (*domain.Country, error) {
	return first[domain.Country](r.db.WithContext(ctx), "id = ?", id)
}

func (r *CountryRepo) FindOne(ctx context.Context, f domain.CountryFilter) (*domain.Country, error) {
	q := r.db.WithContext(ctx)
	if f.ID != 0 {
		q = q.Where("id = ?", f.ID)
	}
	if f.ISO2 != "" {
		q = q.Where("iso2 = ?", f.ISO2)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	return first[domain.Country](q, "1 = 1")
}

func (r *CountryRepo) ISO2Taken(ctx context.Context, iso2 string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.Country{}), exceptID).
		Where("iso2 = ?", iso2).Count(&n).Error
	return n > 0, err
}

func (r *CountryRepo) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var n int64
	err := excludeID(r.db.WithContext(ctx).Model(&domain.Country{}), exceptID).
		Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

func (r *CountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	var out []domain.Country
	err := r.db.WithContext(ctx).Order("id desc").Find(&out).Error
	return out, err
}

func (r *CountryRepo) Updates(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Country{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CountryRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Country{})
	return res.RowsAffected, res.Error
}
