package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-rbac/internal/domain"
)

type FollowRepo struct{ db *gorm.DB }

func NewFollowRepo(db *gorm.DB) *FollowRepo { return &FollowRepo{db: db} }

func (r *FollowRepo) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&n).Error
	return n > 0, err
}

func (r *FollowRepo) Create(ctx context.Context, followerID, followingID uint64) error {
	return r.db.WithContext(ctx).
		Create(&domain.UserFollow{FollowerID: followerID, FollowingID: followingID}).Error
}

func (r *FollowRepo) Delete(ctx context.Context, followerID, followingID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&domain.UserFollow{})
	return res.RowsAffected, res.Error
}

// Followers 关注 userID 的人
func (r *FollowRepo) Followers(ctx context.Context, userID uint64, offset, limit int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN user_follows uf ON uf.follower_id = users.id").
		Where("uf.following_id = ?", userID)
	return pageUsers(q, offset, limit, "uf.id desc")
}

// Following userID 关注的人
func (r *FollowRepo) Following(ctx context.Context, userID uint64, offset, limit int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN user_follows uf ON uf.following_id = users.id").
		Where("uf.follower_id = ?", userID)
	return pageUsers(q, offset, limit, "uf.id desc")
}

// Discover 未关注且不是自己的用户；子查询参数化
func (r *FollowRepo) Discover(ctx context.Context, userID uint64, offset, limit int) ([]domain.User, int64, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&domain.UserFollow{}).Select("following_id").Where("follower_id = ?", userID)
	q := db.Model(&domain.User{}).Where("users.id <> ?", userID).Where("users.id NOT IN (?)", followed)
	return pageUsers(q, offset, limit, "users.id desc")
}
