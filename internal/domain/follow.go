package domain

import "time"

// UserFollow 有向边：follower 关注 following
type UserFollow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID  uint64    `gorm:"not null;uniqueIndex:uk_user_follows_pair,priority:1" json:"followerId"`
	FollowingID uint64    `gorm:"not null;uniqueIndex:uk_user_follows_pair,priority:2;index:idx_user_follows_following_id" json:"followingId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (UserFollow) TableName() string { return "user_follows" }
