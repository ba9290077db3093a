package domain

import "time"

type Role struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uk_roles_name" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Role) TableName() string { return "roles" }

type Permission struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uk_permissions_name" json:"name"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Permission) TableName() string { return "permissions" }

// UserRole user ↔ role 关联，(user_id, role_id) 复合主键
type UserRole struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	RoleID    uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_user_roles_role_id" json:"roleId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (UserRole) TableName() string { return "user_roles" }

// RolePermission role ↔ permission 关联
type RolePermission struct {
	RoleID       uint64    `gorm:"primaryKey;autoIncrement:false" json:"roleId"`
	PermissionID uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_role_permissions_permission_id" json:"permissionId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Role       *Role       `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (RolePermission) TableName() string { return "role_permissions" }

// SetResult 关联重算的增量（不是最终全集）
type SetResult struct {
	Added   []uint64 `json:"added"`
	Removed []uint64 `json:"removed"`
}
