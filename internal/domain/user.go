package domain

import "time"

type AccountType string

const (
	AccountInApp  AccountType = "IN_APP"
	AccountGoogle AccountType = "GOOGLE"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type User struct {
	ID              uint64      `gorm:"primaryKey;autoIncrement"`
	FullName        *string     `gorm:"size:255"`
	Email           *string     `gorm:"size:255;uniqueIndex:uk_users_email"`
	PhoneNumber     *string     `gorm:"size:20;uniqueIndex:uk_users_phone_number"`
	PasswordHash    string      `gorm:"size:255;not null;default:''"`
	UserName        *string     `gorm:"size:64"`
	AvatarURL       *string     `gorm:"size:255"`
	Bio             *string     `gorm:"type:text"`
	Gender          *Gender     `gorm:"size:16"`
	AccountType     AccountType `gorm:"size:16;not null;default:IN_APP"`
	EmailVerifiedAt *time.Time
	PhoneVerifiedAt *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// UserView 对外输出的用户，不含密码哈希
type UserView struct {
	ID              uint64      `json:"id"`
	FullName        *string     `json:"fullName"`
	Email           *string     `json:"email"`
	PhoneNumber     *string     `json:"phoneNumber"`
	UserName        *string     `json:"userName"`
	AvatarURL       *string     `json:"avatarUrl"`
	Bio             *string     `json:"bio"`
	Gender          *Gender     `json:"gender"`
	AccountType     AccountType `json:"accountType"`
	EmailVerifiedAt *time.Time  `json:"emailVerifiedAt"`
	PhoneVerifiedAt *time.Time  `json:"phoneVerifiedAt"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		UserName:        u.UserName,
		AvatarURL:       u.AvatarURL,
		Bio:             u.Bio,
		Gender:          u.Gender,
		AccountType:     u.AccountType,
		EmailVerifiedAt: u.EmailVerifiedAt,
		PhoneVerifiedAt: u.PhoneVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func Views(us []User) []UserView {
	out := make([]UserView, 0, len(us))
	for i := range us {
		out = append(out, us[i].View())
	}
	return out
}

// UserFilter 任意条件查找（零值字段忽略）
type UserFilter struct {
	ID          uint64
	Email       string
	PhoneNumber string
}

func (f UserFilter) Empty() bool {
	return f.ID == 0 && f.Email == "" && f.PhoneNumber == ""
}
