package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
	"go-gin-rbac/pkg/utils"
)

type CreateUserInput struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	Password    string
	AvatarURL   *string
}

// UpdateUserInput nil 字段不修改
type UpdateUserInput struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
	Password    *string
	AvatarURL   *string
}

type UserService struct {
	users *repo.UserRepo
	log   *zap.Logger
}

func NewUserService(users *repo.UserRepo, l *zap.Logger) *UserService {
	return &UserService{users: users, log: l}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.UserView, error) {
	email := normEmail(in.Email)
	phone := trimPtr(in.PhoneNumber)
	if email == nil && phone == nil {
		return nil, domain.BadRequest("email or phone number is required")
	}
	if err := s.checkUnique(ctx, email, phone, 0); err != nil {
		return nil, err
	}

	u := &domain.User{
		FullName:    trimPtr(in.FullName),
		Email:       email,
		PhoneNumber: phone,
		AvatarURL:   trimPtr(in.AvatarURL),
		AccountType: domain.AccountInApp,
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, writeErr(err, "email or phone number already exists")
	}
	s.log.Info("user created", zap.Uint64("uid", u.ID))
	v := u.View()
	return &v, nil
}

func (s *UserService) List(ctx context.Context, p utils.Paging) (utils.Page[domain.UserView], error) {
	users, total, err := s.users.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	return utils.NewPage(domain.Views(users), total, p), nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (*domain.UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	v := u.View()
	return &v, nil
}

// FindOne 没有匹配时返回 (nil, nil)
func (s *UserService) FindOne(ctx context.Context, f domain.UserFilter) (*domain.UserView, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	if f.Empty() {
		return nil, domain.BadRequest("at least one filter is required")
	}
	u, err := s.users.FindOne(ctx, f)
	if err != nil || u == nil {
		return nil, err
	}
	v := u.View()
	return &v, nil
}

func (s *UserService) Update(ctx context.Context, id uint64, in UpdateUserInput) (*domain.UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}

	email := normEmail(in.Email)
	phone := trimPtr(in.PhoneNumber)
	if err := s.checkUnique(ctx, email, phone, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = trimPtr(in.FullName)
	}
	if email != nil {
		fields["email"] = *email
	}
	if phone != nil {
		fields["phone_number"] = *phone
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = trimPtr(in.AvatarURL)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if err := s.users.Updates(ctx, id, fields); err != nil {
		return nil, writeErr(err, "email or phone number already exists")
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id uint64) error {
	n, err := s.users.Delete(ctx, id)
	if err != nil {
		return deleteErr(err)
	}
	if n == 0 {
		return domain.NotFound("user not found")
	}
	s.log.Info("user deleted", zap.Uint64("uid", id))
	return nil
}

func (s *UserService) checkUnique(ctx context.Context, email, phone *string, exceptID uint64) error {
	if email != nil {
		taken, err := s.users.EmailTaken(ctx, *email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("email already exists")
		}
	}
	if phone != nil {
		taken, err := s.users.PhoneTaken(ctx, *phone, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("phone number already exists")
		}
	}
	return nil
}

// trimPtr 空白串视为未提供
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func normEmail(s *string) *string {
	t := trimPtr(s)
	if t == nil {
		return nil
	}
	l := strings.ToLower(*t)
	return &l
}
