package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/core/cache"
	"go-gin-rbac/internal/core/mail"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
	"go-gin-rbac/pkg/utils"
)

const otpKeyPrefix = "otp:"

type RegisterInput struct {
	FullName    *string
	Email       string
	PhoneNumber *string
	Password    string
}

type ProfileInput struct {
	FullName  *string
	UserName  *string
	AvatarURL *string
	Bio       *string
	Gender    *domain.Gender
}

type LoginResult struct {
	Token string          `json:"token"`
	User  domain.UserView `json:"user"`
}

type AuthService struct {
	users  *repo.UserRepo
	roles  *UserRoleService
	cache  *cache.Cache
	jwt    *auth.JWTer
	mailer mail.Mailer
	google auth.GoogleVerifier
	otpTTL time.Duration
	log    *zap.Logger
}

type AuthDeps struct {
	Users  *repo.UserRepo
	Roles  *UserRoleService
	Cache  *cache.Cache
	JWT    *auth.JWTer
	Mailer mail.Mailer
	Google auth.GoogleVerifier
	OTPTTL time.Duration
	Log    *zap.Logger
}

func NewAuthService(d AuthDeps) *AuthService {
	if d.OTPTTL <= 0 {
		d.OTPTTL = 5 * time.Minute
	}
	return &AuthService{
		users: d.Users, roles: d.Roles, cache: d.Cache, jwt: d.JWT,
		mailer: d.Mailer, google: d.Google, otpTTL: d.OTPTTL, log: d.Log,
	}
}

func otpKey(email string) string { return otpKeyPrefix + normalizeEmail(email) }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.UserView, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.BadRequest("email is required")
	}
	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		observe("register", false)
		return nil, domain.Conflict("email already registered")
	}
	phone := trimPtr(in.PhoneNumber)
	if phone != nil {
		if taken, err := s.users.PhoneTaken(ctx, *phone, 0); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.Conflict("phone number already exists")
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		FullName:     trimPtr(in.FullName),
		Email:        &email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		AccountType:  domain.AccountInApp,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, writeErr(err, "email or phone number already exists")
	}
	observe("register", true)
	s.log.Info("user registered", zap.Uint64("uid", u.ID))
	v := u.View()
	return &v, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		observe("login", false)
		return nil, domain.Unauthorized("invalid credentials")
	}
	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	observe("login", true)
	return res, nil
}

// SendOTP 生成验证码写入缓存并发邮件；发信失败返回 false，并删掉这次写入的验证码
func (s *AuthService) SendOTP(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	code, err := utils.GenerateOTP()
	if err != nil {
		return false, err
	}
	if err := s.cache.SetString(ctx, otpKey(email), code, s.otpTTL); err != nil {
		return false, err
	}
	if err := s.mailer.SendOTP(ctx, email, code, int(s.otpTTL/time.Minute)); err != nil {
		s.log.Warn("send otp mail failed", zap.String("email", email), zap.Error(err))
		// 没发出去的码不留着
		if _, derr := s.cache.Del(ctx, otpKey(email)); derr != nil {
			s.log.Warn("drop unsent otp", zap.Error(derr))
		}
		observe("otp_send", false)
		return false, nil
	}
	observe("otp_send", true)
	return true, nil
}

// VerifyOTP 匹配后删除；以 Del 返回值抢占，同一验证码只能成功一次
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	key := otpKey(email)
	cached, ok, err := s.cache.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || cached != strings.TrimSpace(code) {
		observe("otp_verify", false)
		return false, nil
	}
	n, err := s.cache.Del(ctx, key)
	if err != nil {
		return false, err
	}
	observe("otp_verify", n == 1)
	return n == 1, nil
}

// ResetPassword 先校验 OTP；验证码无效返回 false
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (bool, error) {
	// 新密码不合法时不消耗验证码
	if err := checkPassword(newPassword); err != nil {
		return false, err
	}
	ok, err := s.VerifyOTP(ctx, email, code)
	if err != nil || !ok {
		return false, err
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, domain.Unauthorized("email not found")
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return false, err
	}
	s.log.Info("password reset", zap.Uint64("uid", u.ID))
	return true, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, uid uint64, current, next string) error {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	if !utils.CheckPassword(current, u.PasswordHash) {
		return domain.Unauthorized("current password is incorrect")
	}
	return s.setPassword(ctx, uid, next)
}

func (s *AuthService) setPassword(ctx context.Context, uid uint64, pw string) error {
	hash, err := hashPassword(pw)
	if err != nil {
		return err
	}
	return s.users.Updates(ctx, uid, map[string]any{"password_hash": hash})
}

// GoogleLogin 校验 ID token；邮箱不存在则以 GOOGLE 账号创建，存在则补全资料后登录
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	prof, err := s.google.Verify(ctx, idToken)
	if err != nil {
		observe("google", false)
		s.log.Info("google token rejected", zap.Error(err))
		return nil, domain.Unauthorized("invalid google token")
	}

	u, err := s.users.FindByEmail(ctx, prof.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.createGoogleUser(ctx, prof)
	} else {
		err = s.linkGoogle(ctx, u, prof)
	}
	if err != nil {
		return nil, err
	}
	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	observe("google", true)
	return res, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, prof *auth.GoogleProfile) (*domain.User, error) {
	email := prof.Email
	u := &domain.User{
		Email:       &email,
		FullName:    trimPtr(&prof.Name),
		AvatarURL:   trimPtr(&prof.Picture),
		AccountType: domain.AccountGoogle,
	}
	if prof.EmailVerified {
		now := time.Now()
		u.EmailVerifiedAt = &now
	}
	if err := s.users.Create(ctx, u); err != nil {
		if !isConflict(writeErr(err, "")) {
			return nil, err
		}
		// 并发首次登录：另一请求已创建
		return s.users.FindByEmail(ctx, email)
	}
	s.log.Info("google user created", zap.Uint64("uid", u.ID))
	return u, nil
}

func (s *AuthService) linkGoogle(ctx context.Context, u *domain.User, prof *auth.GoogleProfile) error {
	fields := map[string]any{}
	if u.FullName == nil && prof.Name != "" {
		fields["full_name"] = prof.Name
		u.FullName = &prof.Name
	}
	if u.AvatarURL == nil && prof.Picture != "" {
		fields["avatar_url"] = prof.Picture
		u.AvatarURL = &prof.Picture
	}
	if u.EmailVerifiedAt == nil && prof.EmailVerified {
		now := time.Now()
		fields["email_verified_at"] = now
		u.EmailVerifiedAt = &now
	}
	return s.users.Updates(ctx, u.ID, fields)
}

func (s *AuthService) Me(ctx context.Context, uid uint64) (*domain.UserView, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	v := u.View()
	return &v, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, uid uint64, in ProfileInput) (*domain.UserView, error) {
	if _, err := s.Me(ctx, uid); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = trimPtr(in.FullName)
	}
	if in.UserName != nil {
		fields["user_name"] = trimPtr(in.UserName)
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = trimPtr(in.AvatarURL)
	}
	if in.Bio != nil {
		fields["bio"] = trimPtr(in.Bio)
	}
	if in.Gender != nil {
		if g := *in.Gender; g != domain.GenderMale && g != domain.GenderFemale {
			return nil, domain.BadRequest("gender must be MALE or FEMALE")
		}
		fields["gender"] = string(*in.Gender)
	}
	if err := s.users.Updates(ctx, uid, fields); err != nil {
		return nil, err
	}
	return s.Me(ctx, uid)
}

func (s *AuthService) issue(ctx context.Context, u *domain.User) (*LoginResult, error) {
	roles, err := s.roles.RoleNames(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	sub := auth.Subject{UID: u.ID, AccountType: string(u.AccountType), Roles: roles}
	if u.Email != nil {
		sub.Email = *u.Email
	}
	tok, err := s.jwt.Issue(sub)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: u.View()}, nil
}

func isConflict(err error) bool { return domain.KindOf(err) == domain.KindConflict }
