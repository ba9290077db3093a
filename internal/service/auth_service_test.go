package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/service"
)

func TestAuthService_RegisterLoginScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", *u.Email)
	assert.Equal(t, domain.AccountInApp, u.AccountType)

	_, err = f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "other"})
	assert.Equal(t, domain.KindConflict, kindOf(err))

	_, err = f.auth.Login(ctx, "a@x.com", "wrong")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))

	_, err = f.auth.Login(ctx, "nobody@x.com", "secret1")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))

	admin := f.role(t, auth.RoleAdmin)
	_, err = f.userRoles.Add(ctx, u.ID, admin.ID)
	require.NoError(t, err)

	res, err := f.auth.Login(ctx, "A@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := f.jwt.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.HasRole(auth.RoleAdmin))
}

func TestAuthService_OTPSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendOTP", mock.Anything, "a@x.com", mock.AnythingOfType("string"), 5).Return(nil).Once()

	ok, err := f.auth.SendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	f.mailer.AssertExpectations(t)

	code, err := f.mr.Get("otp:a@x.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, 5*time.Minute, f.mr.TTL("otp:a@x.com"))

	ok, err = f.auth.VerifyOTP(ctx, "a@x.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.mr.Exists("otp:a@x.com"))

	ok, err = f.auth.VerifyOTP(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.auth.VerifyOTP(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_OTPExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.auth.SendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	code, err := f.mr.Get("otp:a@x.com")
	require.NoError(t, err)

	f.mr.FastForward(5*time.Minute + time.Second)
	ok, err := f.auth.VerifyOTP(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_SendOTPMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	ok, err := f.auth.SendOTP(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, f.mr.Exists("otp:a@x.com"))
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.SendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	code, err := f.mr.Get("otp:a@x.com")
	require.NoError(t, err)

	ok, err := f.auth.ResetPassword(ctx, "a@x.com", "111111", "newpass")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.auth.ResetPassword(ctx, "a@x.com", code, "newpass")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.auth.Login(ctx, "a@x.com", "secret1")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))
	_, err = f.auth.Login(ctx, "a@x.com", "newpass")
	assert.NoError(t, err)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	err = f.auth.UpdatePassword(ctx, u.ID, "nope", "next12")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))

	require.NoError(t, f.auth.UpdatePassword(ctx, u.ID, "secret1", "next12"))
	_, err = f.auth.Login(ctx, "a@x.com", "next12")
	assert.NoError(t, err)
}

func TestAuthService_GoogleLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.google.On("Verify", mock.Anything, "good").Return(&auth.GoogleProfile{
		Subject: "g-1", Email: "g@x.com", EmailVerified: true, Name: "Gee", Picture: "http://pic",
	}, nil)
	f.google.On("Verify", mock.Anything, "bad").Return(nil, errors.New("bad token"))

	_, err := f.auth.GoogleLogin(ctx, "bad")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))

	res, err := f.auth.GoogleLogin(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountGoogle, res.User.AccountType)
	assert.Equal(t, "Gee", *res.User.FullName)
	assert.NotNil(t, res.User.EmailVerifiedAt)

	again, err := f.auth.GoogleLogin(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)

	// Google 账号没有本地密码
	_, err = f.auth.Login(ctx, "g@x.com", "")
	assert.Equal(t, domain.KindUnauthorized, kindOf(err))
}

func TestAuthService_GoogleLinksExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, service.RegisterInput{Email: "g@x.com", Password: "secret1"})
	require.NoError(t, err)
	f.google.On("Verify", mock.Anything, mock.Anything).Return(&auth.GoogleProfile{
		Email: "g@x.com", EmailVerified: true, Picture: "http://pic",
	}, nil)

	res, err := f.auth.GoogleLogin(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, domain.AccountInApp, res.User.AccountType)
	require.NotNil(t, res.User.AvatarURL)
	assert.Equal(t, "http://pic", *res.User.AvatarURL)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	male := domain.GenderMale
	got, err := f.auth.UpdateProfile(ctx, u.ID, service.ProfileInput{
		UserName: strp("alice"), Bio: strp("hi"), Gender: &male,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", *got.UserName)
	assert.Equal(t, domain.GenderMale, *got.Gender)

	bad := domain.Gender("OTHER")
	_, err = f.auth.UpdateProfile(ctx, u.ID, service.ProfileInput{Gender: &bad})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))

	_, err = f.auth.Me(ctx, 9999)
	assert.Equal(t, domain.KindNotFound, kindOf(err))
}

func TestAuthService_PasswordOverBcryptByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	// 40 个字符、80 字节
	long := strings.Repeat("é", 40)

	_, err := f.auth.Register(ctx, service.RegisterInput{Email: "p@x.com", Password: long})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))

	u, err := f.auth.Register(ctx, service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindBadRequest, kindOf(f.auth.UpdatePassword(ctx, u.ID, "secret1", long)))

	_, err = f.auth.SendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	code, err := f.mr.Get("otp:a@x.com")
	require.NoError(t, err)
	_, err = f.auth.ResetPassword(ctx, "a@x.com", code, long)
	assert.Equal(t, domain.KindBadRequest, kindOf(err))
	// 密码不合法时验证码不被消耗
	assert.True(t, f.mr.Exists("otp:a@x.com"))

	_, err = f.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
}

func TestAuthService_RegisterPhoneCollisionMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Register(ctx, service.RegisterInput{
				Email: fmt.Sprintf("u%d@x.com", i), PhoneNumber: strp("+100"), Password: "secret1",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		// 邮箱各不相同，冲突只可能来自手机号
		assert.Equal(t, domain.KindConflict, kindOf(err))
		assert.NotContains(t, err.Error(), "email already registered")
	}
	assert.Equal(t, 1, ok)
}
