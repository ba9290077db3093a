package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/internal/testutil"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendOTP(ctx context.Context, to, code string, ttlMin int) error {
	return m.Called(ctx, to, code, ttlMin).Error(0)
}

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) Verify(ctx context.Context, token string) (*auth.GoogleProfile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*auth.GoogleProfile)
	return p, args.Error(1)
}

type fixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	mailer    *mockMailer
	google    *mockGoogle
	jwt       *auth.JWTer
	users     *service.UserService
	roles     *service.RoleService
	perms     *service.PermissionService
	countries *service.CountryService
	userRoles *service.UserRoleService
	rolePerms *service.RolePermissionService
	follows   *service.FollowService
	auth      *service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	c, mr := testutil.NewCache(t)
	l := testutil.Logger()
	tx := database.NewTxManager(db)

	userRepo := repo.NewUserRepo(db)
	roleRepo := repo.NewRoleRepo(db)
	permRepo := repo.NewPermissionRepo(db)

	f := &fixture{
		db:     db,
		mr:     mr,
		mailer: &mockMailer{},
		google: &mockGoogle{},
		jwt:    &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour},
	}
	f.users = service.NewUserService(userRepo, l)
	f.roles = service.NewRoleService(roleRepo, l)
	f.perms = service.NewPermissionService(permRepo, l)
	f.countries = service.NewCountryService(repo.NewCountryRepo(db), c, l)
	f.userRoles = service.NewUserRoleService(tx, userRepo, roleRepo, repo.NewUserRoleRepo(db), l)
	f.rolePerms = service.NewRolePermissionService(tx, roleRepo, permRepo, repo.NewRolePermissionRepo(db), l)
	f.follows = service.NewFollowService(userRepo, repo.NewFollowRepo(db))
	f.auth = service.NewAuthService(service.AuthDeps{
		Users:  userRepo,
		Roles:  f.userRoles,
		Cache:  c,
		JWT:    f.jwt,
		Mailer: f.mailer,
		Google: f.google,
		OTPTTL: 5 * time.Minute,
		Log:    l,
	})
	return f
}

func strp(s string) *string { return &s }

func (f *fixture) user(t *testing.T, email string) domain.UserView {
	t.Helper()
	u, err := f.users.Create(context.Background(), service.CreateUserInput{Email: strp(email), Password: "secret1"})
	require.NoError(t, err)
	return *u
}

func (f *fixture) role(t *testing.T, name string) domain.Role {
	t.Helper()
	r, err := f.roles.Create(context.Background(), service.NamedInput{Name: name})
	require.NoError(t, err)
	return *r
}

func (f *fixture) perm(t *testing.T, name string) domain.Permission {
	t.Helper()
	p, err := f.perms.Create(context.Background(), service.NamedInput{Name: name})
	require.NoError(t, err)
	return *p
}

func kindOf(err error) domain.Kind { return domain.KindOf(err) }
