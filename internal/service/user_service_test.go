package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/pkg/utils"
)

func TestUserService_CreateRequiresContact(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Create(context.Background(), service.CreateUserInput{FullName: strp("nobody")})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))
}

func TestUserService_DuplicateEmailConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a@x.com")

	_, err := f.users.Create(ctx, service.CreateUserInput{Email: strp(" A@X.com ")})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, kindOf(err))

	var n int64
	require.NoError(t, f.db.Model(&domain.User{}).Where("email = ?", "a@x.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUserService_UpdateUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@x.com")
	f.user(t, "b@x.com")

	// 改成自己的邮箱不算冲突
	got, err := f.users.Update(ctx, a.ID, service.UpdateUserInput{Email: strp("a@x.com"), FullName: strp("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", *got.FullName)

	_, err = f.users.Update(ctx, a.ID, service.UpdateUserInput{Email: strp("b@x.com")})
	assert.Equal(t, domain.KindConflict, kindOf(err))

	_, err = f.users.Update(ctx, 9999, service.UpdateUserInput{FullName: strp("x")})
	assert.Equal(t, domain.KindNotFound, kindOf(err))
}

func TestUserService_UpdatePasswordHashes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@x.com")

	_, err := f.users.Update(ctx, a.ID, service.UpdateUserInput{Password: strp("newpass")})
	require.NoError(t, err)

	var u domain.User
	require.NoError(t, f.db.First(&u, a.ID).Error)
	assert.True(t, utils.CheckPassword("newpass", u.PasswordHash))
}

func TestUserService_FindOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@x.com")

	got, err := f.users.FindOne(ctx, domain.UserFilter{Email: "A@x.com"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)

	got, err = f.users.FindOne(ctx, domain.UserFilter{Email: "nobody@x.com"})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.users.FindOne(ctx, domain.UserFilter{})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))
}

func TestUserService_ListPaginated(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.user(t, fmt.Sprintf("u%02d@x.com", i))
	}
	page, err := f.users.List(context.Background(), utils.NewPaging(2, 5))
	require.NoError(t, err)
	assert.EqualValues(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "u06@x.com", *page.Items[0].Email)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 3, *page.NextPage)
}

func TestUserService_DeleteWithRolesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@x.com")
	r := f.role(t, "editor")
	_, err := f.userRoles.Add(ctx, a.ID, r.ID)
	require.NoError(t, err)

	err = f.users.Delete(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindBadRequest, kindOf(err))
	assert.Contains(t, domain.Message(err), "cannot delete")

	require.NoError(t, f.userRoles.Remove(ctx, a.ID, r.ID))
	require.NoError(t, f.users.Delete(ctx, a.ID))
	assert.Equal(t, domain.KindNotFound, kindOf(f.users.Delete(ctx, a.ID)))
}

func TestUserService_PasswordOverBcryptByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("密", 25) // 75 字节

	_, err := f.users.Create(ctx, service.CreateUserInput{Email: strp("p@x.com"), Password: long})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))

	u := f.user(t, "a@x.com")
	_, err = f.users.Update(ctx, u.ID, service.UpdateUserInput{Password: &long})
	assert.Equal(t, domain.KindBadRequest, kindOf(err))

	// 72 字节正好可用
	_, err = f.users.Update(ctx, u.ID, service.UpdateUserInput{Password: strp(strings.Repeat("a", 72))})
	assert.NoError(t, err)
}
