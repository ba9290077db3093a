package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-gin-rbac/internal/core/database"
)

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "uk_roles_name" (SQLSTATE 23505)`), true},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry 'admin' for key 'roles.uk_roles_name'"), true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: roles.name (2067)"), true},
		{"fk is not dup", errors.New("FOREIGN KEY constraint failed"), false},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, database.IsDuplicateKey(tc.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, database.IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, database.IsForeignKeyViolation(errors.New(`update or delete on table "roles" violates foreign key constraint "fk_user_roles_role" on table "user_roles"`)))
	assert.True(t, database.IsForeignKeyViolation(errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails")))
	assert.True(t, database.IsForeignKeyViolation(errors.New("constraint failed: FOREIGN KEY constraint failed (787)")))
	assert.False(t, database.IsForeignKeyViolation(errors.New("UNIQUE constraint failed: roles.name")))
	assert.False(t, database.IsForeignKeyViolation(nil))
}
