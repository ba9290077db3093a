package service

import (
	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/pkg/utils"
)

const msgCannotDelete = "cannot delete: related data exists"

// writeErr 唯一约束冲突 → Conflict，其余原样返回
func writeErr(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if database.IsDuplicateKey(err) {
		return &domain.Error{Kind: domain.KindConflict, Msg: conflictMsg, Err: err}
	}
	return err
}

// deleteErr 外键约束 → BadRequest
func deleteErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsForeignKeyViolation(err) {
		return &domain.Error{Kind: domain.KindBadRequest, Msg: msgCannotDelete, Err: err}
	}
	return err
}

// checkPassword 多字节字符可能通过按字符计数的校验，仍超出 bcrypt 的字节上限
func checkPassword(pw string) error {
	if len(pw) > utils.MaxPasswordBytes {
		return domain.BadRequest("password must be at most 72 bytes")
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	if err := checkPassword(pw); err != nil {
		return "", err
	}
	return utils.HashPassword(pw)
}
