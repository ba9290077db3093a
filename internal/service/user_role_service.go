package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
)

type UserRoleService struct {
	tx    *database.TxManager
	users *repo.UserRepo
	roles *repo.RoleRepo
	links *repo.UserRoleRepo
	log   *zap.Logger
}

func NewUserRoleService(tx *database.TxManager, users *repo.UserRepo, roles *repo.RoleRepo,
	links *repo.UserRoleRepo, l *zap.Logger) *UserRoleService {
	return &UserRoleService{tx: tx, users: users, roles: roles, links: links, log: l}
}

// Add 两端都须存在；已存在 → Conflict（并发插入由主键兜底）
func (s *UserRoleService) Add(ctx context.Context, userID, roleID uint64) (*domain.UserRole, error) {
	var userOK, roleOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { userOK, err = s.users.Exists(gctx, userID); return })
	g.Go(func() (err error) { roleOK, err = s.roles.Exists(gctx, roleID); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !userOK {
		return nil, domain.NotFound("user not found")
	}
	if !roleOK {
		return nil, domain.NotFound("role not found")
	}

	exists, err := s.links.Exists(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("user already has this role")
	}
	m, err := s.links.Create(ctx, userID, roleID)
	if err != nil {
		return nil, writeErr(err, "user already has this role")
	}
	return m, nil
}

func (s *UserRoleService) Remove(ctx context.Context, userID, roleID uint64) error {
	n, err := s.links.Delete(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("user role not found")
	}
	return nil
}

// Set 把用户角色重算为 roleIDs；校验全部通过才写，整体一个事务
func (s *UserRoleService) Set(ctx context.Context, userID uint64, roleIDs []uint64) (domain.SetResult, error) {
	ids, ok := normalizeIDs(roleIDs)
	if !ok {
		return domain.SetResult{}, domain.BadRequest("role ids must be positive integers")
	}
	res, err := database.InTx(ctx, s.tx, func(tx *gorm.DB) (domain.SetResult, error) {
		exists, err := s.users.WithTx(tx).Exists(ctx, userID)
		if err != nil {
			return domain.SetResult{}, err
		}
		if !exists {
			return domain.SetResult{}, domain.NotFound("user not found")
		}
		n, err := s.roles.WithTx(tx).CountIDs(ctx, ids)
		if err != nil {
			return domain.SetResult{}, err
		}
		if n != int64(len(ids)) {
			return domain.SetResult{}, domain.BadRequest("invalid role ids")
		}

		links := s.links.WithTx(tx)
		current, err := links.RoleIDs(ctx, userID)
		if err != nil {
			return domain.SetResult{}, err
		}
		toAdd, toRemove := Reconcile(current, ids)
		if err := links.AddRoles(ctx, userID, toAdd); err != nil {
			return domain.SetResult{}, writeErr(err, "user role changed concurrently")
		}
		if err := links.RemoveRoles(ctx, userID, toRemove); err != nil {
			return domain.SetResult{}, err
		}
		return domain.SetResult{Added: toAdd, Removed: toRemove}, nil
	})
	if err != nil {
		return domain.SetResult{}, err
	}
	s.log.Info("user roles set", zap.Uint64("uid", userID),
		zap.Uint64s("added", res.Added), zap.Uint64s("removed", res.Removed))
	return res, nil
}

func (s *UserRoleService) RolesOfUser(ctx context.Context, userID uint64) ([]domain.Role, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("user not found")
	}
	return s.links.RolesOf(ctx, userID)
}

func (s *UserRoleService) UsersOfRole(ctx context.Context, roleID uint64) ([]domain.UserView, error) {
	exists, err := s.roles.Exists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("role not found")
	}
	users, err := s.links.UsersOf(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return domain.Views(users), nil
}

// RoleNames 供签发 token 使用
func (s *UserRoleService) RoleNames(ctx context.Context, userID uint64) ([]string, error) {
	return s.links.RoleNames(ctx, userID)
}
