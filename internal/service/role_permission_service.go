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

type RolePermissionService struct {
	tx    *database.TxManager
	roles *repo.RoleRepo
	perms *repo.PermissionRepo
	links *repo.RolePermissionRepo
	log   *zap.Logger
}

func NewRolePermissionService(tx *database.TxManager, roles *repo.RoleRepo, perms *repo.PermissionRepo,
	links *repo.RolePermissionRepo, l *zap.Logger) *RolePermissionService {
	return &RolePermissionService{tx: tx, roles: roles, perms: perms, links: links, log: l}
}

func (s *RolePermissionService) Add(ctx context.Context, roleID, permID uint64) (*domain.RolePermission, error) {
	var roleOK, permOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { roleOK, err = s.roles.Exists(gctx, roleID); return })
	g.Go(func() (err error) { permOK, err = s.perms.Exists(gctx, permID); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !roleOK {
		return nil, domain.NotFound("role not found")
	}
	if !permOK {
		return nil, domain.NotFound("permission not found")
	}

	exists, err := s.links.Exists(ctx, roleID, permID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("role already has this permission")
	}
	m, err := s.links.Create(ctx, roleID, permID)
	if err != nil {
		return nil, writeErr(err, "role already has this permission")
	}
	return m, nil
}

func (s *RolePermissionService) Remove(ctx context.Context, roleID, permID uint64) error {
	n, err := s.links.Delete(ctx, roleID, permID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("role permission not found")
	}
	return nil
}

func (s *RolePermissionService) Set(ctx context.Context, roleID uint64, permIDs []uint64) (domain.SetResult, error) {
	ids, ok := normalizeIDs(permIDs)
	if !ok {
		return domain.SetResult{}, domain.BadRequest("permission ids must be positive integers")
	}
	res, err := database.InTx(ctx, s.tx, func(tx *gorm.DB) (domain.SetResult, error) {
		exists, err := s.roles.WithTx(tx).Exists(ctx, roleID)
		if err != nil {
			return domain.SetResult{}, err
		}
		if !exists {
			return domain.SetResult{}, domain.NotFound("role not found")
		}
		n, err := s.perms.WithTx(tx).CountIDs(ctx, ids)
		if err != nil {
			return domain.SetResult{}, err
		}
		if n != int64(len(ids)) {
			return domain.SetResult{}, domain.BadRequest("invalid permission ids")
		}

		links := s.links.WithTx(tx)
		current, err := links.PermissionIDs(ctx, roleID)
		if err != nil {
			return domain.SetResult{}, err
		}
		toAdd, toRemove := Reconcile(current, ids)
		if err := links.AddPermissions(ctx, roleID, toAdd); err != nil {
			return domain.SetResult{}, writeErr(err, "role permission changed concurrently")
		}
		if err := links.RemovePermissions(ctx, roleID, toRemove); err != nil {
			return domain.SetResult{}, err
		}
		return domain.SetResult{Added: toAdd, Removed: toRemove}, nil
	})
	if err != nil {
		return domain.SetResult{}, err
	}
	s.log.Info("role permissions set", zap.Uint64("roleId", roleID),
		zap.Uint64s("added", res.Added), zap.Uint64s("removed", res.Removed))
	return res, nil
}

func (s *RolePermissionService) PermissionsOfRole(ctx context.Context, roleID uint64) ([]domain.Permission, error) {
	exists, err := s.roles.Exists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("role not found")
	}
	return s.links.PermissionsOf(ctx, roleID)
}

func (s *RolePermissionService) RolesOfPermission(ctx context.Context, permID uint64) ([]domain.Role, error) {
	exists, err := s.perms.Exists(ctx, permID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("permission not found")
	}
	return s.links.RolesOf(ctx, permID)
}
