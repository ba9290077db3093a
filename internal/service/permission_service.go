package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
)

type PermissionService struct {
	perms *repo.PermissionRepo
	log   *zap.Logger
}

func NewPermissionService(perms *repo.PermissionRepo, l *zap.Logger) *PermissionService {
	return &PermissionService{perms: perms, log: l}
}

func (s *PermissionService) Create(ctx context.Context, in NamedInput) (*domain.Permission, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.BadRequest("name is required")
	}
	if m, err := s.perms.FindByName(ctx, name); err != nil {
		return nil, err
	} else if m != nil {
		return nil, domain.Conflict("permission name already exists")
	}
	m := &domain.Permission{Name: name, Description: trimPtr(in.Description)}
	if err := s.perms.Create(ctx, m); err != nil {
		return nil, writeErr(err, "permission name already exists")
	}
	return m, nil
}

func (s *PermissionService) List(ctx context.Context) ([]domain.Permission, error) {
	return s.perms.List(ctx)
}

func (s *PermissionService) Get(ctx context.Context, id uint64) (*domain.Permission, error) {
	m, err := s.perms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("permission not found")
	}
	return m, nil
}

func (s *PermissionService) Update(ctx context.Context, id uint64, in NamedPatch) (*domain.Permission, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields, name, err := in.fields()
	if err != nil {
		return nil, err
	}
	if name != nil {
		if taken, err := s.perms.NameTaken(ctx, *name, id); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.Conflict("permission name already exists")
		}
	}
	if err := s.perms.Updates(ctx, id, fields); err != nil {
		return nil, writeErr(err, "permission name already exists")
	}
	return s.Get(ctx, id)
}

func (s *PermissionService) Delete(ctx context.Context, id uint64) error {
	n, err := s.perms.Delete(ctx, id)
	if err != nil {
		return deleteErr(err)
	}
	if n == 0 {
		return domain.NotFound("permission not found")
	}
	s.log.Info("permission deleted", zap.Uint64("permissionId", id))
	return nil
}
