package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
)

// NamedInput role / permission 共用的创建参数
type NamedInput struct {
	Name        string
	Description *string
}

// NamedPatch 局部更新；nil 不修改
type NamedPatch struct {
	Name        *string
	Description *string
}

func (p NamedPatch) fields() (map[string]any, *string, error) {
	fields := map[string]any{}
	var name *string
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return nil, nil, domain.BadRequest("name must not be empty")
		}
		name = &n
		fields["name"] = n
	}
	if p.Description != nil {
		fields["description"] = trimPtr(p.Description)
	}
	return fields, name, nil
}

type RoleService struct {
	roles *repo.RoleRepo
	log   *zap.Logger
}

func NewRoleService(roles *repo.RoleRepo, l *zap.Logger) *RoleService {
	return &RoleService{roles: roles, log: l}
}

func (s *RoleService) Create(ctx context.Context, in NamedInput) (*domain.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.BadRequest("name is required")
	}
	taken, err := s.roles.NameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("role name already exists")
	}
	m := &domain.Role{Name: name, Description: trimPtr(in.Description)}
	if err := s.roles.Create(ctx, m); err != nil {
		return nil, writeErr(err, "role name already exists")
	}
	return m, nil
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id uint64) (*domain.Role, error) {
	m, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("role not found")
	}
	return m, nil
}

func (s *RoleService) Update(ctx context.Context, id uint64, in NamedPatch) (*domain.Role, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields, name, err := in.fields()
	if err != nil {
		return nil, err
	}
	if name != nil {
		taken, err := s.roles.NameTaken(ctx, *name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Conflict("role name already exists")
		}
	}
	if err := s.roles.Updates(ctx, id, fields); err != nil {
		return nil, writeErr(err, "role name already exists")
	}
	return s.Get(ctx, id)
}

func (s *RoleService) Delete(ctx context.Context, id uint64) error {
	n, err := s.roles.Delete(ctx, id)
	if err != nil {
		return deleteErr(err)
	}
	if n == 0 {
		return domain.NotFound("role not found")
	}
	s.log.Info("role deleted", zap.Uint64("roleId", id))
	return nil
}

// Ensure 按名称取角色，不存在则创建；供 CLI 初始化管理员
func (s *RoleService) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	m, err := s.roles.FindByName(ctx, name)
	if err != nil || m != nil {
		return m, err
	}
	m, err = s.Create(ctx, NamedInput{Name: name})
	if domain.KindOf(err) == domain.KindConflict {
		return s.roles.FindByName(ctx, name)
	}
	return m, err
}
