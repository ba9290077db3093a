package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/internal/transport/http/ez"
	resp "go-gin-rbac/internal/transport/http/response"
)

type RolePermissionHandler struct {
	svc *service.RolePermissionService
	log *zap.Logger
}

func NewRolePermissionHandler(svc *service.RolePermissionService, l *zap.Logger) *RolePermissionHandler {
	return &RolePermissionHandler{svc: svc, log: l}
}

type rolePermissionReq struct {
	RoleID       uint64 `json:"roleId"       binding:"required,gt=0"`
	PermissionID uint64 `json:"permissionId" binding:"required,gt=0"`
}

func (h *RolePermissionHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/role-permissions")

	ez.Register(e, ez.Action[rolePermissionReq, *domain.RolePermission]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *rolePermissionReq) (*domain.RolePermission, error) {
			return h.svc.Add(c.Request.Context(), in.RoleID, in.PermissionID)
		},
	})

	ez.Register(e, ez.Action[struct{}, resp.Result]{
		Method: http.MethodDelete, Path: "/:roleId/:permissionId", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Result, error) {
			roleID, err := ez.ParamID(c, "roleId")
			if err != nil {
				return resp.Result{}, err
			}
			permID, err := ez.ParamID(c, "permissionId")
			if err != nil {
				return resp.Result{}, err
			}
			if err := h.svc.Remove(c.Request.Context(), roleID, permID); err != nil {
				return resp.Result{}, err
			}
			return resp.Result{Success: true, Message: "Permission removed from role"}, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.Permission]{
		Method: http.MethodGet, Path: "/roles/:roleId", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Permission, error) {
			roleID, err := ez.ParamID(c, "roleId")
			if err != nil {
				return nil, err
			}
			return h.svc.PermissionsOfRole(c.Request.Context(), roleID)
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.Role]{
		Method: http.MethodGet, Path: "/permissions/:permissionId/roles", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Role, error) {
			permID, err := ez.ParamID(c, "permissionId")
			if err != nil {
				return nil, err
			}
			return h.svc.RolesOfPermission(c.Request.Context(), permID)
		},
	})

	ez.Register(e, ez.Action[idsReq, domain.SetResult]{
		Method: http.MethodPut, Path: "/roles/:roleId", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *idsReq) (domain.SetResult, error) {
			roleID, err := ez.ParamID(c, "roleId")
			if err != nil {
				return domain.SetResult{}, err
			}
			return h.svc.Set(c.Request.Context(), roleID, in.IDs)
		},
	})
}
