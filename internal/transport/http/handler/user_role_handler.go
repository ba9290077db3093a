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

type UserRoleHandler struct {
	svc *service.UserRoleService
	log *zap.Logger
}

func NewUserRoleHandler(svc *service.UserRoleService, l *zap.Logger) *UserRoleHandler {
	return &UserRoleHandler{svc: svc, log: l}
}

type userRoleReq struct {
	UserID uint64 `json:"userId" binding:"required,gt=0"`
	RoleID uint64 `json:"roleId" binding:"required,gt=0"`
}

func (h *UserRoleHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/user-roles")

	ez.Register(e, ez.Action[userRoleReq, *domain.UserRole]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *userRoleReq) (*domain.UserRole, error) {
			return h.svc.Add(c.Request.Context(), in.UserID, in.RoleID)
		},
	})

	ez.Register(e, ez.Action[struct{}, resp.Result]{
		Method: http.MethodDelete, Path: "/:userId/:roleId", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Result, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return resp.Result{}, err
			}
			roleID, err := ez.ParamID(c, "roleId")
			if err != nil {
				return resp.Result{}, err
			}
			if err := h.svc.Remove(c.Request.Context(), userID, roleID); err != nil {
				return resp.Result{}, err
			}
			return resp.Result{Success: true, Message: "Role removed from user"}, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.Role]{
		Method: http.MethodGet, Path: "/users/:userId", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Role, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return nil, err
			}
			return h.svc.RolesOfUser(c.Request.Context(), userID)
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.UserView]{
		Method: http.MethodGet, Path: "/roles/:roleId/users", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.UserView, error) {
			roleID, err := ez.ParamID(c, "roleId")
			if err != nil {
				return nil, err
			}
			return h.svc.UsersOfRole(c.Request.Context(), roleID)
		},
	})

	ez.Register(e, ez.Action[idsReq, domain.SetResult]{
		Method: http.MethodPut, Path: "/users/:userId", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *idsReq) (domain.SetResult, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return domain.SetResult{}, err
			}
			return h.svc.Set(c.Request.Context(), userID, in.IDs)
		},
	})
}
