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

type PermissionHandler struct {
	svc *service.PermissionService
	log *zap.Logger
}

func NewPermissionHandler(svc *service.PermissionService, l *zap.Logger) *PermissionHandler {
	return &PermissionHandler{svc: svc, log: l}
}

func (h *PermissionHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/permissions")

	ez.Register(e, ez.Action[struct{}, []domain.Permission]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Permission, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[descReq, *domain.Permission]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *descReq) (*domain.Permission, error) {
			return h.svc.Create(c.Request.Context(), service.NamedInput{Name: in.Name, Description: in.Description})
		},
	})

	ez.Register(e, ez.Action[struct{}, *domain.Permission]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Permission, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Get(c.Request.Context(), id)
		},
	})

	ez.Register(e, ez.Action[descPatchReq, *domain.Permission]{
		Method: http.MethodPatch, Path: "/:id", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *descPatchReq) (*domain.Permission, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), id, service.NamedPatch{Name: in.Name, Description: in.Description})
		},
	})

	ez.Register(e, ez.Action[struct{}, resp.Result]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Result, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return resp.Result{}, err
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return resp.Result{}, err
			}
			return resp.Result{Success: true, Message: "Permission deleted successfully"}, nil
		},
	})
}
