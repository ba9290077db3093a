package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/internal/transport/http/ez"
	resp "go-gin-rbac/internal/transport/http/response"
	"go-gin-rbac/pkg/utils"
)

// UserHandler 管理端用户 CRUD
type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

type createUserReq struct {
	FullName    *string `json:"fullName"    binding:"omitempty,max=255"`
	Email       *string `json:"email"       binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    string  `json:"password"    binding:"omitempty,min=6,max=72"`
	AvatarURL   *string `json:"avatarUrl"   binding:"omitempty,max=255"`
}

type updateUserReq struct {
	FullName    *string `json:"fullName"    binding:"omitempty,max=255"`
	Email       *string `json:"email"       binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    *string `json:"password"    binding:"omitempty,min=6,max=72"`
	AvatarURL   *string `json:"avatarUrl"   binding:"omitempty,max=255"`
}

type findUserQuery struct {
	ID    uint64 `form:"id"`
	Email string `form:"email"`
	Phone string `form:"phone"`
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/users")

	ez.Register(e, ez.Action[pageQuery, utils.Page[domain.UserView]]{
		Method: http.MethodGet, Path: "", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQuery) (utils.Page[domain.UserView], error) {
			return h.svc.List(c.Request.Context(), in.paging())
		},
	})

	ez.Register(e, ez.Action[createUserReq, *domain.UserView]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *createUserReq) (*domain.UserView, error) {
			return h.svc.Create(c.Request.Context(), service.CreateUserInput{
				FullName: in.FullName, Email: in.Email, PhoneNumber: in.PhoneNumber,
				Password: in.Password, AvatarURL: in.AvatarURL,
			})
		},
	})

	// 无匹配时 data 为 null
	ez.Register(e, ez.Action[findUserQuery, *domain.UserView]{
		Method: http.MethodGet, Path: "/find", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *findUserQuery) (*domain.UserView, error) {
			return h.svc.FindOne(c.Request.Context(), domain.UserFilter{ID: in.ID, Email: in.Email, PhoneNumber: in.Phone})
		},
	})

	ez.Register(e, ez.Action[struct{}, *domain.UserView]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UserView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Get(c.Request.Context(), id)
		},
	})

	ez.Register(e, ez.Action[updateUserReq, *domain.UserView]{
		Method: http.MethodPatch, Path: "/:id", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *updateUserReq) (*domain.UserView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), id, service.UpdateUserInput{
				FullName: in.FullName, Email: in.Email, PhoneNumber: in.PhoneNumber,
				Password: in.Password, AvatarURL: in.AvatarURL,
			})
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
			return resp.Result{Success: true, Message: "User deleted successfully"}, nil
		},
	})
}
