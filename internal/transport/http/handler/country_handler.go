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

// CountryHandler 用户端只读，管理端可写
type CountryHandler struct {
	svc *service.CountryService
	log *zap.Logger
}

func NewCountryHandler(svc *service.CountryService, l *zap.Logger) *CountryHandler {
	return &CountryHandler{svc: svc, log: l}
}

type countryReq struct {
	ISO2 string `json:"iso2" binding:"required"`
	Name string `json:"name" binding:"required,max=100"`
}

type countryPatchReq struct {
	ISO2 *string `json:"iso2"`
	Name *string `json:"name" binding:"omitempty,max=100"`
}

type findCountryQuery struct {
	ID   uint64 `form:"id"`
	ISO2 string `form:"iso2"`
	Name string `form:"name"`
}

func (h *CountryHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log).Group("/countries")
	h.mountRead(e)
}

func (h *CountryHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log).Group("/countries")
	h.mountRead(e)

	ez.Register(e, ez.Action[findCountryQuery, *domain.Country]{
		Method: http.MethodGet, Path: "/find", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *findCountryQuery) (*domain.Country, error) {
			return h.svc.FindOne(c.Request.Context(), domain.CountryFilter{ID: in.ID, ISO2: in.ISO2, Name: in.Name})
		},
	})

	ez.Register(e, ez.Action[countryReq, *domain.Country]{
		Method: http.MethodPost, Path: "", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *countryReq) (*domain.Country, error) {
			return h.svc.Create(c.Request.Context(), service.CountryInput{ISO2: in.ISO2, Name: in.Name})
		},
	})

	ez.Register(e, ez.Action[countryPatchReq, *domain.Country]{
		Method: http.MethodPatch, Path: "/:id", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *countryPatchReq) (*domain.Country, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), id, service.CountryPatch{ISO2: in.ISO2, Name: in.Name})
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
			return resp.Result{Success: true, Message: "Country deleted successfully"}, nil
		},
	})
}

func (h *CountryHandler) mountRead(e ez.EZ) {
	ez.Register(e, ez.Action[struct{}, []domain.Country]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Country, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.Register(e, ez.Action[struct{}, *domain.Country]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Country, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Get(c.Request.Context(), id)
		},
	})
}
