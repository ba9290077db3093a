package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/internal/transport/http/ez"
	mdw "go-gin-rbac/internal/transport/http/middleware"
	resp "go-gin-rbac/internal/transport/http/response"
	"go-gin-rbac/pkg/utils"
)

type FollowHandler struct {
	svc   *service.FollowService
	authn gin.HandlerFunc
	log   *zap.Logger
}

func NewFollowHandler(svc *service.FollowService, authn gin.HandlerFunc, l *zap.Logger) *FollowHandler {
	return &FollowHandler{svc: svc, authn: authn, log: l}
}

type followReq struct {
	FollowingID uint64 `json:"followingId" binding:"required,gt=0"`
}

func (h *FollowHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log).Group("/user", h.authn)

	ez.Register(e, ez.Action[followReq, resp.Result]{
		Method: http.MethodPost, Path: "/follow", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *followReq) (resp.Result, error) {
			ok, err := h.svc.Follow(c.Request.Context(), mdw.UID(c), in.FollowingID)
			if err != nil {
				return resp.Result{}, err
			}
			if !ok {
				return resp.Result{Success: false, Message: "Already following this user"}, nil
			}
			return resp.Result{Success: true, Message: "Followed successfully"}, nil
		},
	})

	ez.Register(e, ez.Action[followReq, resp.Result]{
		Method: http.MethodDelete, Path: "/unfollow", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *followReq) (resp.Result, error) {
			ok, err := h.svc.Unfollow(c.Request.Context(), mdw.UID(c), in.FollowingID)
			if err != nil {
				return resp.Result{}, err
			}
			if !ok {
				return resp.Result{Success: false, Message: "Not following this user"}, nil
			}
			return resp.Result{Success: true, Message: "Unfollowed successfully"}, nil
		},
	})

	ez.Register(e, ez.Action[pageQuery, utils.Page[domain.UserView]]{
		Method: http.MethodGet, Path: "/discover", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQuery) (utils.Page[domain.UserView], error) {
			return h.svc.Discover(c.Request.Context(), mdw.UID(c), in.paging())
		},
	})

	ez.Register(e, ez.Action[pageQuery, utils.Page[domain.UserView]]{
		Method: http.MethodGet, Path: "/:id/followers", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQuery) (utils.Page[domain.UserView], error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return utils.Page[domain.UserView]{}, err
			}
			return h.svc.Followers(c.Request.Context(), id, in.paging())
		},
	})

	ez.Register(e, ez.Action[pageQuery, utils.Page[domain.UserView]]{
		Method: http.MethodGet, Path: "/:id/following", Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQuery) (utils.Page[domain.UserView], error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return utils.Page[domain.UserView]{}, err
			}
			return h.svc.Following(c.Request.Context(), id, in.paging())
		},
	})
}
