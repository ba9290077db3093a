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
)

type AuthHandler struct {
	svc      *service.AuthService
	authn    gin.HandlerFunc
	otpLimit gin.HandlerFunc
	log      *zap.Logger
}

// NewAuthHandler authn 为登录校验中间件，otpLimit 限制验证码相关接口的频率
func NewAuthHandler(svc *service.AuthService, authn, otpLimit gin.HandlerFunc, l *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, authn: authn, otpLimit: otpLimit, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

type registerReq struct {
	FullName    *string `json:"fullName"    binding:"omitempty,max=255"`
	Email       string  `json:"email"       binding:"required,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    string  `json:"password"    binding:"required,min=6,max=72"`
}

type loginReq struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailReq struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPReq struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp"   binding:"required,len=6,numeric"`
}

type resetPasswordReq struct {
	Email       string `json:"email"       binding:"required,email"`
	OTP         string `json:"otp"         binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

type updatePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,min=6,max=72"`
}

type googleReq struct {
	IDToken string `json:"idToken" binding:"required"`
}

type profileReq struct {
	Name     *string        `json:"name"     binding:"omitempty,max=255"`
	UserName *string        `json:"userName" binding:"omitempty,max=64"`
	Picture  *string        `json:"picture"  binding:"omitempty,max=255"`
	Bio      *string        `json:"bio"      binding:"omitempty,max=1000"`
	Gender   *domain.Gender `json:"gender"   binding:"omitempty,oneof=MALE FEMALE"`
}

type verifyOTPResp struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)
	pub := e.Group("/auth")

	ez.Register(pub, ez.Action[registerReq, *domain.UserView]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerReq) (*domain.UserView, error) {
			return h.svc.Register(c.Request.Context(), service.RegisterInput{
				FullName: in.FullName, Email: in.Email, PhoneNumber: in.PhoneNumber, Password: in.Password,
			})
		},
	})

	ez.Register(pub, ez.Action[loginReq, *service.LoginResult]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginReq) (*service.LoginResult, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.Register(pub, ez.Action[googleReq, *service.LoginResult]{
		Method: http.MethodPost, Path: "/google", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *googleReq) (*service.LoginResult, error) {
			return h.svc.GoogleLogin(c.Request.Context(), in.IDToken)
		},
	})

	otp := pub.Group("", h.otpLimit)

	ez.Register(otp, ez.Action[emailReq, resp.Result]{
		Method: http.MethodPost, Path: "/send-otp", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *emailReq) (resp.Result, error) {
			ok, err := h.svc.SendOTP(c.Request.Context(), in.Email)
			if err != nil {
				return resp.Result{}, err
			}
			if !ok {
				return resp.Result{Success: false, Message: "Failed to send OTP"}, nil
			}
			return resp.Result{Success: true, Message: "OTP sent successfully"}, nil
		},
	})

	ez.Register(otp, ez.Action[verifyOTPReq, verifyOTPResp]{
		Method: http.MethodPost, Path: "/verify-otp", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *verifyOTPReq) (verifyOTPResp, error) {
			ok, err := h.svc.VerifyOTP(c.Request.Context(), in.Email, in.OTP)
			if err != nil {
				return verifyOTPResp{}, err
			}
			if !ok {
				return verifyOTPResp{Valid: false, Message: "Invalid or expired OTP"}, nil
			}
			return verifyOTPResp{Valid: true, Message: "OTP verified successfully"}, nil
		},
	})

	ez.Register(otp, ez.Action[resetPasswordReq, resp.Result]{
		Method: http.MethodPost, Path: "/reset-password", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *resetPasswordReq) (resp.Result, error) {
			ok, err := h.svc.ResetPassword(c.Request.Context(), in.Email, in.OTP, in.NewPassword)
			if err != nil {
				return resp.Result{}, err
			}
			if !ok {
				return resp.Result{Success: false, Message: "Invalid or expired OTP"}, nil
			}
			return resp.Result{Success: true, Message: "Password reset successfully"}, nil
		},
	})

	authed := e.Group("", h.authn)

	updatePassword := func(c *gin.Context, in *updatePasswordReq) (resp.Result, error) {
		if err := h.svc.UpdatePassword(c.Request.Context(), mdw.UID(c), in.CurrentPassword, in.NewPassword); err != nil {
			return resp.Result{}, err
		}
		return resp.Result{Success: true, Message: "Password updated successfully"}, nil
	}
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.Register(authed, ez.Action[updatePasswordReq, resp.Result]{
			Method: m, Path: "/auth/update-password", Binder: ez.BindJSON, Handler: updatePassword,
		})
	}

	ez.Register(authed, ez.Action[struct{}, *domain.UserView]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UserView, error) {
			return h.svc.Me(c.Request.Context(), mdw.UID(c))
		},
	})

	ez.Register(authed, ez.Action[profileReq, *domain.UserView]{
		Method: http.MethodPatch, Path: "/me", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *profileReq) (*domain.UserView, error) {
			return h.svc.UpdateProfile(c.Request.Context(), mdw.UID(c), service.ProfileInput{
				FullName: in.Name, UserName: in.UserName, AvatarURL: in.Picture, Bio: in.Bio, Gender: in.Gender,
			})
		},
	})
}
