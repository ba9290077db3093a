// Package app 组装依赖：repo → service → handler → router.Registry；两个进程共用
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/core/cache"
	"go-gin-rbac/internal/core/config"
	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/core/mail"
	"go-gin-rbac/internal/core/server"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
	"go-gin-rbac/internal/service"
	"go-gin-rbac/internal/transport/http/handler"
	mdw "go-gin-rbac/internal/transport/http/middleware"
	"go-gin-rbac/internal/transport/http/router"
)

type Services struct {
	Users           *service.UserService
	Roles           *service.RoleService
	Permissions     *service.PermissionService
	Countries       *service.CountryService
	UserRoles       *service.UserRoleService
	RolePermissions *service.RolePermissionService
	Follows         *service.FollowService
	Auth            *service.AuthService
}

type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	JWT      *auth.JWTer
	Svc      Services
	Registry *router.Registry
	Limits   router.Limits
}

// Deps Mailer / Google 为 nil 时按配置创建
type Deps struct {
	Cfg    *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  *cache.Cache
	Mailer mail.Mailer
	Google auth.GoogleVerifier
}

func New(d Deps) *App {
	cfg, l := d.Cfg, d.Log
	if d.Mailer == nil {
		d.Mailer = mail.NewSMTPMailer(cfg.SMTP)
	}
	if d.Google == nil {
		d.Google = &auth.IDTokenVerifier{ClientID: cfg.Google.ClientID}
	}
	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.AccessTokenTTL()}

	tx := database.NewTxManager(d.DB)
	userRepo := repo.NewUserRepo(d.DB)
	roleRepo := repo.NewRoleRepo(d.DB)
	permRepo := repo.NewPermissionRepo(d.DB)

	var s Services
	s.Users = service.NewUserService(userRepo, l)
	s.Roles = service.NewRoleService(roleRepo, l)
	s.Permissions = service.NewPermissionService(permRepo, l)
	s.Countries = service.NewCountryService(repo.NewCountryRepo(d.DB), d.Cache, l)
	s.UserRoles = service.NewUserRoleService(tx, userRepo, roleRepo, repo.NewUserRoleRepo(d.DB), l)
	s.RolePermissions = service.NewRolePermissionService(tx, roleRepo, permRepo, repo.NewRolePermissionRepo(d.DB), l)
	s.Follows = service.NewFollowService(userRepo, repo.NewFollowRepo(d.DB))
	s.Auth = service.NewAuthService(service.AuthDeps{
		Users:  userRepo,
		Roles:  s.UserRoles,
		Cache:  d.Cache,
		JWT:    jwter,
		Mailer: d.Mailer,
		Google: d.Google,
		OTPTTL: cfg.OTP.TTL(),
		Log:    l,
	})

	authn := mdw.AuthJWT(jwter, "")
	perMin := cfg.OTP.SendPerMinute
	if perMin <= 0 {
		perMin = 5
	}
	otpLimit := mdw.RateLimitPerIP(rate.Limit(float64(perMin)/60), perMin)

	reg := router.NewRegistry(
		handler.NewAuthHandler(s.Auth, authn, otpLimit, l),
		handler.NewFollowHandler(s.Follows, authn, l),
		handler.NewCountryHandler(s.Countries, l),
		handler.NewUserHandler(s.Users, l),
		handler.NewRoleHandler(s.Roles, l),
		handler.NewPermissionHandler(s.Permissions, l),
		handler.NewUserRoleHandler(s.UserRoles, l),
		handler.NewRolePermissionHandler(s.RolePermissions, l),
	)

	return &App{
		Cfg: cfg, Log: l, DB: d.DB, Cache: d.Cache, JWT: jwter,
		Svc: s, Registry: reg, Limits: router.DefaultLimits(),
	}
}

func (a *App) routerOptions() server.Options {
	mode := gin.DebugMode
	switch a.Cfg.App.Env {
	case "prod":
		mode = gin.ReleaseMode
	case "test":
		mode = gin.TestMode
	}
	return server.Options{Name: a.Cfg.App.Name, Mode: mode, AllowOrigins: a.Cfg.CORS.AllowOrigins}
}

func (a *App) APIEngine() *gin.Engine {
	return router.NewAPIEngine(a.Log, a.routerOptions(), a.Limits, a.Registry)
}

func (a *App) AdminEngine() *gin.Engine {
	return router.NewAdminEngine(a.Log, a.routerOptions(), a.Limits, a.JWT, a.Registry)
}

// OpenDB 按配置连库；AutoMigrate 打开时顺带建表
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		PrepareStmt:        cfg.DB.PrepareStmt,
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := migrateOrClose(db, database.AutoMigrate); err != nil {
			return nil, err
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// migrateOrClose 迁移失败时关掉已建立的连接池再返回
func migrateOrClose(db *gorm.DB, migrate func(*gorm.DB) error) error {
	if err := migrate(db); err != nil {
		CloseDB(db)
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// CloseDB 关闭 gorm 底层连接池
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func OpenCache(ctx context.Context, cfg *config.Config, l *zap.Logger) (*cache.Cache, error) {
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c, nil
}

// Close 释放连接
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	CloseDB(a.DB)
}

// GrantRole 给指定邮箱的用户授予角色（角色不存在则创建）；已拥有视为成功
func (a *App) GrantRole(ctx context.Context, email, roleName string) error {
	u, err := a.Svc.Users.FindOne(ctx, domain.UserFilter{Email: email})
	if err != nil {
		return err
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	r, err := a.Svc.Roles.Ensure(ctx, roleName)
	if err != nil {
		return err
	}
	if _, err := a.Svc.UserRoles.Add(ctx, u.ID, r.ID); err != nil && domain.KindOf(err) != domain.KindConflict {
		return err
	}
	a.Log.Info("role granted", zap.Uint64("userId", u.ID), zap.String("role", r.Name))
	return nil
}
