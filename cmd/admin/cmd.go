package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-rbac/internal/app"
	"go-gin-rbac/internal/core/config"
	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/core/logger"
	"go-gin-rbac/internal/core/server"
)

type env struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "RBAC admin server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadE(e.cfgPath)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log, e.cleanup = logger.FromConfig(cfg.Log)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.cleanup != nil {
				e.cleanup()
			}
		},
	}
	root.PersistentFlags().StringVarP(&e.cfgPath, "config", "c", os.Getenv("CONFIG_PATH"), "config file path")
	root.AddCommand(serveCmd(e), migrateCmd(e), grantRoleCmd(e))
	return root
}

// 运行失败时打日志再返回，root 静默了 cobra 自己的错误输出
func (e *env) fail(msg string, err error) error {
	e.log.Error(msg, zap.Error(err))
	return err
}

func (e *env) build(ctx context.Context) (*app.App, error) {
	db, err := app.OpenDB(e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rc, err := app.OpenCache(cctx, e.cfg, e.log)
	if err != nil {
		app.CloseDB(db)
		return nil, err
	}
	return app.New(app.Deps{Cfg: e.cfg, Log: e.log, DB: db, Cache: rc}), nil
}

func serveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			restore := logger.RedirectStdLog(e.log, zapcore.InfoLevel)
			defer restore()

			a, err := e.build(cmd.Context())
			if err != nil {
				return e.fail("admin init", err)
			}
			defer a.Close()

			addr := server.Addr(e.cfg.App.Admin.Host, e.cfg.App.Admin.Port)
			srv := server.BuildServer(e.log, addr, a.AdminEngine(), 5*time.Second, 10*time.Second, 60*time.Second)
			e.log.Info("admin api starting",
				zap.String("addr", addr),
				zap.String("admin_v1", fmt.Sprintf("http://%s/admin/v1", addr)),
			)

			errCh := make(chan error, 1)
			go func() {
				if err := server.StartHTTP(srv, e.log); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return e.fail("admin api start FAILED", err)
			case <-quit:
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
			e.log.Info("admin api stopped gracefully")
			return nil
		},
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.cfg.DB.AutoMigrate = false
			db, err := app.OpenDB(e.cfg, e.log)
			if err != nil {
				return e.fail("db open", err)
			}
			defer app.CloseDB(db)
			if err := database.AutoMigrate(db); err != nil {
				return e.fail("migrate", err)
			}
			e.log.Info("migrate done", zap.Int("models", len(database.Models())))
			return nil
		},
	}
}

func grantRoleCmd(e *env) *cobra.Command {
	var email, role string
	c := &cobra.Command{
		Use:   "grant-role",
		Short: "Grant a role to a user by email (role is created when missing)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.build(cmd.Context())
			if err != nil {
				return e.fail("admin init", err)
			}
			defer a.Close()
			if err := a.GrantRole(cmd.Context(), email, role); err != nil {
				return e.fail("grant role", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %q to %s\n", role, email)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "user email")
	c.Flags().StringVar(&role, "role", "admin", "role name")
	_ = c.MarkFlagRequired("email")
	return c
}
