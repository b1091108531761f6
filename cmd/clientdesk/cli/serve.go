package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/clients"
	"clientdesk.org/internal/config"
	"clientdesk.org/internal/drafts"
	"clientdesk.org/internal/httpapi"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/seed"
	"clientdesk.org/internal/store"
)

func newServeCmd(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the clientdesk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			return runServe(cfg, version, commit)
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cfg *config.Config, version, commit string) error {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	db, err := store.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seed.Run(context.Background(), db, cfg.Seed.UsersFile, cfg.Seed.ClientsFile); err != nil {
		return err
	}

	key, err := auth.DeriveKey(cfg.Auth.Secret, cfg.Auth.SecretEncoding)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(key)
	if err != nil {
		return err
	}

	policy := auth.NewPolicy()
	trail := audit.New(db)
	api := httpapi.New(httpapi.Deps{
		Tokens:   tokens,
		Policy:   policy,
		Users:    db,
		Clients:  clients.NewService(db, trail),
		Drafts:   drafts.NewService(db, policy, trail),
		Trail:    trail,
		Ready:    httpapi.ReadyProbe{DB: db.SQLDB()},
		Version:  version,
		TokenTTL: cfg.Auth.TokenTTL,

		CORSOrigins: cfg.CORS.AllowedOrigins,
		LoginRate:   cfg.Login.RatePerSec,
		LoginBurst:  cfg.Login.Burst,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obs.LogRequest(map[string]any{
			"level": "info", "msg": "server starting",
			"addr": cfg.Server.Addr, "version": version, "driver": cfg.DB.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	obs.LogRequest(map[string]any{"level": "info", "msg": "server shutting down"})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
