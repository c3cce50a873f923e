package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/logplatform/backend/internal/api"
	"github.com/logplatform/backend/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, a)
		},
	}
}

// newEcho builds the router with middleware, API routes and, when a built
// frontend is present, the static routes.
func newEcho(a *app) (*echo.Echo, bool) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, a.cfg, a.logger)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Engine:   a.engine,
		Peers:    a.client,
		Fleet:    a.aggregator,
		Bindings: a.registry,
		Logger:   a.logger,
		Version:  Version,
	}))

	staticMode := web.HasStaticFiles(a.cfg.Server.StaticDir)
	if staticMode {
		web.RegisterStaticRoutes(e, a.cfg.Server.StaticDir)
	}
	return e, staticMode
}

func serve(ctx context.Context, a *app) error {
	e, staticMode := newEcho(a)

	// Configure server with settings from the YAML config
	s := &http.Server{
		Addr:         a.cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout)*time.Second + a.cfg.RemoteTimeout(),
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(a, staticMode)
	a.logger.Info("server starting",
		zap.String("addr", s.Addr),
		zap.String("logRoot", a.cfg.FullLogPath()),
		zap.String("logPrefix", a.cfg.Logs.LogPrefix),
		zap.Int("servers", len(a.registry.ListServers())),
		zap.Int("apps", len(a.registry.ListApps())))

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func printBanner(a *app, staticMode bool) {
	mode := "API only"
	if staticMode {
		mode = "API + frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Log Platform Server                             ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", a.configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", a.cfg.GetServerAddr())
	fmt.Printf("║  Log Root:  %-46s║\n", a.cfg.FullLogPath())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
