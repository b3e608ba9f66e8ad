package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wayfind-ui/wayfind/internal/dev"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

func devCmd() *cobra.Command {
	var (
		addr         string
		manifestPath string
		staticDir    string
		shellPath    string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with live reload.

The server serves the app shell, exposes the compiled route table at
/_wayfind/routes and the manifest at /_wayfind/manifest, and pushes
reload events to connected browsers over WebSocket.

Examples:
  wayfind dev
  wayfind dev --addr=:8080 --manifest dist/manifest.json --static dist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(addr, manifestPath, staticDir, shellPath)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":5173", "Listen address")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Route manifest file")
	cmd.Flags().StringVarP(&staticDir, "static", "s", "", "Static assets directory")
	cmd.Flags().StringVar(&shellPath, "shell", "", "App shell HTML file")

	return cmd
}

func runDev(addr, manifestPath, staticDir, shellPath string) error {
	opts := dev.ServerOptions{
		Addr:      addr,
		StaticDir: staticDir,
	}

	if manifestPath != "" {
		manifest, err := router.ReadManifestFile(manifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		opts.Manifest = manifest
		opts.Routes = routesFromManifest(manifest)
	}

	if shellPath != "" {
		shell, err := os.ReadFile(shellPath)
		if err != nil {
			return fmt.Errorf("read shell: %w", err)
		}
		opts.Shell = string(shell)
	}

	srv, err := dev.NewServer(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner()
	info("dev server listening on %s", addr)
	info("routes:   http://localhost%s/_wayfind/routes", addr)
	info("manifest: http://localhost%s/_wayfind/manifest", addr)

	return srv.Start(ctx)
}
