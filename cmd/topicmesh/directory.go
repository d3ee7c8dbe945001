package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-topicmesh"
	"github.com/dep2p/go-topicmesh/internal/app"
)

var directoryListen string

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Run the directory service",
	RunE:  runDirectory,
}

func init() {
	directoryCmd.Flags().StringVarP(&directoryListen, "listen", "l", "", "HTTP listen address (default :8080)")
	rootCmd.AddCommand(directoryCmd)
}

func runDirectory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if directoryListen != "" {
		cfg.Directory.ListenAddr = directoryListen
	}

	closer, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	logger.Info("启动目录服务", "version", topicmesh.Version, "listen", cfg.Directory.ListenAddr)

	fxApp, err := app.New(app.RoleDirectory, cfg, app.Options{FxDebug: fxDebug})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return app.Run(ctx, fxApp, cfg.Peer.ShutdownTimeout.Duration())
}
