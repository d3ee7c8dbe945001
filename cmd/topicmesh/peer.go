package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-topicmesh"
	"github.com/dep2p/go-topicmesh/internal/app"
)

var (
	peerListen    string
	peerAdvertise string
	peerDirectory string
)

var peerCmd = &cobra.Command{
	Use:   "peer",
	Short: "Run a peer node",
	Long: `Run a peer node. With --directory the node initializes and registers
itself on startup and unregisters on shutdown; without it the node waits for
POST /peer/initialize.`,
	RunE: runPeer,
}

func init() {
	f := peerCmd.Flags()
	f.StringVarP(&peerListen, "listen", "l", "", "HTTP listen address (default :8081)")
	f.StringVar(&peerAdvertise, "advertise", "", "address registered with the directory, e.g. http://10.0.0.2:8081")
	f.StringVarP(&peerDirectory, "directory", "d", "", "directory service URL, e.g. http://127.0.0.1:8080")
	rootCmd.AddCommand(peerCmd)
}

func runPeer(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if peerListen != "" {
		cfg.Peer.ListenAddr = peerListen
	}
	if peerAdvertise != "" {
		cfg.Peer.AdvertiseAddr = peerAdvertise
	}
	if peerDirectory != "" {
		cfg.Peer.DirectoryURL = peerDirectory
	}

	closer, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	logger.Info("启动节点", "version", topicmesh.Version, "listen", cfg.Peer.ListenAddr, "directory", cfg.Peer.DirectoryURL)

	fxApp, err := app.New(app.RolePeer, cfg, app.Options{FxDebug: fxDebug})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return app.Run(ctx, fxApp, cfg.Peer.ShutdownTimeout.Duration())
}
