package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dirsync/core/loader"
	"dirsync/core/logger"
	"dirsync/core/metrics"
	"dirsync/core/middleware/auth"
	"dirsync/core/middleware/rayid"
	"dirsync/core/server"
	"dirsync/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/swagger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "dirsync/docs/swagger"
)

// @title dirsync API
// @version 1.0
// @description Catalog of a published directory tree.
// @host localhost:8080
// @BasePath /

var (
	serveRecursive bool
	servePort      string
	serveAuto      bool
	serveSSL       bool
	serveCertPath  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Publish a directory over HTTP",
	Long: `Scans the directory once and serves its catalog (/list, /dir) and
its contents (/files/...) until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveRecursive, "recursive", "r", false, "Descend into subdirectories")
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on")
	serveCmd.Flags().BoolVarP(&serveAuto, "auto", "a", false, "Listen on an ephemeral port")
	serveCmd.Flags().BoolVar(&serveSSL, "ssl", false, "Serve HTTPS")
	serveCmd.Flags().StringVar(&serveCertPath, "ssl_cert_path", "", "Directory holding cert.pem and key.pem")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()

	flags := cmd.Flags()
	srv := cfg.Server
	if len(args) > 0 {
		srv.Root = args[0]
	}
	if flags.Changed("recursive") {
		srv.Recursive = serveRecursive
	}
	if flags.Changed("port") {
		srv.Port = servePort
	}
	if flags.Changed("auto") {
		srv.Auto = serveAuto
	}
	if flags.Changed("ssl") {
		srv.SSL = serveSSL
	}
	if flags.Changed("ssl_cert_path") {
		srv.CertPath = serveCertPath
	}

	// 1. Scan before listening
	cat := catalog.New(afero.NewOsFs(), srv.Root, srv.Recursive, logg)
	if _, err := cat.Rescan(cmd.Context()); err != nil {
		return fmt.Errorf("scan %s: %w", srv.Root, err)
	}

	// 2. Initialize Fiber App
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          server.ErrorHandler(logg),
	})

	mgr := loader.NewManager()
	mgr.Register(catalog.NewFeature(cat, logg))

	// 3. Middleware
	app.Use(rayid.New())
	if srv.Metrics {
		app.Use(metrics.Middleware())
	}
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	// File bodies are streamed with byte ranges and stay uncompressed.
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/files/")
		},
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	if srv.Metrics {
		app.Get("/metrics", metrics.Handler())
	}

	app.Use(auth.New(auth.Config{ApiKey: srv.ApiKey, Public: []string{"/metrics"}}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	logg.Debug("Features loaded", zap.Strings("features", loaded))

	// 4. Listen
	ln, err := net.Listen("tcp", srv.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Address(), err)
	}
	if srv.SSL {
		certFile, keyFile := srv.CertFiles()
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("load certificate from %s: %w", srv.CertPath, err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server",
			zap.String("address", ln.Addr().String()),
			zap.String("root", srv.Root),
			zap.Bool("ssl", srv.SSL),
		)
		errCh <- app.Listener(ln)
	}()

	// 5. Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logg.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
