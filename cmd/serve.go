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

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/tonearm/internal/artwork"
	"github.com/desertthunder/tonearm/internal/auth"
	"github.com/desertthunder/tonearm/internal/handlers"
	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/playqueue"
	"github.com/desertthunder/tonearm/internal/repositories"
	"github.com/desertthunder/tonearm/internal/scrobble"
	"github.com/desertthunder/tonearm/internal/server"
	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Serve runs the protocol server until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		config.Server.Port = port
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	router, err := r.newRouter(config, repositories.NewCatalogRepository(db))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              config.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.logger.Info("listening", "addr", srv.Addr, "music_dir", config.Library.MusicDir, "open", len(config.Users) == 0)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newRouter wires the protocol API, metrics and banner routes behind the middleware stack.
func (r *Runner) newRouter(config *shared.Config, catalog *repositories.CatalogRepository) (*server.BasicRouter, error) {
	users := auth.NewStore(config.Users)
	scrobblers, err := scrobble.FromConfig(config.Scrobblers, shared.WithLogger(r.logger, "component", "scrobble"))
	if err != nil {
		return nil, err
	}
	if names := scrobblers.Names(); len(names) > 0 {
		r.logger.Info("scrobblers enabled", "names", names)
	}

	api := handlers.NewAPI(handlers.Options{
		Catalog:     catalog,
		Users:       users,
		Playlists:   playlists.NewCache(catalog, config.Library.MusicDir),
		Queue:       playqueue.NewStore(),
		Artwork:     artwork.New(),
		Scrobbler:   scrobblers,
		Logger:      shared.WithLogger(r.logger, "component", "api"),
		MusicDir:    config.Library.MusicDir,
		PlaylistDir: config.Library.PlaylistDir,
	})

	metrics := server.NewMetrics(version)
	router := server.NewBasicRouter()
	router.Use(
		server.RequestID,
		server.Logging(shared.WithLogger(r.logger, "component", "http")),
		metrics.Middleware,
		server.Recover(r.logger),
		server.CORS(config.Server.CORSOrigins),
	)
	router.Handler(api)
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())
	router.Handle(http.MethodGet, "/", banner(r.logger))
	return router, nil
}

// banner answers the bare root so a browser pointed at the server sees what it is. Other paths are 404.
func banner(logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		server.SetRoute(req.Context(), "banner")
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := fmt.Fprintf(w, "%s %s (Subsonic API %s)\n", subsonic.ServerType, version, subsonic.Version); err != nil {
			logger.Debug("failed to write banner", "error", err)
		}
	})
}
