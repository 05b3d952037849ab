package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tonearm/internal/formatter"
	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/repositories"
	"github.com/desertthunder/tonearm/internal/shared"
)

// Export resolves a playlist against the catalog and writes it as CSV, Markdown or text.
//
// A relative playlist path that does not exist in the working directory is looked up under library.playlist_dir.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: playlist path", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	path = resolvePlaylist(path, config.Library.PlaylistDir)

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCatalogRepository(db)
	entry, err := playlists.NewCache(repo, config.Library.MusicDir).Get(ctx, path)
	if err != nil {
		return err
	}

	if cmd.Bool("stdout") {
		data, err := formatter.Render(entry, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	written, err := formatter.WriteExport(entry, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("playlist exported", "playlist", entry.Name, "songs", entry.SongCount(), "file", written)
	r.writePlain("%s %s\n", palette.ok.Render("✓ Exported to"), written)
	return nil
}

func resolvePlaylist(path, dir string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(dir, path)
}
