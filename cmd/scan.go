package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tonearm/internal/library"
	"github.com/desertthunder/tonearm/internal/repositories"
)

// Scan imports the configured music directory into the catalog.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	workers := config.Library.ScanWorkers
	if n := int(cmd.Int("workers")); n > 0 {
		workers = n
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := library.Options{
		MusicDir: config.Library.MusicDir,
		ArtNames: config.Library.ArtNames,
		Workers:  workers,
	}

	var bar *progressbar.ProgressBar
	if !cmd.Bool("quiet") && !cmd.Bool("json") {
		bar = newScanBar(r.output)
		opts.Progress = func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		}
	}

	repo := repositories.NewCatalogRepository(db)
	result, err := library.NewScanner(repo, r.logger, opts).Scan(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	albums, songs, err := repo.Stats(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"files":          result.Files,
			"untagged":       result.Untagged,
			"albums":         result.Albums,
			"songs":          result.Songs,
			"removed":        result.Removed,
			"elapsed_ms":     result.Elapsed.Milliseconds(),
			"catalog_albums": albums,
			"catalog_songs":  songs,
		}, true)
	}

	untagged := palette.ok
	if result.Untagged > 0 {
		untagged = palette.warn
	}
	r.writePlain("\n%s\n", palette.summary("Scan complete",
		field{label: "Files", value: result.Files},
		field{label: "Untagged", value: result.Untagged, style: &untagged},
		field{label: "Albums", value: result.Albums},
		field{label: "Songs", value: result.Songs, style: &palette.ok},
		field{label: "Removed", value: result.Removed},
		field{label: "Catalog", value: fmt.Sprintf("%d albums, %d songs", albums, songs)},
		field{label: "Elapsed", value: result.Elapsed.Round(time.Millisecond)},
	))
	return nil
}

func newScanBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("reading tags"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
