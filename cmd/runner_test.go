package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tonearm/internal/repositories"
	"github.com/desertthunder/tonearm/internal/shared"
	tu "github.com/desertthunder/tonearm/internal/testing"
)

// writeConfig writes a config that keeps the database and music directory inside dir.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := "[server]\nport = 4533\nlog_level = \"warn\"\n\n" +
		"[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "test.db")) + "\"\n\n" +
		"[library]\nmusic_dir = \"" + filepath.ToSlash(filepath.Join(dir, "music")) + "\"\n" + extra
	tu.MustWriteFile(t, path, content)
	return path
}

// run executes args against the registered commands.
func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "tonearm", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"tonearm"}, args...))
}

func quietRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{Output: output, Logger: log.New(io.Discard)})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Hello %s, count: %d\n", "World", 42); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello World, count: 42\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		var names []string
		for _, cmd := range runner.register() {
			names = append(names, cmd.Name)
		}

		expected := []string{"serve", "setup", "scan", "export", "migrate", "version"}
		if strings.Join(names, ",") != strings.Join(expected, ",") {
			t.Errorf("expected commands %v, got %v", expected, names)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	load := func(runner *Runner, path string) (*shared.Config, error) {
		var config *shared.Config
		cmd := &cli.Command{
			Name:  "load",
			Flags: []cli.Flag{configFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var err error
				config, err = runner.loadConfig(cmd)
				return err
			},
		}
		err := cmd.Run(context.Background(), []string{"load", "--config", path})
		return config, err
	}

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		runner := quietRunner(&bytes.Buffer{})
		config, err := load(runner, filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != shared.DefaultConfig().Server.Port {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})

	t.Run("reads the file", func(t *testing.T) {
		dir := t.TempDir()
		runner := quietRunner(&bytes.Buffer{})
		config, err := load(runner, writeConfig(t, dir, ""))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasSuffix(config.Database.Path, "test.db") {
			t.Errorf("expected database path from file, got %s", config.Database.Path)
		}
		if runner.logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected log level from file, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Server.LogLevel = "loud"
		runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})

		_, err := load(runner, "unused.toml")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("preset config wins", func(t *testing.T) {
		config := shared.DefaultConfig()
		runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})

		got, err := load(runner, "does-not-matter.toml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != config {
			t.Error("expected the preset config to be returned")
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("version json", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := run(t, quietRunner(output), "version", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"protocol": "1.16.1"`) {
			t.Errorf("expected protocol version, got %s", output.String())
		}
	})

	t.Run("setup then migrate status", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "")

		output := &bytes.Buffer{}
		if err := run(t, quietRunner(output), "setup", "--config", path); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "test.db"))
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("expected success message, got %s", output.String())
		}

		output.Reset()
		if err := run(t, quietRunner(output), "migrate", "status", "--config", path); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "create_catalog") || !strings.Contains(output.String(), "applied") {
			t.Errorf("expected applied catalog migration, got %s", output.String())
		}
	})

	t.Run("setup creates a missing config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fresh.toml")
		t.Chdir(dir)

		if err := run(t, quietRunner(&bytes.Buffer{}), "setup", "--config", path); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		tu.AssertFileExists(t, filepath.Join(dir, "tonearm.db"))
	})

	t.Run("scan json", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "")
		tu.MustWriteFile(t, filepath.Join(dir, "music", "Artist", "Album", "01 - Song.mp3"), "not audio")

		output := &bytes.Buffer{}
		if err := run(t, quietRunner(output), "scan", "--config", path, "--json"); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		for _, want := range []string{`"files": 1`, `"untagged": 1`, `"catalog_songs": 1`} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %s in %s", want, output.String())
			}
		}
	})

	t.Run("export playlist", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "playlist_dir = \""+filepath.ToSlash(filepath.Join(dir, "playlists"))+"\"\n")
		tu.MustWriteFile(t, filepath.Join(dir, "music", "Artist", "Album", "01 - Song.mp3"), "not audio")
		tu.MustWriteFile(t, filepath.Join(dir, "playlists", "mix.m3u"), "#EXTM3U\nArtist/Album/01 - Song.mp3\nmissing.mp3\n")

		if err := run(t, quietRunner(&bytes.Buffer{}), "scan", "--config", path, "--quiet"); err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		output := &bytes.Buffer{}
		if err := run(t, quietRunner(output), "export", "--config", path, "--format", "csv", "--stdout", "mix.m3u"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 || !strings.Contains(lines[1], "Song,Artist,Album") {
			t.Errorf("expected one resolved song, got %q", output.String())
		}

		target := filepath.Join(dir, "out", "mix.md")
		output.Reset()
		if err := run(t, quietRunner(output), "export", "--config", path, "-f", "md", "-o", target, "mix.m3u"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if content := tu.MustReadFile(t, target); !strings.Contains(content, "# mix") {
			t.Errorf("unexpected markdown %s", content)
		}
	})

	t.Run("export requires a playlist", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "")
		err := run(t, quietRunner(&bytes.Buffer{}), "export", "--config", path)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("scan without music dir", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "")
		if err := run(t, quietRunner(&bytes.Buffer{}), "scan", "--config", path, "--quiet"); err == nil {
			t.Fatal("expected error for missing music directory")
		}
	})
}

func TestRouter(t *testing.T) {
	config := shared.DefaultConfig()
	config.Server.CORSOrigins = []string{"*"}
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatal(err)
	}

	runner := quietRunner(&bytes.Buffer{})
	router, err := runner.newRouter(config, repositories.NewCatalogRepository(db))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Origin", "http://client.example")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("banner", func(t *testing.T) {
		rec := get("/")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tonearm") {
			t.Errorf("unexpected banner response %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Error("expected request id header")
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if rec := get("/nope"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("protocol", func(t *testing.T) {
		rec := get("/rest/ping.view?f=json")
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("expected ok envelope, got %s", rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected CORS header")
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		rec := get("/rest/getNowPlaying.view?f=json")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		if body := rec.Body.String(); !strings.Contains(body, `"status":"failed"`) || !strings.Contains(body, `"code":70`) {
			t.Errorf("expected not found envelope, got %s", body)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		get("/rest/getGenres?f=json")
		rec := get("/metrics")
		if !strings.Contains(rec.Body.String(), `tonearm_http_requests_total{code="200",route="getGenres"}`) {
			t.Errorf("expected per-route counter, got %s", rec.Body.String())
		}
	})

	t.Run("bad scrobbler config", func(t *testing.T) {
		bad := shared.DefaultConfig()
		bad.Scrobblers = []shared.ScrobblerConfig{{Name: "x", Kind: "carrier-pigeon"}}
		if _, err := runner.newRouter(bad, repositories.NewCatalogRepository(db)); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
