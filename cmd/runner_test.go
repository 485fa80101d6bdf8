package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
	tu "github.com/nclalperen/game-tracker-mvp/internal/testing"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

type mockSteam struct {
	games  []services.OwnedGame
	prices map[int]decimal.Decimal
}

func (m *mockSteam) OwnedGames(ctx context.Context) ([]services.OwnedGame, error) {
	return m.games, nil
}

func (m *mockSteam) PriceTRY(ctx context.Context, appID int) (decimal.Decimal, error) {
	p, ok := m.prices[appID]
	if !ok {
		return decimal.Zero, shared.ErrNoPrice
	}
	return p, nil
}

// newTestRunner returns a runner over an in-memory database with output captured.
func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	t.Setenv("GAMETRACKER_DB", "")
	t.Setenv("STEAM_API_KEY", "")
	t.Setenv("IGDB_CLIENT_ID", "")

	output := &bytes.Buffer{}
	opts.Output = output
	opts.DB = tu.MustOpenDB(t)
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(&bytes.Buffer{})
	}
	return NewRunner(opts), output
}

// run executes args as if typed after the program name, without a config file.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	argv := append([]string{"gametracker", "--config", ""}, args...)
	return newApp(r).Run(context.Background(), argv)
}

func mustRun(t *testing.T, r *Runner, args ...string) {
	t.Helper()
	if err := run(t, r, args...); err != nil {
		t.Fatalf("%s: unexpected error: %v", strings.Join(args, " "), err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			steam := &mockSteam{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Steam:      steam,
				Prices:     steam,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.steam != steam || runner.prices != steam {
				t.Error("expected steam clients to be set")
			}
			if runner.engine != nil {
				t.Error("expected engine to be opened lazily")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
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

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		for _, want := range []string{"setup", "import", "export", "library", "suggest", "enrich", "serve", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q command, got %v", want, names)
			}
		}
	})

	t.Run("Engine", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})

		first, err := runner.Engine()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := runner.Engine()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if first != second {
			t.Error("expected the engine to be reused")
		}
	})
}

func TestConfigure(t *testing.T) {
	t.Run("loads config file and db override", func(t *testing.T) {
		t.Setenv("GAMETRACKER_DB", "")
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		tu.MustWriteFile(t, path, "[suggest]\nbacklog_boost = 2.5\n\n[server]\nport = 4000\n")

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		app := newApp(runner)
		app.Commands = nil
		app.Action = func(context.Context, *cli.Command) error { return nil }

		if err := app.Run(context.Background(), []string{"gametracker", "--config", path, "--db", ":memory:"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if runner.configPath != path {
			t.Errorf("expected configPath %s, got %s", path, runner.configPath)
		}
		if runner.config.Suggest.BacklogBoost != 2.5 || runner.config.Server.Port != 4000 {
			t.Errorf("expected values from file, got %+v %+v", runner.config.Suggest, runner.config.Server)
		}
		if runner.config.Database.Path != ":memory:" {
			t.Errorf("expected db override, got %s", runner.config.Database.Path)
		}
		if runner.weights() != suggest.WeightsFromConfig(runner.config.Suggest) {
			t.Error("expected weights from config")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[suggest\n")

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		err := newApp(runner).Run(context.Background(), []string{"gametracker", "--config", path, "suggest"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes template once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := newApp(runner).Run(context.Background(), []string{"gametracker", "--config", path, "setup", "config"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("expected a loadable config, got %v", err)
		}

		if err := newApp(runner).Run(context.Background(), []string{"gametracker", "--config", path, "setup", "config"}); err == nil {
			t.Error("expected an error when the file already exists")
		}
	})

	t.Run("database lists migrations", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		mustRun(t, runner, "setup", "database")

		if !strings.Contains(output.String(), "✓ 0000 create_tables") {
			t.Errorf("expected applied migration in output, got %q", output.String())
		}
	})

	t.Run("seed is idempotent", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		mustRun(t, runner, "setup", "seed")
		mustRun(t, runner, "setup", "seed")

		if !strings.Contains(output.String(), "Imported 4 items") {
			t.Errorf("expected seed summary, got %q", output.String())
		}

		output.Reset()
		mustRun(t, runner, "library", "list")
		if !strings.Contains(output.String(), "4 games across 3 members") {
			t.Errorf("expected four seeded games, got %q", output.String())
		}
	})
}

func TestImportCommands(t *testing.T) {
	csv := "Oyun,Platform,Durum,Kim\nHades,PC,Playing,You\nHades,Steam,Beaten,You\n,PC,Backlog,You\nCeleste,Switch,Backlog,\n"

	writeCSV := func(t *testing.T) string {
		path := filepath.Join(t.TempDir(), "games.csv")
		tu.MustWriteFile(t, path, csv)
		return path
	}

	t.Run("csv with overrides", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		path := writeCSV(t)

		mustRun(t, runner, "import", "csv", "--map", "title=Oyun", "--map", "status=Durum", "--map", "member=Kim", "--json", path)

		var report importReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if report.Rows != 4 || report.Rejected != 1 || report.Nothing || report.DryRun {
			t.Errorf("unexpected report %+v", report)
		}
		if report.Summary == nil || report.Summary.Items != 3 || report.Summary.Identities != 2 {
			t.Errorf("unexpected summary %+v", report.Summary)
		}

		engine, _ := runner.Engine()
		snap, err := engine.Store().Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if len(snap.Library) != 3 {
			t.Errorf("expected 3 items, got %d", len(snap.Library))
		}
	})

	t.Run("mapping file", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		path := writeCSV(t)
		mapping := filepath.Join(t.TempDir(), "mapping.yaml")
		tu.MustWriteFile(t, mapping, "title: Oyun\nstatus: Durum\n")

		mustRun(t, runner, "import", "csv", "--mapping", mapping, path)

		if !strings.Contains(output.String(), "Import Complete") {
			t.Errorf("expected completion header, got %q", output.String())
		}
		if !strings.Contains(output.String(), "Imported 3 items") {
			t.Errorf("expected summary, got %q", output.String())
		}
	})

	t.Run("map pairs win over the mapping file", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		path := writeCSV(t)
		mapping := filepath.Join(t.TempDir(), "mapping.yaml")
		tu.MustWriteFile(t, mapping, "game: Durum\nwho: Kim\n")

		mustRun(t, runner, "import", "csv", "--mapping", mapping, "--map", "title=Oyun", "--json", path)

		var report importReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if report.Mapping[importer.FieldTitle] != "Oyun" || report.Mapping[importer.FieldMember] != "Kim" {
			t.Errorf("unexpected mapping %v", report.Mapping)
		}
		if report.Summary == nil || report.Summary.Identities != 2 {
			t.Errorf("unexpected summary %+v", report.Summary)
		}
	})

	t.Run("duplicate fields in the mapping file", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		mapping := filepath.Join(t.TempDir(), "mapping.yaml")
		tu.MustWriteFile(t, mapping, "title: Oyun\ngame: Durum\n")

		err := run(t, runner, "import", "csv", "--mapping", mapping, writeCSV(t))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		path := writeCSV(t)

		mustRun(t, runner, "import", "csv", "--map", "title=Oyun", "--dry-run", path)

		if !strings.Contains(output.String(), "Would write 2 games") {
			t.Errorf("expected plan in output, got %q", output.String())
		}

		engine, _ := runner.Engine()
		snap, err := engine.Store().Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if !snap.Empty() {
			t.Errorf("expected nothing written, got %+v", snap)
		}
	})

	t.Run("nothing to import", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})
		path := filepath.Join(t.TempDir(), "empty.csv")
		tu.MustWriteFile(t, path, "Title,Platform\n,PC\n")

		mustRun(t, runner, "import", "csv", path)

		if !strings.Contains(output.String(), "Nothing to import.") {
			t.Errorf("expected nothing to import, got %q", output.String())
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		err := run(t, runner, "import", "csv", "--map", "title=Nope", writeCSV(t))

		if !errors.Is(err, shared.ErrUnknownColumn) {
			t.Errorf("expected ErrUnknownColumn, got %v", err)
		}
	})

	t.Run("malformed override", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		err := run(t, runner, "import", "csv", "--map", "title", writeCSV(t))

		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		if err := run(t, runner, "import", "csv"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("steam", func(t *testing.T) {
		steam := &mockSteam{games: []services.OwnedGame{{AppID: 1145360, Name: "Hades"}, {AppID: 413150, Name: "Stardew Valley"}}}
		runner, output := newTestRunner(t, RunnerOpts{Steam: steam})

		mustRun(t, runner, "import", "steam", "--json")

		var report importReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if report.Summary == nil || report.Summary.Items != 2 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("steam without credentials", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		if err := run(t, runner, "import", "steam"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestExportCommands(t *testing.T) {
	runner, output := newTestRunner(t, RunnerOpts{})
	mustRun(t, runner, "setup", "seed")
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "library.csv")
		mustRun(t, runner, "export", "csv", "-o", path)

		table := formatter.ParseCSV(tu.MustReadFile(t, path))
		if len(table.Records) != 4 {
			t.Errorf("expected 4 rows, got %d", len(table.Records))
		}
		if table.Records[0].Get("title") != "Hades" {
			t.Errorf("expected Hades first, got %v", table.Records[0])
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "library.xlsx")
		mustRun(t, runner, "export", "xlsx", "-o", path)
		tu.AssertFileExists(t, path)
	})

	t.Run("json round trip", func(t *testing.T) {
		path := filepath.Join(dir, "library.json")
		mustRun(t, runner, "export", "json", "-o", path)

		if !strings.Contains(output.String(), "Exported 4 items") {
			t.Errorf("expected export message, got %q", output.String())
		}

		fresh, _ := newTestRunner(t, RunnerOpts{})
		mustRun(t, fresh, "import", "json", path)

		engine, _ := fresh.Engine()
		snap, err := engine.Store().Snapshot(context.Background(), repositories.Library)
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if len(snap.Library) != 4 {
			t.Errorf("expected 4 items after import, got %d", len(snap.Library))
		}
	})
}

func TestLibraryAndSuggest(t *testing.T) {
	runner, output := newTestRunner(t, RunnerOpts{})
	mustRun(t, runner, "setup", "seed")

	t.Run("filtered list", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "library", "list", "--member", "hatice")

		if !strings.Contains(output.String(), "EA Sports FC 25") || strings.Contains(output.String(), "Hades") {
			t.Errorf("expected only Hatice's game, got %q", output.String())
		}
	})

	t.Run("grouped json", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "library", "list", "--group", "--json")

		var groups []struct {
			Member string            `json:"member"`
			Rows   []json.RawMessage `json:"rows"`
		}
		if err := json.Unmarshal(output.Bytes(), &groups); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if len(groups) != 3 || groups[0].Member != "You" || len(groups[0].Rows) != 2 {
			t.Errorf("unexpected groups %+v", groups)
		}
	})

	t.Run("invalid band", func(t *testing.T) {
		if err := run(t, runner, "library", "list", "--score", "50+"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("suggest buy", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "suggest", "--kind", "buy", "--json")

		var got []suggest.Suggestion
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if len(got) != 1 || got[0].ID != "lib-ds" || got[0].Kind != suggest.BuyClaim {
			t.Errorf("unexpected suggestions %+v", got)
		}
	})

	t.Run("suggest both kinds", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "suggest", "--limit", "1")

		text := output.String()
		if !strings.Contains(text, "Play Next") || !strings.Contains(text, "Buy / Claim") {
			t.Errorf("expected both sections, got %q", text)
		}
		if !strings.Contains(text, "1. Stardew Valley") || !strings.Contains(text, "1. Death Stranding") {
			t.Errorf("expected top picks, got %q", text)
		}
	})

	t.Run("suggest unknown kind", func(t *testing.T) {
		if err := run(t, runner, "suggest", "--kind", "later"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestEnrichCommands(t *testing.T) {
	t.Run("prices", func(t *testing.T) {
		steam := &mockSteam{
			games:  []services.OwnedGame{{AppID: 1145360, Name: "Hades"}, {AppID: 99, Name: "Delisted"}},
			prices: map[int]decimal.Decimal{1145360: decimal.RequireFromString("249.50")},
		}
		runner, output := newTestRunner(t, RunnerOpts{Steam: steam, Prices: steam})
		mustRun(t, runner, "import", "steam", "--json")

		output.Reset()
		mustRun(t, runner, "enrich", "prices", "--workers", "2", "--rate", "1000", "--json")

		var report enrichReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output %q: %v", output.String(), err)
		}
		if report.Total != 2 || report.Found != 1 || report.Updated != 1 || len(report.Failures) != 1 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("ttb without credentials", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})
		if err := run(t, runner, "enrich", "ttb"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
