package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened on first use so commands like "setup config" work without one.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	steam   services.GameLibrary
	prices  services.PriceSource
	timings services.TimingSource

	db     *sql.DB
	engine *tasks.ImportEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Steam, Prices and Timings override the clients built from config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Steam      services.GameLibrary
	Prices     services.PriceSource
	Timings    services.TimingSource
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		steam:      opts.Steam,
		prices:     opts.Prices,
		timings:    opts.Timings,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, exportCommand, libraryCommand,
		suggestCommand, enrichCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure loads the config file named by --config when it exists, then
// applies environment overrides and the --db and --verbose flags.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		r.configPath = path
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
			r.logger.Debug("loaded config", "path", path)
		}
	}

	r.config.ApplyEnv()
	if db := cmd.String("db"); db != "" {
		r.config.Database.Path = db
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
}

// Engine returns the import engine, opening and migrating the database on first use.
func (r *Runner) Engine() (*tasks.ImportEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	if r.db == nil {
		r.logger.Debug("opening database", "path", r.config.Database.Path)
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db = db
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repositories.NewStore(r.db)
	r.engine = tasks.NewImportEngine(store, shared.WithLogger(r.logger, "component", "import"), tasks.ImportOpts{
		ReuseIdentities: r.config.Import.ReuseIdentities,
	})
	return r.engine, nil
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.engine = nil
	return err
}

// steamService returns the Steam client used for library imports and price lookups.
func (r *Runner) steamService() *services.SteamService {
	return services.NewSteamService(r.config.Credentials.Steam, r.httpClient)
}

func (r *Runner) gameLibrary() (services.GameLibrary, error) {
	if r.steam != nil {
		return r.steam, nil
	}
	if !r.config.HasSteamKey() || r.config.Credentials.Steam.SteamID == "" {
		return nil, fmt.Errorf("%w: set credentials.steam.api_key and steam_id (or STEAM_API_KEY / STEAM_ID)", shared.ErrMissingCredentials)
	}
	return r.steamService(), nil
}

func (r *Runner) priceSource() services.PriceSource {
	if r.prices != nil {
		return r.prices
	}
	return r.steamService()
}

func (r *Runner) timingSource(ctx context.Context) (services.TimingSource, error) {
	if r.timings != nil {
		return r.timings, nil
	}
	if !r.config.HasIGDB() {
		return nil, fmt.Errorf("%w: set credentials.igdb client_id and client_secret (or IGDB_CLIENT_ID / IGDB_CLIENT_SECRET)", shared.ErrMissingCredentials)
	}
	return services.NewIGDBService(ctx, r.config.Credentials.IGDB, "", "", r.httpClient)
}

func (r *Runner) weights() suggest.Weights {
	return suggest.WeightsFromConfig(r.config.Suggest)
}

func (r *Runner) enrichOpts(cmd *cli.Command) tasks.EnrichOpts {
	opts := tasks.EnrichOpts{
		NumWorkers: r.config.Enrich.Workers,
		RateLimit:  r.config.Enrich.RateLimit,
	}
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}
	if cmd.IsSet("rate") {
		opts.RateLimit = cmd.Float("rate")
	}
	return opts
}

// progressPrinter prints updates until the returned channel is closed; wait blocks until it has drained.
func (r *Runner) progressPrinter() (progress chan tasks.ProgressUpdate, wait func()) {
	progress = make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 1 && update.Step > 0 {
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
				continue
			}
			r.writePlain("• %s\n", update.Message)
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
