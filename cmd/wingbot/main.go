package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edtools/wingbot/internal/colony"
	"github.com/edtools/wingbot/internal/config"
	"github.com/edtools/wingbot/internal/database"
	"github.com/edtools/wingbot/internal/dispatcher"
	"github.com/edtools/wingbot/internal/gateway"
	"github.com/edtools/wingbot/internal/syscache"
	"github.com/edtools/wingbot/internal/wing"
	"github.com/edtools/wingbot/pkg/edsm"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	logger *slog.Logger
	config *config.AppConfig

	dbm        *database.DatabaseManager
	cache      *syscache.SystemCache
	colony     *colony.Service
	rules      *wing.Rules
	machine    *wing.Machine
	dispatcher *dispatcher.Dispatcher
}

func NewApp(conf *config.AppConfig) (*App, error) {
	app := &App{
		logger: slog.Default().With(slog.String("logger", "app")),
		config: conf,
	}

	db, err := database.GetDatabase(conf.DbDSN(), conf.Debug())
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app.dbm = database.New(db)

	if err := app.dbm.Migrate(); err != nil {
		return nil, fmt.Errorf("db migrate error: %w", err)
	}

	app.cache = syscache.New(app.dbm, edsm.New(conf.EdsmURL()))
	app.colony = colony.New(app.dbm, app.cache)
	app.rules = wing.NewRules(conf.RulesFile())

	// the chat gateway is pluggable. Without a platform connector
	// configured we run the in-memory one, which is enough for the
	// admin api and local testing.
	app.machine = wing.NewMachine(gateway.NewMemoryGateway(), app.rules)
	app.dispatcher = dispatcher.New(app.colony, app.machine, app.cache)

	return app, nil
}

func (app *App) Run(ctx context.Context) {
	if err := app.rules.Start(); err != nil {
		app.logger.Warn("rules watcher not started", slog.Any("error", err))
	}

	defer app.rules.Stop()

	api := NewAdminAPI(app, app.config.AdminAddr())

	go func() {
		if err := api.Listen(); err != nil && ctx.Err() == nil {
			app.logger.Error("admin api error", slog.Any("error", err))
		}
	}()

	app.logger.Info("admin api listening on " + app.config.AdminAddr())

	<-ctx.Done()
	app.logger.Info("exiting...")

	if err := api.Shutdown(); err != nil {
		app.logger.Error("shutdown error", slog.Any("error", err))
	}
}

func main() {
	fmt.Printf("version %s %s\n", gitRevision, gitBranch)

	var debug = flag.Bool("debug", false, "debug mode")

	var conf = flag.String("config", "wingbot.yml", "name of config file")

	flag.Parse()

	cfg := config.NewAppConfig()
	cfg.Load(*conf)

	if *debug {
		cfg.Set("debug", true)
	}

	setupLogging(cfg.Debug())

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("init error", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app.Run(ctx)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo

	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
