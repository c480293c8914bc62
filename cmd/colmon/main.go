package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const refreshInterval = time.Second * 30

type App struct {
	g         *gocui.Gui
	Logger    *zap.SugaredLogger
	remoteAPI *RemoteAPI

	projects sync.Map

	cancel context.CancelFunc
}

func NewApp(host string, logger *zap.SugaredLogger) *App {
	return &App{
		Logger:    logger,
		remoteAPI: NewRemoteAPI(host),
		projects:  sync.Map{},
	}
}

func (app *App) Run(ctx context.Context) {
	var err error

	app.g, err = gocui.NewGui(gocui.OutputNormal)

	if err != nil {
		panic(err)
	}

	defer app.g.Close()

	app.g.SetManagerFunc(app.layout)

	if err := app.setBindings(); err != nil {
		panic(err)
	}

	app.refresh(ctx)

	go app.refresher(ctx)

	if err := app.g.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		app.Logger.Errorf(err.Error())
	}
}

func (app *App) refresher(ctx context.Context) {
	t := time.NewTicker(refreshInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			app.refresh(ctx)
		}
	}
}

func (app *App) refresh(ctx context.Context) {
	page := 1

	seen := make(map[string]bool)

	for {
		res, err := app.remoteAPI.GetProjects(ctx, page)
		if err != nil {
			app.Logger.Errorf("fetch error: %s", err.Error())

			return
		}

		for _, p := range res.Projects {
			app.projects.Store(p.ProjectName, p)
			seen[p.ProjectName] = true
		}

		if int64(len(seen)) >= res.Total || len(res.Projects) == 0 {
			break
		}

		page++
	}

	app.projects.Range(func(key, _ any) bool {
		if !seen[key.(string)] {
			app.projects.Delete(key)
		}

		return true
	})

	app.redraw()
}

func (app *App) stop(_ *gocui.Gui, _ *gocui.View) error {
	if app.cancel != nil {
		app.cancel()
	}

	return gocui.ErrQuit
}

func main() {
	conf := flag.String("config", "colmon.yml", "name of config file")
	debug := flag.Bool("debug", false, "debug")
	flag.Parse()

	viper.SetConfigFile(*conf)

	viper.SetDefault("server_address", "127.0.0.1:8080")

	_ = viper.ReadInConfig()

	var cfg zap.Config
	if *debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
	}

	cfg.OutputPaths = []string{"colmon.log"}

	logger, _ := cfg.Build()
	defer logger.Sync()

	app := NewApp(viper.GetString("server_address"), logger.Sugar())

	app.Logger.Infof("server: %s", viper.GetString("server_address"))

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.Run(ctx)
	cancel()

	fmt.Println("bye")
}
