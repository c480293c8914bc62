package main

import (
	"embed"
	"net/http"
	"runtime/pprof"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edtools/wingbot/internal/colony"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/pkg/log"
	"github.com/edtools/wingbot/pkg/space"
)

//go:embed templates
var templates embed.FS

type AdminAPI struct {
	f    *fiber.App
	addr string
}

func NewAdminAPI(app *App, addr string) *AdminAPI {
	api := &AdminAPI{addr: addr}

	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.Delims("[[", "]]")

	api.f = fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true, Views: engine})

	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "admin_api", DoMetrics: true, LogErrorsOnly: true}))

	api.f.Get("/", getIndexHandler())

	api.f.Get("/project", getProjectsHandler(app))
	api.f.Get("/project/:id", getProjectHandler(app))
	api.f.Get("/project/:id/participants", getParticipantsHandler(app))
	api.f.Delete("/project/:id", deleteProjectHandler(app))

	api.f.Get("/cache", getCacheHandler(app))
	api.f.Delete("/cache", deleteCacheHandler(app))

	api.f.Get("/ws", getWsHandler(app))

	api.f.Get("/stack", getStackHandler())
	api.f.Get("/metrics", getMetricsHandler())

	return api
}

func (api *AdminAPI) Address() string {
	return api.addr
}

func (api *AdminAPI) Listen() error {
	return api.f.Listen(api.addr)
}

func (api *AdminAPI) Shutdown() error {
	return api.f.Shutdown()
}

func getIndexHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		data := map[string]any{
			"theme": "auto",
			"page":  " dash",
		}

		return ctx.Render("templates/index", data)
	}
}

func listFilter(app *App, ctx *fiber.Ctx) (colony.ListFilter, error) {
	f := colony.ListFilter{
		Page:      ctx.QueryInt("page", 1),
		PageSize:  ctx.QueryInt("page_size", colony.DefaultPageSize),
		Name:      ctx.Query("name"),
		Architect: ctx.Query("architect"),
		System:    ctx.Query("system"),
	}

	if origin := ctx.Query("origin_system"); origin != "" {
		pos := app.cache.Get(ctx.Context(), origin)
		if pos == nil || pos.Pos() == nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "unknown origin system "+origin)
		}

		f.Origin = pos.Pos()

		if d := ctx.Query("max_distance"); d != "" {
			v, err := strconv.ParseFloat(d, 64)
			if err != nil || v < 0 {
				return f, fiber.NewError(fiber.StatusBadRequest, "bad max_distance")
			}

			f.MaxDistance = v
		}
	}

	return f, nil
}

func getProjectsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		f, err := listFilter(app, ctx)
		if err != nil {
			return err
		}

		projects := app.colony.ListActive(f)

		result := make([]*model.WebProject, len(projects))
		for i, p := range projects {
			w := p.ToWeb()

			if f.Origin != nil && p.Pos() != nil {
				w.Distance = space.Distance(*f.Origin, *p.Pos())
			}

			result[i] = w
		}

		return ctx.JSON(fiber.Map{
			"total":    app.colony.CountActive(f),
			"page":     f.Page,
			"projects": result,
		})
	}
}

func getProjectHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "bad id")
		}

		p := app.colony.Get(uint(id))
		if p == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		return ctx.JSON(p.ToWeb())
	}
}

func getParticipantsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "bad id")
		}

		users, err := app.colony.Participants(uint(id))
		if err != nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		return ctx.JSON(users)
	}
}

func deleteProjectHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "bad id")
		}

		if err := app.colony.Remove(uint(id)); err != nil {
			return err
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func getCacheHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.cache.Stats())
	}
}

func deleteCacheHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := app.cache.Clear(); err != nil {
			return err
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func getStackHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return pprof.Lookup("goroutine").WriteTo(ctx.Response().BodyWriter(), 1)
	}
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}
