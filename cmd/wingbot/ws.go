package main

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/edtools/wingbot/internal/wshandler"
)

func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws)

		app.logger.Debug("ws listener connected", slog.String("client", name))
		app.colony.ChangeCallback().Subscribe(name, h.SendProject)
		app.colony.DeleteCallback().Subscribe(name, h.DeleteProject)
		h.Listen()
		app.colony.ChangeCallback().Unsubscribe(name)
		app.colony.DeleteCallback().Unsubscribe(name)
		app.logger.Debug("ws listener disconnected", slog.String("client", name))
	})
}
