package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/bridge"
)

// New creates the coordinator daemon's HTTP surface: a health route and the
// messaging-bridge websocket endpoint.
func New(bs *bridge.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/bridge", func(c echo.Context) error {
		bs.ServeWebSocket(c.Response(), c.Request())
		return nil
	})
	return e
}
