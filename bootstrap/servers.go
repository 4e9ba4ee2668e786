package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"content-search/config"
	"content-search/middleware"
	"content-search/rest"
	"content-search/usecase"
	appOtel "content-search/utils/otel"
)

// newHTTPServer creates the REST HTTP server.
func newHTTPServer(searchUsecase *usecase.SearchPostsUsecase, reindexUsecase *usecase.ReindexUsecase, appCfg *config.Config, otelCfg appOtel.Config) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if otelCfg.Enabled {
		e.Use(middleware.OTelStatus())
	}

	handler := rest.NewHandler(searchUsecase, reindexUsecase, config.DefaultFacets(), nil)
	handler.RegisterRoutes(e)

	return &http.Server{
		Addr:              appCfg.HTTP.Addr,
		Handler:           e,
		ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
	}
}
