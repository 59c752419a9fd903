package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core/security"
)

type securityApi struct {
	svc *security.Service
}

func registerSecurityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *security.Service) {
	api := securityApi{svc: svc}

	sg := g.Group("/security", jwt, adminMiddleware())
	sg.GET("/logs", api.queryLogs)
}

func (api *securityApi) queryLogs(ctx echo.Context) error {
	logs, err := api.svc.Recent(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying security logs")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"logs": logs})
}
