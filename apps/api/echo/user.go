package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/security"
	"github.com/nexusalpri/academy/core/user"
	metricsvc "github.com/nexusalpri/academy/services/metrics"
)

type userApi struct {
	conf     *core.Config
	logger   core.Logger
	svc      *user.Service
	secSvc   *security.Service
	limiter  *security.Limiter
	metrics  *metricsvc.Metrics
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, deps ServerDeps) {
	api := userApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		svc:      deps.UserSvc,
		secSvc:   deps.SecuritySvc,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/auth/login", api.login)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	ip := ctx.RealIP()
	reqCtx := ctx.Request().Context()

	allowed, err := api.limiter.Allow(reqCtx, ip)
	if err != nil {
		return errors.Wrap(err, "checking login rate limit")
	}
	if !allowed {
		api.metrics.LoginAttempted(metricsvc.LoginRateLimited)
		return security.ErrRateLimited
	}

	var data LoginRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(reqCtx, data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			if hErr := api.limiter.Hit(reqCtx, ip); hErr != nil {
				api.logger.Error("recording failed login attempt", hErr)
			}
			api.secSvc.RecordFailedLogin(ip, data.Email, usr.ID)
			api.metrics.LoginAttempted(metricsvc.LoginFailed)
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = api.limiter.Reset(reqCtx, ip); err != nil {
		api.logger.Error("resetting login attempts", err, usr)
	}
	api.secSvc.RecordSuccessfulLogin(ip, usr.ID)
	api.metrics.LoginAttempted(metricsvc.LoginSucceeded)

	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
