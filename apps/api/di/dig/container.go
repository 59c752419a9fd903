package dig_container

import (
	"context"
	"database/sql"
	"log"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/nexusalpri/academy/apps/api/echo"
	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/security"
	"github.com/nexusalpri/academy/core/user"
	logsvc "github.com/nexusalpri/academy/services/logger"
	metricsvc "github.com/nexusalpri/academy/services/metrics"
	"github.com/nexusalpri/academy/storage/counter"
	"github.com/nexusalpri/academy/storage/database"
	"github.com/nexusalpri/academy/storage/database/gormjson"
	inmemdb "github.com/nexusalpri/academy/storage/database/inmem"
	sqlxrepos "github.com/nexusalpri/academy/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// ClosersParam collects the functions releasing connections (databases, redis) on shutdown.
	ClosersParam struct {
		dig.In
		Closers []func() error `group:"closers"`
	}

	Repositories struct {
		dig.Out
		Users        user.Repository
		Enrollments  progress.EnrollmentRegistry
		Lessons      progress.LessonCatalog
		Progress     progress.Repository
		SecurityLogs security.Repository
		Closers      []func() error `group:"closers,flatten"`
		// SQLDB is nil for the in-memory engine
		SQLDB *sql.DB
	}

	serverParams struct {
		dig.In
		Conf        *core.Config
		Logger      core.Logger
		UserSvc     *user.Service
		ProgressSvc *progress.Service
		SecuritySvc *security.Service
		Limiter     *security.Limiter
		Metrics     *metricsvc.Metrics
		Validate    *validator.Validate
		Translator  ut.Translator
	}
)

func newConsoleLogger(conf *core.Config) (*zap.SugaredLogger, error) {
	return logsvc.NewConsoleLogger(conf)
}

func newLogger(zl *zap.SugaredLogger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(zl *zap.SugaredLogger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newRepositories opens the storage engine selected by the configuration.
func newRepositories(conf *core.Config, loggerParam DBLoggerParam) (Repositories, error) {
	logger := loggerParam.Logger

	switch conf.Database.Engine {
	case core.EngineInMem:
		logger.Warn("using the in-memory storage engine: data is lost on shutdown")
		db := inmemdb.Open()
		return Repositories{
			Users:        inmemdb.NewUserRepository(db),
			Enrollments:  inmemdb.NewEnrollmentRepository(db),
			Lessons:      inmemdb.NewLessonRepository(db),
			Progress:     inmemdb.NewProgressRepository(db),
			SecurityLogs: inmemdb.NewSecurityLogRepository(db),
		}, nil

	case core.EngineGormJSON:
		gdb, err := gormjson.Open(conf.Database.DSN, conf.Debug)
		if err != nil {
			return Repositories{}, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return Repositories{}, errors.Wrap(err, "getting sql.DB")
		}
		if gormjson.IsPostgresDSN(conf.Database.DSN) {
			if err = database.Migrate(sqlDB); err != nil {
				return Repositories{}, err
			}
		}
		return Repositories{
			Users:        gormjson.NewUserRepository(gdb),
			Enrollments:  gormjson.NewEnrollmentRepository(gdb),
			Lessons:      gormjson.NewLessonRepository(gdb),
			Progress:     gormjson.NewProgressRepository(gdb),
			SecurityLogs: gormjson.NewSecurityLogRepository(gdb),
			Closers:      []func() error{sqlDB.Close},
			SQLDB:        sqlDB,
		}, nil

	default:
		db, err := database.Setup(conf)
		if err != nil {
			return Repositories{}, errors.Wrap(err, "setting up database")
		}
		return Repositories{
			Users:        sqlxrepos.NewUserRepository(db),
			Enrollments:  sqlxrepos.NewEnrollmentRepository(db),
			Lessons:      sqlxrepos.NewLessonRepository(db),
			Progress:     sqlxrepos.NewProgressRepository(db),
			SecurityLogs: sqlxrepos.NewSecurityLogRepository(db),
			Closers:      []func() error{db.Close},
			SQLDB:        db.DB,
		}, nil
	}
}

type counterStoreResult struct {
	dig.Out
	Store   security.CounterStore
	Closers []func() error `group:"closers,flatten"`
}

// newCounterStore returns the redis store when configured, so that every API process shares the login counters.
func newCounterStore(conf *core.Config, logger core.Logger) (counterStoreResult, error) {
	if conf.Redis.Address == "" {
		logger.Warn("no redis address configured: login attempts are counted per process")
		return counterStoreResult{Store: counter.NewInMemStore()}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := counter.OpenRedis(ctx, conf)
	if err != nil {
		return counterStoreResult{}, err
	}
	return counterStoreResult{
		Store:   counter.NewRedisStore(rdb),
		Closers: []func() error{rdb.Close},
	}, nil
}

func newLimiter(conf *core.Config, store security.CounterStore) *security.Limiter {
	return security.NewLimiter(store, conf.Login.RateLimitCount, conf.Login.RateLimitWindow)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newProgressService(
	enrollments progress.EnrollmentRegistry,
	lessons progress.LessonCatalog,
	repo progress.Repository,
	metrics *metricsvc.Metrics,
) *progress.Service {
	svc := progress.NewService(enrollments, lessons, repo)
	svc.SetObserver(metrics)
	return svc
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		UserSvc:     p.UserSvc,
		ProgressSvc: p.ProgressSvc,
		SecuritySvc: p.SecuritySvc,
		Limiter:     p.Limiter,
		Metrics:     p.Metrics,
		Validate:    p.Validate,
		Translator:  p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	return newContainer(core.NewConfig)
}

// newContainer builds the container with the given *core.Config constructor.
func newContainer(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newConsoleLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newCounterStore))
	must(c.Provide(newLimiter))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(metricsvc.New))
	must(c.Provide(user.NewService))
	must(c.Provide(newProgressService))
	must(c.Provide(security.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
