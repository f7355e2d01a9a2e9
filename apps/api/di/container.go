// Package di wires the API dependencies with a dig container.
package di

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/igortacu/summer-hackathon-sub000/apps/api/echo"
	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/gitlog"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
	logsvc "github.com/igortacu/summer-hackathon-sub000/services/logger"
	"github.com/igortacu/summer-hackathon-sub000/storage/database"
	inmemdb "github.com/igortacu/summer-hackathon-sub000/storage/database/inmem"
	sqlxrepos "github.com/igortacu/summer-hackathon-sub000/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Stores are the repositories picked by the database config.
	// DB is nil when running in memory.
	Stores struct {
		dig.Out
		DB       *sqlx.DB
		User     user.Repository
		Activity activity.Repository
		Task     task.Repository
	}

	depsParams struct {
		dig.In
		Conf        *core.Config
		Logger      core.Logger
		Validate    *validator.Validate
		Translator  ut.Translator
		UserSvc     *user.Service
		ActivitySvc *activity.Service
		TaskSvc     *task.Service
		Fetcher     echoapi.CommitFetcher
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) Stores {
	if conf.Database.InMemory {
		loggerParam.Logger.Info("using in-memory storage")
		db := inmemdb.NewDB()
		return Stores{
			User:     inmemdb.NewUserRepository(db),
			Activity: inmemdb.NewActivityRepository(db),
			Task:     inmemdb.NewTaskRepository(db),
		}
	}

	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Stores{
		DB:       db,
		User:     sqlxrepos.NewUserRepository(db),
		Activity: sqlxrepos.NewActivityRepository(db),
		Task:     sqlxrepos.NewTaskRepository(db),
	}
}

func newActivityService(repo activity.Repository, conf *core.Config) *activity.Service {
	return activity.NewService(repo, activity.OptionsFromConfig(conf.Activity))
}

func newFetcher(conf *core.Config) *gitlog.Fetcher {
	return gitlog.NewFetcher(conf.Activity)
}

func newDeps(p depsParams) *echoapi.Deps {
	return &echoapi.Deps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		UserSvc:     p.UserSvc,
		ActivitySvc: p.ActivitySvc,
		TaskSvc:     p.TaskSvc,
		Fetcher:     p.Fetcher,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(newActivityService))
	must(c.Provide(task.NewService))
	must(c.Provide(newFetcher, dig.As(new(echoapi.CommitFetcher))))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
