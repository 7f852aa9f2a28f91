package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/hajerbook/backend/apps/api/echo"
	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/core/course"
	cachesvc "github.com/hajerbook/backend/services/cache"
	emailsvc "github.com/hajerbook/backend/services/email"
	logsvc "github.com/hajerbook/backend/services/logger"
	notifysvc "github.com/hajerbook/backend/services/notify"
	"github.com/hajerbook/backend/storage"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	AccountSvc account.Service
	CourseSvc  course.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && !conf.TestMode)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && !conf.TestMode)
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *storage.Store {
	store, err := storage.Open(context.Background(), conf, true /* migrate */)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s database: %v", conf.Database.Engine, err), err)
	}
	return store
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newAccountService(store *storage.Store) account.Service {
	return account.NewService(store.Accounts)
}

func newCourseService(store *storage.Store, cache core.Cache, notifier core.Notifier, logger core.Logger, conf *core.Config) course.Service {
	return course.NewService(store.Courses, cache, notifier, logger, conf)
}

func newServerDeps(p serverParams) *echoapi.ServerDeps {
	return &echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		AccountSvc: p.AccountSvc,
		CourseSvc:  p.CourseSvc,
	}
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(cachesvc.NewMemoryCache))
	must(c.Provide(notifysvc.NewNotifier))
	must(c.Provide(newAccountService))
	must(c.Provide(newCourseService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
