package dig_container

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/payroll"
	"github.com/trezcool/tuition/core/user"
	logsvc "github.com/trezcool/tuition/services/logger"
	"github.com/trezcool/tuition/storage/database"
	sqlxrepos "github.com/trezcool/tuition/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	UserSvc       user.Service
	ClassSvc      class.Service
	EmployeeSvc   employee.Service
	ClassCountSvc classcount.Service
	PayrollSvc    payroll.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newLocation(conf *core.Config) *time.Location {
	return conf.Location()
}

// narrow views of the services, as their consumers expect them

func classLookup(svc class.Service) class.Lookup { return svc }
func employeeLookup(svc employee.Service) classcount.EmployeeLookup { return svc }
func teacherDirectory(svc employee.Service) payroll.TeacherDirectory { return svc }
func recordStore(svc classcount.Service) payroll.RecordStore { return svc }

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		ClassSvc:      p.ClassSvc,
		EmployeeSvc:   p.EmployeeSvc,
		ClassCountSvc: p.ClassCountSvc,
		PayrollSvc:    p.PayrollSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLocation))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewClassRepository))
	must(c.Provide(sqlxrepos.NewEmployeeRepository))
	must(c.Provide(sqlxrepos.NewClassCountRepository))

	must(c.Provide(user.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(classLookup))
	must(c.Provide(employee.NewService))
	must(c.Provide(employeeLookup))
	must(c.Provide(teacherDirectory))
	must(c.Provide(classcount.NewService))
	must(c.Provide(recordStore))
	must(c.Provide(payroll.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
