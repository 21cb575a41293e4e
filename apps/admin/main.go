package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/payroll"
	"github.com/trezcool/tuition/core/user"
	emailsvc "github.com/trezcool/tuition/services/email"
	logsvc "github.com/trezcool/tuition/services/logger"
	"github.com/trezcool/tuition/storage/database"
	sqlxrepos "github.com/trezcool/tuition/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(std, conf)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	var mailer core.EmailService
	if conf.Debug {
		mailer = emailsvc.NewConsoleService(std, conf)
	} else {
		mailer = emailsvc.NewSendgridService(logger, conf)
	}

	classSvc := class.NewService(sqlxrepos.NewClassRepository(db))
	empSvc := employee.NewService(sqlxrepos.NewEmployeeRepository(db), classSvc)
	countSvc := classcount.NewService(sqlxrepos.NewClassCountRepository(db), classSvc, empSvc, conf.Location())

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db.DB,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		employees:  empSvc,
		payrollSvc: payroll.NewService(empSvc, countSvc, conf.Location()),
		mailer:     mailer,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
