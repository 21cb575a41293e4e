package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/payroll"
	"github.com/trezcool/tuition/core/user"
	emailsvc "github.com/trezcool/tuition/services/email"
	inmemdb "github.com/trezcool/tuition/storage/database/inmem"
	testutil "github.com/trezcool/tuition/tests"
)

const strongPwd = "N3w.Passw0rd!"

type env struct {
	cli       *commandLine
	out       *bytes.Buffer
	mailer    *emailsvc.ConsoleServiceMock
	usrRepo   user.Repository
	classRepo class.Repository
	empRepo   employee.Repository
	countRepo classcount.Repository
}

func setup(t *testing.T) *env {
	conf := core.NewTestConfig("UTC")
	db := inmemdb.Open()

	e := &env{
		out:       new(bytes.Buffer),
		mailer:    emailsvc.NewConsoleServiceMock(conf),
		usrRepo:   inmemdb.NewUserRepository(db),
		classRepo: inmemdb.NewClassRepository(db),
		empRepo:   inmemdb.NewEmployeeRepository(db),
		countRepo: inmemdb.NewClassCountRepository(db),
	}

	classSvc := class.NewService(e.classRepo)
	empSvc := employee.NewService(e.empRepo, classSvc)
	countSvc := classcount.NewService(e.countRepo, classSvc, empSvc, conf.Location())

	// start CLI
	e.cli = &commandLine{
		conf:       conf,
		usrRepo:    e.usrRepo,
		employees:  empSvc,
		payrollSvc: payroll.NewService(empSvc, countSvc, conf.Location()),
		mailer:     e.mailer,
		out:        e.out,
	}
	return e
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkRunErr(t *testing.T, tt cliTest, err error) {
	t.Helper()

	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

// droppingMailer accepts messages but never delivers them.
type droppingMailer struct {
	queued int
}

func (m *droppingMailer) SendMessages(messages ...*core.EmailMessage) { m.queued += len(messages) }
func (m *droppingMailer) Wait() int { return 0 }

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	e := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "payslip", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, e.cli.run(args))
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	e := setup(t)

	usr := testutil.CreateUser(t, e.usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: strongPwd}, wantErr: user.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}, wantErrStr: "password must contain at least 8 characters"},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: strongPwd}},
		{name: "reset with email", args: []string{"resetpassword", "-username", strings.ToUpper(usr.Email)}, extra: extra{pwd: "An0ther.Secret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if extra, ok := tt.extra.(extra); ok {
			pwd = extra.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := e.cli.run(args)
			checkRunErr(t, tt, err)
			if err == nil {
				refreshedUsr, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	e := setup(t)
	teacher := testutil.CreateTeacher(t, e.empRepo, "Rahim", "Uddin", "01711000001")
	mockPassword(strongPwd)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "rahim"}, wantErr: errHelp},
		{name: "unknown employee", args: []string{"adduser", "-username", "rahim", "-email", "rahim@test.com", "-employee", "9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f"}, wantErr: employee.ErrNotFound},
		{name: "teacher", args: []string{"adduser", "-username", "Rahim", "-email", "rahim@test.com", "-name", "Rahim Uddin", "-employee", teacher.ID}},
		{name: "promote to admin", args: []string{"adduser", "-username", "rahim", "-email", "rahim@test.com", "-admin"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, e.cli.run(args))
		})
	}

	usr, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: "rahim"})
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin", usr.Name)
	assert.Equal(t, teacher.ID, usr.EmployeeID)
	assert.True(t, usr.IsAdmin())
	assert.NoError(t, usr.CheckPassword(strongPwd))

	users, err := e.usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func Test_commandLine_payroll(t *testing.T) {
	e := setup(t)
	six := testutil.CreateClass(t, e.classRepo, "6")
	nine := testutil.CreateClass(t, e.classRepo, "9")

	rahim := testutil.CreateTeacher(t, e.empRepo, "Rahim", "Uddin", "01711000001", testutil.Rate("100", six), testutil.Rate("150", nine))
	rahim.Email = "rahim@test.com"
	_, err := e.empRepo.UpdateEmployee(context.Background(), rahim)
	require.NoError(t, err)
	testutil.CreateTeacher(t, e.empRepo, "Karim", "Ahmed", "01711000002", testutil.Rate("120", six)) // no email

	testutil.CreateRecord(t, e.countRepo, rahim.ID, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		[]classcount.ClassEntry{testutil.Entry(3, six), testutil.Entry(2, nine)})

	tests := []cliTest{
		{name: "no month", args: []string{"payroll"}, wantErr: errHelp},
		{name: "invalid month", args: []string{"payroll", "-month", "03/2024"}, wantErr: errInvalidMonth},
		{name: "print", args: []string{"payroll", "-month", "2024-03"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, e.cli.run(args))
		})
	}
	assert.Contains(t, e.out.String(), "Rahim Uddin")
	assert.Contains(t, e.out.String(), "600.00")
	assert.Empty(t, e.mailer.SentMessages())

	t.Run("mail", func(t *testing.T) {
		e.out.Reset()
		require.NoError(t, e.cli.run([]string{"admin", "payroll", "-month", "2024-03", "-mail"}))
		assert.Contains(t, e.out.String(), "1 statement(s) sent")

		sent := e.mailer.SentMessages()
		if assert.Len(t, sent, 1) {
			msg := sent[0]
			assert.Equal(t, "rahim@test.com", msg.To[0].Address)
			assert.Equal(t, "Class count statement for March 2024", msg.Subject)
			assert.Contains(t, msg.TextContent, "Total: 600.00")
			if assert.Len(t, msg.Attachments, 1) {
				assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)
			}
		}
	})

	t.Run("undelivered statements", func(t *testing.T) {
		mailer := new(droppingMailer)
		e.cli.mailer = mailer
		defer func() { e.cli.mailer = e.mailer }()

		e.out.Reset()
		err := e.cli.run([]string{"admin", "payroll", "-month", "2024-03", "-mail"})
		if assert.Error(t, err) {
			assert.Equal(t, "1 of 1 statement(s) could not be delivered", err.Error())
		}
		assert.Equal(t, 1, mailer.queued)
		assert.Contains(t, e.out.String(), "0 statement(s) sent")
	})
}
