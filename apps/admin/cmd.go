package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/kat-co/vala"
	"github.com/pressly/goose/v3"
	"golang.org/x/term"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/payroll"
	"github.com/trezcool/tuition/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = goose.Run         // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sql.DB
	usrRepo    user.Repository
	employees  employee.Service
	payrollSvc payroll.Service
	mailer     core.EmailService
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME -email EMAIL [-name NAME] [-admin] [-employee ID] - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  payroll -month YYYY-MM [-mail] - print the monthly payroll; -mail sends the statements")
}

// checkArgs prints the failed checks and the usage of cmd.
func (cli *commandLine) checkArgs(cmd *flag.FlagSet, checkers ...vala.Checker) error {
	if err := vala.BeginValidation().Validate(checkers...).Check(); err != nil {
		fmt.Fprintln(cli.out, err)
		cmd.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	cmd := flag.NewFlagSet(name, flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	return cmd
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := cli.newFlagSet("adduser")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every role to the user.")
	addUserEmployee := addUserCmd.String("employee", "", "The employee ID a teacher account reports class counts for.")

	resetPasswordCmd := cli.newFlagSet("resetpassword")
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	payrollCmd := cli.newFlagSet("payroll")
	payrollMonth := payrollCmd.String("month", "", "The month to compute, as YYYY-MM.")
	payrollMail := payrollCmd.Bool("mail", false, "Email the statements to the teachers.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.checkArgs(addUserCmd,
			vala.StringNotEmpty(*addUserUname, "username"),
			vala.StringNotEmpty(*addUserEmail, "email"),
		); err != nil {
			return err
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(newUserArgs{
			name:       *addUserName,
			uname:      *addUserUname,
			email:      *addUserEmail,
			pwd:        pwd,
			isAdmin:    *addUserAdmin,
			employeeID: *addUserEmployee,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.checkArgs(resetPasswordCmd, vala.StringNotEmpty(*resetPasswordUname, "username")); err != nil {
			return err
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "payroll":
		if err := payrollCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if err := cli.checkArgs(payrollCmd, vala.StringNotEmpty(*payrollMonth, "month")); err != nil {
			return err
		}
		return cli.payroll(*payrollMonth, *payrollMail)

	default:
		cli.printUsage()
		return errHelp
	}
}
